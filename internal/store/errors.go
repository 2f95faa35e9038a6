/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import "errors"

// Kind is the stable failure category reported to callers
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidArgument
	KindInvalidState
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "internal"
	}
}

// Sentinel errors shared by every operation. Wrap them with fmt.Errorf("%w: ...")
// to attach a user-facing message.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification reports a balance that went negative after a
	// conditional debit. It is classified as KindInsufficientFunds.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// KindOf classifies err by the first sentinel found in its chain.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrConcurrentModification):
		return KindInsufficientFunds
	default:
		return KindInternal
	}
}

// Message returns the text safe to show a user. Internal errors are not echoed.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindInternal {
		return "internal error"
	}
	return err.Error()
}

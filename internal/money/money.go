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

// Package money holds the fixed-point rules shared by trading, games and storage.
// Every currency value has two decimal places and is stored as integer cents.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const Places = 2

// MaxAmount bounds the magnitude of any single stored amount and MaxBalance
// bounds a wallet balance. Both stay well inside the int64 cent range.
var (
	MaxAmount  = decimal.New(1, 12)
	MaxBalance = decimal.New(1, 15)
)

var ErrOutOfRange = errors.New("amount out of range")

// InRange reports whether |d| is at most MaxBalance, the largest value a
// cents column ever holds.
func InRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxBalance)
}

// ToCents converts a 2-dp amount to integer cents for storage. Values beyond
// MaxBalance are refused rather than wrapped.
func ToCents(d decimal.Decimal) (int64, error) {
	if !InRange(d) {
		return 0, fmt.Errorf("%w: %s exceeds %s", ErrOutOfRange, d, MaxBalance)
	}
	return d.Shift(Places).Round(0).IntPart(), nil
}

// FromCents converts stored cents back to a decimal amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Round2 rounds half away from zero to two places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Floor2 drops everything past the second decimal place, rounding toward
// negative infinity.
func Floor2(d decimal.Decimal) decimal.Decimal {
	return d.Shift(Places).Floor().Shift(-Places)
}

// HasValidPrecision reports whether d carries at most two decimal places
func HasValidPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Places))
}

// PlatformFee is floor(price * rate * 100) / 100. Fees are truncated, never rounded.
func PlatformFee(price, rate decimal.Decimal) decimal.Decimal {
	return Floor2(price.Mul(rate))
}

// SplitSale returns the platform fee and what the seller receives for price.
// fee + received always equals price.
func SplitSale(price, rate decimal.Decimal) (fee, received decimal.Decimal) {
	fee = PlatformFee(price, rate)
	return fee, price.Sub(fee)
}

// CanAfford compares balance and amount after rounding both to two places
func CanAfford(balance, amount decimal.Decimal) bool {
	return Round2(balance).GreaterThanOrEqual(Round2(amount))
}

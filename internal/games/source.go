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

package games

import (
	"crypto/rand"
	"encoding/binary"
)

// Source yields uniformly distributed values in [0, 1)
type Source interface {
	Float64() float64
}

// CryptoSource draws from the operating system's CSPRNG
type CryptoSource struct{}

func (CryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read never returns an error on supported platforms
		panic(err)
	}
	// Top 53 bits fill a float64 mantissa exactly
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

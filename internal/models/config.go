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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	MarketFile string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver           string // "sqlite3" or "postgres"
	Path             string // sqlite file
	URL              string // postgres DSN
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	CreateDummyUsers bool
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	GinMode         string
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RateLimitConfig holds per-user write throttling settings. An empty
// RedisAddr disables limiting.
type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PerMinute     int
}

// MarketConfig holds the economic tunables loaded from market.yaml
type MarketConfig struct {
	FeeRate       decimal.Decimal
	MintCost      decimal.Decimal
	MaxBid        decimal.Decimal
	MaxAdjustment decimal.Decimal
	StartingAgon  decimal.Decimal
	StartingChips decimal.Decimal
	Categories    []string
	Coinflip      CoinflipConfig
	Crash         CrashConfig
}

// CoinflipConfig tunes the coinflip house edge
type CoinflipConfig struct {
	WinProbability float64
}

// CrashConfig tunes the crash point distribution and the accepted cash-out range
type CrashConfig struct {
	InstantCrashProbability float64
	HouseEdge               float64
	MaxMultiplier           decimal.Decimal
	MinCashOut              decimal.Decimal
	MaxCashOut              decimal.Decimal
}

// DefaultCategories is the category set used when market.yaml omits one
var DefaultCategories = []string{
	"nation_flags",
	"notable_builds",
	"memes_moments",
	"player_avatars",
	"event_commemorations",
	"achievement_badges",
	"map_art",
	"historical_documents",
	"other",
}

// DefaultMarketConfig returns the production economics
func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		FeeRate:       decimal.RequireFromString("0.025"),
		MintCost:      decimal.NewFromInt(100),
		MaxBid:        decimal.NewFromInt(1_000_000_000),
		MaxAdjustment: decimal.NewFromInt(1_000_000),
		StartingAgon:  decimal.NewFromInt(1000),
		StartingChips: decimal.NewFromInt(1000),
		Categories:    append([]string(nil), DefaultCategories...),
		Coinflip: CoinflipConfig{
			WinProbability: 0.45,
		},
		Crash: CrashConfig{
			InstantCrashProbability: 0.20,
			HouseEdge:               0.10,
			MaxMultiplier:           decimal.RequireFromString("5.00"),
			MinCashOut:              decimal.RequireFromString("1.01"),
			MaxCashOut:              decimal.RequireFromString("5.00"),
		},
	}
}

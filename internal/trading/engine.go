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

// Package trading moves NFT ownership and Agon between users. Every
// operation runs in exactly one database transaction.
package trading

import (
	"fmt"
	"slices"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher receives an event after the operation that produced it commits.
// Implementations must not block.
type Publisher interface {
	Publish(event models.MarketEvent)
}

type discardPublisher struct{}

func (discardPublisher) Publish(models.MarketEvent) {}

type Engine struct {
	db        *database.Service
	cfg       models.MarketConfig
	publisher Publisher
}

// NewEngine creates a trading engine. A nil publisher discards events.
func NewEngine(db *database.Service, cfg models.MarketConfig, publisher Publisher) *Engine {
	if publisher == nil {
		publisher = discardPublisher{}
	}
	return &Engine{db: db, cfg: cfg, publisher: publisher}
}

// Categories returns the NFT categories accepted by Mint
func (e *Engine) Categories() []string {
	return slices.Clone(e.cfg.Categories)
}

// FeeRate is the platform fee applied to every sale
func (e *Engine) FeeRate() decimal.Decimal {
	return e.cfg.FeeRate
}

// validateAmount checks a user-supplied Agon amount: positive, at most
// MaxBid, and no finer than one cent.
func (e *Engine) validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", store.ErrInvalidArgument, field)
	}
	if amount.GreaterThan(e.cfg.MaxBid) {
		return fmt.Errorf("%w: %s must not exceed %s", store.ErrInvalidArgument, field, e.cfg.MaxBid)
	}
	if !money.HasValidPrecision(amount) {
		return fmt.Errorf("%w: %s has more than two decimal places", store.ErrInvalidArgument, field)
	}
	return nil
}

func (e *Engine) publish(event models.MarketEvent) {
	e.publisher.Publish(event)
}

// logFailure records why an operation did not commit. Domain rejections are
// warnings; anything else is an error.
func logFailure(operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("kind", store.KindOf(err).String()), zap.Error(err))
	if store.KindOf(err) == store.KindInternal {
		zap.L().Error(operation+" failed", fields...)
		return
	}
	zap.L().Warn(operation+" rejected", fields...)
}

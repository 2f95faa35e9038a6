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

// Package games settles casino rounds in Game Chips. The outcome of a round
// is drawn before any balance is read, and the wallet change and history
// row commit together.
package games

import (
	"context"
	"fmt"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Engine struct {
	db     *database.Service
	cfg    models.MarketConfig
	source Source
}

// NewEngine creates a game engine. A nil source uses CryptoSource.
func NewEngine(db *database.Service, cfg models.MarketConfig, source Source) *Engine {
	if source == nil {
		source = CryptoSource{}
	}
	return &Engine{db: db, cfg: cfg, source: source}
}

func validateBet(bet decimal.Decimal) error {
	if !bet.IsPositive() {
		return fmt.Errorf("%w: bet amount must be greater than zero", store.ErrInvalidArgument)
	}
	if !money.HasValidPrecision(bet) {
		return fmt.Errorf("%w: bet amount has more than two decimal places", store.ErrInvalidArgument)
	}
	return nil
}

// settle applies change to the player's chips and records the round in one
// transaction. The balance must cover the bet even when the round is won.
func (e *Engine) settle(ctx context.Context, round *models.GameRound) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		wallet, err := tx.GetWallet(ctx, round.UserId)
		if err != nil {
			return err
		}
		if !money.CanAfford(wallet.GameChips, round.BetAmount) {
			return fmt.Errorf("%w: insufficient Game Chips", store.ErrInsufficientFunds)
		}

		switch {
		case round.AmountChange.IsPositive():
			balance, err = tx.Credit(ctx, models.CurrencyChips, round.UserId, round.AmountChange)
		case round.AmountChange.IsNegative():
			balance, err = tx.Debit(ctx, models.CurrencyChips, round.UserId, round.AmountChange.Neg())
		default:
			balance = wallet.GameChips
		}
		if err != nil {
			return err
		}
		return tx.RecordGameRound(ctx, round)
	})
	if err != nil {
		fields := []zap.Field{
			zap.String("user_id", round.UserId),
			zap.String("game", string(round.GameType)),
			zap.String("bet", round.BetAmount.String()),
			zap.String("kind", store.KindOf(err).String()),
			zap.Error(err),
		}
		if store.KindOf(err) == store.KindInternal {
			zap.L().Error("Game settlement failed", fields...)
		} else {
			zap.L().Warn("Game settlement rejected", fields...)
		}
		return decimal.Zero, err
	}

	zap.L().Info("Game round settled",
		zap.String("round_id", round.Id),
		zap.String("user_id", round.UserId),
		zap.String("game", string(round.GameType)),
		zap.String("bet", round.BetAmount.String()),
		zap.String("result", round.Result),
		zap.Bool("won", round.Won),
		zap.String("amount_change", round.AmountChange.String()),
		zap.String("new_balance", balance.String()))
	return balance, nil
}

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


package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"agon-market-go/internal/common"
	"agon-market-go/internal/config"
	"agon-market-go/internal/models"
	"agon-market-go/internal/store"
	"agon-market-go/internal/trading"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type adjustmentRequest struct {
	admin    string
	username string
	currency models.Currency
	amount   decimal.Decimal
	reason   string
}

func parseAndValidateFlags() (*adjustmentRequest, error) {
	adminFlag := flag.String("admin", "", "Username of the admin making the change (required)")
	usernameFlag := flag.String("username", "", "Username whose wallet changes (required)")
	currencyFlag := flag.String("currency", "", "agon or chips (required)")
	amountFlag := flag.String("amount", "", "Signed amount, e.g. 50 or -12.50 (required)")
	reasonFlag := flag.String("reason", "", "Audit note (optional)")
	flag.Parse()

	if *adminFlag == "" || *usernameFlag == "" || *currencyFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags required: --admin, --username, --currency, --amount")
	}

	currency := models.Currency(*currencyFlag)
	if !currency.Valid() {
		return nil, fmt.Errorf("currency must be agon or chips, got %q", *currencyFlag)
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("amount must be non-zero")
	}

	return &adjustmentRequest{
		admin:    *adminFlag,
		username: *usernameFlag,
		currency: currency,
		amount:   amount,
		reason:   *reasonFlag,
	}, nil
}

func resolveAdmin(ctx context.Context, st store.MarketStore, username string) (*models.User, error) {
	admin, err := st.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("admin lookup failed: %w", err)
	}
	if !admin.IsAdmin {
		return nil, fmt.Errorf("%w: %s is not an admin", store.ErrForbidden, username)
	}
	return admin, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		flag.Usage()
		zap.L().Fatal("Invalid arguments", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	market, err := common.LoadMarketConfig(cfg.MarketFile)
	if err != nil {
		zap.L().Fatal("Failed to load market config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()
	engine := trading.NewEngine(dbService, market, nil)

	admin, err := resolveAdmin(ctx, dbService, req.admin)
	if err != nil {
		zap.L().Fatal("Not authorized", zap.Error(err))
	}

	user, err := dbService.GetUserByUsername(ctx, req.username)
	if err != nil {
		zap.L().Fatal("User not found", zap.String("username", req.username), zap.Error(err))
	}

	before, err := dbService.GetWallet(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to get wallet", zap.Error(err))
	}

	report := common.NewReport(os.Stdout, common.DefaultWidth)
	report.Header("BALANCE ADJUSTMENT")
	fmt.Printf("User:     %s (%s)\n", user.Username, user.Id)
	fmt.Printf("Currency: %s\n", req.currency)
	fmt.Printf("Current:  %s\n", common.FormatAmount(before.Balance(req.currency)))
	fmt.Printf("Change:   %s\n", common.FormatSigned(req.amount))

	adjustment, _, err := engine.AdjustBalance(ctx, store.AdjustBalanceParams{
		AdminId:  admin.Id,
		UserId:   user.Id,
		Currency: req.currency,
		Delta:    req.amount,
		Reason:   req.reason,
	})
	if errors.Is(err, store.ErrInsufficientFunds) {
		report.Footer(fmt.Sprintf("REJECTED: balance would drop below zero (shortfall %s)",
			common.FormatAmount(req.amount.Neg().Sub(before.Balance(req.currency)))))
		os.Exit(1)
	}
	if errors.Is(err, store.ErrInvalidArgument) {
		report.Footer("REJECTED: " + store.Message(err))
		os.Exit(1)
	}
	if err != nil {
		zap.L().Fatal("Failed to adjust balance", zap.Error(err))
	}

	report.Footer(fmt.Sprintf("APPLIED: new balance %s (audit id %s, reason %q)",
		common.FormatAmount(adjustment.BalanceAfter), adjustment.Id, adjustment.Reason))
}

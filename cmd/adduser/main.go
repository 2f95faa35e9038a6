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
	"regexp"

	"agon-market-go/internal/api"
	"agon-market-go/internal/common"
	"agon-market-go/internal/config"
	"agon-market-go/internal/store"

	"go.uber.org/zap"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,64}$`)

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-64 letters, digits, '.', '_' or '-': %s", username)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Username (required)")
	adminFlag := flag.Bool("admin", false, "Grant administrative rights")
	flag.Parse()

	if err := validateUsername(*usernameFlag); err != nil {
		zap.L().Fatal("Invalid username", zap.Error(err))
	}

	zap.L().Info("Starting user creation process",
		zap.String("username", *usernameFlag),
		zap.Bool("admin", *adminFlag))

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

	user, wallet, err := dbService.CreateUser(ctx, store.CreateUserParams{
		Username:      *usernameFlag,
		IsAdmin:       *adminFlag,
		StartingAgon:  market.StartingAgon,
		StartingChips: market.StartingChips,
	})
	if errors.Is(err, store.ErrInvalidState) {
		zap.L().Fatal("User already exists with this username", zap.String("username", *usernameFlag))
	}
	if err != nil {
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	tokens, err := api.NewTokenService(cfg.Auth)
	if err != nil {
		zap.L().Fatal("Failed to initialize token service", zap.Error(err))
	}
	token, err := tokens.Issue(user.Id)
	if err != nil {
		zap.L().Fatal("Failed to issue token", zap.Error(err))
	}

	report := common.NewReport(os.Stdout, common.DefaultWidth)
	report.Header("USER CREATED")
	fmt.Printf("ID:         %s\n", user.Id)
	fmt.Printf("Username:   %s\n", user.Username)
	fmt.Printf("Admin:      %t\n", user.IsAdmin)
	fmt.Printf("Agon:       %s\n", common.FormatAmount(wallet.Agon))
	fmt.Printf("Game chips: %s\n", common.FormatAmount(wallet.GameChips))
	report.Footer(fmt.Sprintf("Bearer token (valid %s):\n%s", cfg.Auth.TokenTTL, token))

	if config.UsingDefaultSecret(cfg) {
		fmt.Println("Warning: token signed with the development secret, set JWT_SECRET for real use")
	}

	zap.L().Info("User created successfully", zap.String("id", user.Id))
}

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
	"flag"
	"fmt"
	"os"

	"agon-market-go/internal/common"
	"agon-market-go/internal/config"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers int
	totalAgon  decimal.Decimal
	totalChips decimal.Decimal
}

func printPlayer(report *common.Report, player common.PlayerSummary, nftCount int) {
	role := "player"
	if player.User.IsAdmin {
		role = "admin"
	}
	report.Section(fmt.Sprintf("User: %s (%s)", player.User.Username, role))
	report.Item(false, "ID:         %s", player.User.Id)
	report.Item(false, "NFTs owned: %d", nftCount)
	report.Item(false, "Agon:       %20s", common.FormatAmount(player.Wallet.Agon))
	report.Item(true, "Game chips: %20s (updated: %s)",
		common.FormatAmount(player.Wallet.GameChips),
		player.Wallet.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func generateReport(ctx context.Context, report *common.Report, st store.MarketStore, players []common.PlayerSummary, logger *zap.Logger) balanceStats {
	stats := balanceStats{totalAgon: decimal.Zero, totalChips: decimal.Zero}

	for _, player := range players {
		stats.totalUsers++
		stats.totalAgon = stats.totalAgon.Add(player.Wallet.Agon)
		stats.totalChips = stats.totalChips.Add(player.Wallet.GameChips)

		owned, err := st.GetUserNFTs(ctx, player.User.Id, false)
		nftCount := 0
		if err != nil {
			logger.Error("Failed to count NFTs",
				zap.String("user_id", player.User.Id),
				zap.String("username", player.User.Username),
				zap.Error(err))
		} else {
			nftCount = owned.Stats.OwnedCount
		}

		printPlayer(report, player, nftCount)
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Filter by specific username (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	players, err := common.LookupPlayers(ctx, dbService, *usernameFlag, logger)
	if err != nil {
		logger.Fatal("Failed to look up users", zap.Error(err))
	}

	report := common.NewReport(os.Stdout, common.DefaultWidth)
	report.Header("WALLET BALANCE REPORT")

	stats := generateReport(ctx, report, dbService, players, logger)

	report.Footer(fmt.Sprintf("SUMMARY: %d users, %s Agon and %s game chips in circulation",
		stats.totalUsers, common.FormatAmount(stats.totalAgon), common.FormatAmount(stats.totalChips)))

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.String("total_agon", stats.totalAgon.String()),
		zap.String("total_chips", stats.totalChips.String()))
}

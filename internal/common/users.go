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

package common

import (
	"context"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"go.uber.org/zap"
)

// PlayerSummary pairs a player with both balances for the command-line reports
type PlayerSummary struct {
	User   models.User
	Wallet models.Wallet
}

// LookupPlayers returns the named player when username is set and every
// player otherwise, each with their wallet.
func LookupPlayers(ctx context.Context, st store.MarketStore, username string, logger *zap.Logger) ([]PlayerSummary, error) {
	var users []models.User

	if username != "" {
		logger.Info("Looking up user by username", zap.String("username", username))
		user, err := st.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, *user)
	} else {
		allUsers, err := st.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		users = allUsers
	}

	players := make([]PlayerSummary, 0, len(users))
	for _, u := range users {
		wallet, err := st.GetWallet(ctx, u.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet for %s: %w", u.Username, err)
		}
		players = append(players, PlayerSummary{User: u, Wallet: *wallet})
	}

	logger.Info("Retrieved users", zap.Int("count", len(players)))
	return players, nil
}

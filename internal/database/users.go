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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.Id, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying users")

	rows, err := s.query(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	user, err := scanUser(s.queryRow(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	zap.L().Debug("Querying user by username", zap.String("username", username))

	user, err := scanUser(s.queryRow(ctx, queryGetUserByUsername, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, username)
		}
		zap.L().Error("Failed to query user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by username: %w", err)
	}
	return user, nil
}

// CreateUser registers a player and opens their wallet with the starting balances.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, *models.Wallet, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" || len(username) > 64 {
		return nil, nil, fmt.Errorf("%w: username must be 1-64 characters", store.ErrInvalidArgument)
	}
	if params.StartingAgon.IsNegative() || params.StartingChips.IsNegative() {
		return nil, nil, fmt.Errorf("%w: starting balances cannot be negative", store.ErrInvalidArgument)
	}

	zap.L().Info("Creating user", zap.String("username", username))

	user := &models.User{
		Id:       uuid.New().String(),
		Username: username,
		IsAdmin:  params.IsAdmin,
	}
	var wallet *models.Wallet
	err := s.RunInTx(ctx, func(tx *Tx) error {
		user.CreatedAt = tx.Now()
		rowsAffected, err := tx.execAffected(ctx, queryInsertUser, user.Id, user.Username, user.IsAdmin, user.CreatedAt)
		if err != nil {
			return fmt.Errorf("unable to insert user: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: user %s already exists", store.ErrInvalidState, username)
		}

		agonCents, err := cents(params.StartingAgon)
		if err != nil {
			return err
		}
		chipsCents, err := cents(params.StartingChips)
		if err != nil {
			return err
		}
		if _, err := tx.exec(ctx, queryInsertWallet, user.Id, agonCents, chipsCents, tx.Now()); err != nil {
			return fmt.Errorf("unable to create wallet: %w", err)
		}

		wallet, err = tx.GetWallet(ctx, user.Id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("User created successfully", zap.String("id", user.Id), zap.String("username", username))
	return user, wallet, nil
}

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
	"fmt"
	"strconv"
	"strings"
	"time"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.MarketStore.
var _ store.MarketStore = (*Service)(nil)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// dialect papers over the placeholder and locking differences between
// SQLite and Postgres. Queries are written with ? placeholders.
type dialect struct {
	postgres bool
}

func (d dialect) rebind(query string) string {
	if !d.postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// forUpdate returns the row lock suffix. SQLite write transactions are
// already exclusive (_txlock=immediate).
func (d dialect) forUpdate() string {
	if d.postgres {
		return " FOR UPDATE"
	}
	return ""
}

type Service struct {
	db      *sql.DB
	dialect dialect
	clock   func() time.Time
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	// Validate configuration
	switch driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("database path cannot be empty")
		}
	case DriverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("database url cannot be empty for postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	var (
		db  *sql.DB
		err error
	)
	if driver == DriverPostgres {
		zap.L().Info("Opening Postgres database")
		db, err = sql.Open(DriverPostgres, cfg.URL)
	} else {
		zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
		db, err = sql.Open(DriverSQLite, cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on")
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if driver == DriverSQLite && cfg.Path == ":memory:" {
		// Every connection to :memory: is a separate database; pin one forever.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := NewServiceFromDB(db, driver)
	if err := service.InitSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if cfg.CreateDummyUsers {
		service.createDummyUsers(ctx)
	} else {
		zap.L().Info("Skipping dummy user creation (CREATE_DUMMY_USERS=false)")
	}

	zap.L().Info("Database service initialized successfully", zap.String("driver", driver))
	return service, nil
}

// NewServiceFromDB wraps an already opened handle without touching the schema.
func NewServiceFromDB(db *sql.DB, driver string) *Service {
	return &Service{
		db:      db,
		dialect: dialect{postgres: driver == DriverPostgres},
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for created_at and friends.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) createDummyUsers(ctx context.Context) {
	for _, name := range []string{"alice", "bob", "carol"} {
		user, _, err := s.CreateUser(ctx, store.CreateUserParams{
			Username:      name,
			StartingAgon:  decimal.NewFromInt(1000),
			StartingChips: decimal.NewFromInt(1000),
		})
		if err != nil {
			zap.L().Error("Failed to insert dummy user", zap.String("name", name), zap.Error(err))
			continue
		}
		zap.L().Info("Dummy user created", zap.String("id", user.Id), zap.String("name", name))
	}
}

func (s *Service) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Service) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Service) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

var maxBalanceCents = money.MaxBalance.Shift(money.Places).IntPart()

// cents converts an amount for storage. Amounts a cents column cannot hold
// are rejected as invalid arguments.
func cents(amount decimal.Decimal) (int64, error) {
	c, err := money.ToCents(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidArgument, err)
	}
	return c, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}

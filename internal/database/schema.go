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
	"fmt"
)

// Amounts are BIGINT cents. The schema is shared by SQLite and Postgres.
const schema = `
	-- Players
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	);

	-- One wallet per user, both balances non-negative
	CREATE TABLE IF NOT EXISTS wallets (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		agon_cents BIGINT NOT NULL DEFAULT 0 CHECK (agon_cents >= 0),
		chips_cents BIGINT NOT NULL DEFAULT 0 CHECK (chips_cents >= 0),
		updated_at TIMESTAMP NOT NULL
	);

	-- NFT registry; the row is the ownership record
	CREATE TABLE IF NOT EXISTS nfts (
		id TEXT PRIMARY KEY,
		creator_id TEXT NOT NULL REFERENCES users(id),
		current_owner_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_ref TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'other',
		tags TEXT NOT NULL DEFAULT '[]',
		edition_number INTEGER NOT NULL DEFAULT 1,
		edition_total INTEGER NOT NULL DEFAULT 1,
		is_listed BOOLEAN NOT NULL DEFAULT FALSE,
		ask_price_cents BIGINT,
		like_count BIGINT NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0,
		minted_at TIMESTAMP NOT NULL,
		listed_at TIMESTAMP,
		last_traded_at TIMESTAMP,
		CHECK (edition_number >= 1 AND edition_number <= edition_total),
		CHECK ((is_listed AND ask_price_cents IS NOT NULL AND ask_price_cents > 0)
			OR (NOT is_listed AND ask_price_cents IS NULL))
	);

	CREATE INDEX IF NOT EXISTS idx_nfts_owner ON nfts(current_owner_id);
	CREATE INDEX IF NOT EXISTS idx_nfts_creator ON nfts(creator_id);
	CREATE INDEX IF NOT EXISTS idx_nfts_category ON nfts(category);
	CREATE INDEX IF NOT EXISTS idx_nfts_listed ON nfts(is_listed);
	CREATE INDEX IF NOT EXISTS idx_nfts_minted_at ON nfts(minted_at);

	-- Bid book
	CREATE TABLE IF NOT EXISTS nft_bids (
		id TEXT PRIMARY KEY,
		nft_id TEXT NOT NULL REFERENCES nfts(id),
		bidder_id TEXT NOT NULL REFERENCES users(id),
		bid_amount_cents BIGINT NOT NULL CHECK (bid_amount_cents > 0),
		status TEXT NOT NULL CHECK (status IN ('active', 'cancelled', 'accepted')),
		created_at TIMESTAMP NOT NULL
	);

	-- At most one active bid per bidder per NFT
	CREATE UNIQUE INDEX IF NOT EXISTS idx_nft_bids_one_active ON nft_bids(nft_id, bidder_id) WHERE status = 'active';
	CREATE INDEX IF NOT EXISTS idx_nft_bids_book ON nft_bids(nft_id, status, bid_amount_cents, created_at);
	CREATE INDEX IF NOT EXISTS idx_nft_bids_bidder ON nft_bids(bidder_id);

	-- Append-only marketplace ledger
	CREATE TABLE IF NOT EXISTS nft_transactions (
		id TEXT PRIMARY KEY,
		nft_id TEXT NOT NULL REFERENCES nfts(id),
		from_user_id TEXT,
		to_user_id TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		fee_cents BIGINT NOT NULL DEFAULT 0,
		net_amount_cents BIGINT NOT NULL,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN ('mint', 'list', 'unlist', 'sale', 'bid_accepted')),
		bid_id TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nft_transactions_nft ON nft_transactions(nft_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_nft_transactions_type ON nft_transactions(transaction_type);

	CREATE TABLE IF NOT EXISTS nft_likes (
		nft_id TEXT NOT NULL REFERENCES nfts(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (nft_id, user_id)
	);

	-- Settled casino rounds
	CREATE TABLE IF NOT EXISTS game_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		game_type TEXT NOT NULL,
		bet_amount_cents BIGINT NOT NULL,
		choice TEXT NOT NULL,
		result TEXT NOT NULL,
		won BOOLEAN NOT NULL,
		amount_change_cents BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_game_history_user ON game_history(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_game_history_type ON game_history(game_type);

	-- Administrative balance changes
	CREATE TABLE IF NOT EXISTS wallet_adjustments (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id),
		currency TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		balance_after_cents BIGINT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_adjustments_user ON wallet_adjustments(user_id);
	`

func (s *Service) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

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

const (
	// User queries
	userColumns = `id, username, is_admin, created_at`

	queryInsertUser = `
		INSERT INTO users (id, username, is_admin, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING`

	queryGetUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?`

	queryGetUserByUsername = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = ?`

	// Wallet queries
	queryInsertWallet = `
		INSERT INTO wallets (user_id, agon_cents, chips_cents, updated_at) VALUES (?, ?, ?, ?)`

	queryGetWallet = `
		SELECT user_id, agon_cents, chips_cents, updated_at
		FROM wallets
		WHERE user_id = ?`

	// Conditional debits: zero rows affected means missing wallet or short balance
	queryDebitAgon = `
		UPDATE wallets SET agon_cents = agon_cents - ?, updated_at = ?
		WHERE user_id = ? AND agon_cents >= ?`

	queryDebitChips = `
		UPDATE wallets SET chips_cents = chips_cents - ?, updated_at = ?
		WHERE user_id = ? AND chips_cents >= ?`

	// Credits are conditional on staying under the balance ceiling
	queryCreditAgon = `
		UPDATE wallets SET agon_cents = agon_cents + ?, updated_at = ?
		WHERE user_id = ? AND agon_cents <= ?`

	queryCreditChips = `
		UPDATE wallets SET chips_cents = chips_cents + ?, updated_at = ?
		WHERE user_id = ? AND chips_cents <= ?`

	queryGetAgonBalance = `
		SELECT agon_cents FROM wallets WHERE user_id = ?`

	queryGetChipsBalance = `
		SELECT chips_cents FROM wallets WHERE user_id = ?`

	queryInsertWalletAdjustment = `
		INSERT INTO wallet_adjustments (id, admin_id, user_id, currency, amount_cents, balance_after_cents, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// NFT queries
	nftColumns = `id, creator_id, current_owner_id, name, description, image_ref, category, tags,
		edition_number, edition_total, is_listed, ask_price_cents, like_count, view_count,
		minted_at, listed_at, last_traded_at`

	queryGetNFT = `
		SELECT ` + nftColumns + `
		FROM nfts
		WHERE id = ?`

	queryInsertNFT = `
		INSERT INTO nfts (id, creator_id, current_owner_id, name, description, image_ref, category, tags,
			edition_number, edition_total, is_listed, ask_price_cents, like_count, view_count, minted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, NULL, 0, 0, ?)`

	queryListNFT = `
		UPDATE nfts SET is_listed = TRUE, ask_price_cents = ?, listed_at = ?
		WHERE id = ? AND current_owner_id = ?`

	queryUnlistNFT = `
		UPDATE nfts SET is_listed = FALSE, ask_price_cents = NULL
		WHERE id = ? AND current_owner_id = ?`

	// Conditioned on the seller still owning the NFT
	queryTransferNFT = `
		UPDATE nfts SET current_owner_id = ?, is_listed = FALSE, ask_price_cents = NULL, last_traded_at = ?
		WHERE id = ? AND current_owner_id = ?`

	queryIncrementNFTViews = `
		UPDATE nfts SET view_count = view_count + 1 WHERE id = ?`

	queryIncrementNFTLikes = `
		UPDATE nfts SET like_count = like_count + 1 WHERE id = ?`

	queryDecrementNFTLikes = `
		UPDATE nfts SET like_count = like_count - 1 WHERE id = ? AND like_count > 0`

	queryGetOwnedNFTs = `
		SELECT ` + nftColumns + `
		FROM nfts
		WHERE current_owner_id = ?
		ORDER BY minted_at DESC`

	queryGetOwnedOrCreatedNFTs = `
		SELECT ` + nftColumns + `
		FROM nfts
		WHERE current_owner_id = ? OR creator_id = ?
		ORDER BY minted_at DESC`

	queryCountCreatedNFTs = `
		SELECT COUNT(*) FROM nfts WHERE creator_id = ?`

	// Like queries
	queryInsertLike = `
		INSERT INTO nft_likes (nft_id, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (nft_id, user_id) DO NOTHING`

	queryDeleteLike = `
		DELETE FROM nft_likes WHERE nft_id = ? AND user_id = ?`

	// Bid queries
	bidColumns = `id, nft_id, bidder_id, bid_amount_cents, status, created_at`

	queryGetBid = `
		SELECT ` + bidColumns + `
		FROM nft_bids
		WHERE id = ?`

	queryInsertBid = `
		INSERT INTO nft_bids (id, nft_id, bidder_id, bid_amount_cents, status, created_at)
		VALUES (?, ?, ?, ?, 'active', ?)`

	queryCancelBidderActiveBids = `
		UPDATE nft_bids SET status = 'cancelled'
		WHERE nft_id = ? AND bidder_id = ? AND status = 'active'`

	// Only active bids may change status
	querySetBidStatus = `
		UPDATE nft_bids SET status = ?
		WHERE id = ? AND status = 'active'`

	queryCancelOtherActiveBids = `
		UPDATE nft_bids SET status = 'cancelled'
		WHERE nft_id = ? AND id <> ? AND status = 'active'`

	queryCancelAllActiveBids = `
		UPDATE nft_bids SET status = 'cancelled'
		WHERE nft_id = ? AND status = 'active'`

	// Highest amount first, earliest bid wins ties
	queryGetOrderBook = `
		SELECT ` + bidColumns + `
		FROM nft_bids
		WHERE nft_id = ? AND status = 'active'
		ORDER BY bid_amount_cents DESC, created_at ASC`

	queryGetBidsByNFT = `
		SELECT ` + bidColumns + `
		FROM nft_bids
		WHERE nft_id = ?
		ORDER BY created_at ASC`

	// Ledger queries
	nftTransactionColumns = `id, nft_id, from_user_id, to_user_id, amount_cents, fee_cents, net_amount_cents,
		transaction_type, bid_id, notes, created_at`

	queryInsertNFTTransaction = `
		INSERT INTO nft_transactions (id, nft_id, from_user_id, to_user_id, amount_cents, fee_cents, net_amount_cents,
			transaction_type, bid_id, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetNFTTransactions = `
		SELECT ` + nftTransactionColumns + `
		FROM nft_transactions
		WHERE nft_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	// Game queries
	gameRoundColumns = `id, user_id, game_type, bet_amount_cents, choice, result, won, amount_change_cents, created_at`

	queryInsertGameRound = `
		INSERT INTO game_history (id, user_id, game_type, bet_amount_cents, choice, result, won, amount_change_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetGameHistory = `
		SELECT ` + gameRoundColumns + `
		FROM game_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	queryGetGameHistoryByType = `
		SELECT ` + gameRoundColumns + `
		FROM game_history
		WHERE user_id = ? AND game_type = ?
		ORDER BY created_at DESC
		LIMIT ?`
)

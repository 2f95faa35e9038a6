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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleSummary is what the seller sees after accepting a bid
type SaleSummary struct {
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
	Received decimal.Decimal `json:"received"`
}

// PurchaseSummary is what the buyer sees after an instant buy
type PurchaseSummary struct {
	Price decimal.Decimal `json:"price"`
	Fee   decimal.Decimal `json:"fee"`
}

type MintResult struct {
	NFT    *NFT    `json:"nft"`
	Wallet *Wallet `json:"wallet"`
}

type AcceptBidResult struct {
	NFT    *NFT        `json:"nft"`
	Wallet *Wallet     `json:"wallet"`
	Sale   SaleSummary `json:"sale"`
}

type BuyResult struct {
	NFT      *NFT            `json:"nft"`
	Wallet   *Wallet         `json:"wallet"`
	Purchase PurchaseSummary `json:"purchase"`
}

type CoinflipResult struct {
	RoundId      string          `json:"round_id"`
	Won          bool            `json:"won"`
	Result       CoinSide        `json:"result"`
	AmountChange decimal.Decimal `json:"amountChange"`
	NewBalance   decimal.Decimal `json:"newBalance"`
}

type CrashResult struct {
	RoundId      string          `json:"round_id"`
	Won          bool            `json:"won"`
	CrashPoint   decimal.Decimal `json:"crashPoint"`
	CashOutAt    decimal.Decimal `json:"cashOutAt"`
	AmountChange decimal.Decimal `json:"amountChange"`
	NewBalance   decimal.Decimal `json:"newBalance"`
}

// NFTPage is one page of a marketplace search
type NFTPage struct {
	NFTs    []NFT `json:"nfts"`
	Total   int   `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NFTDetail is an NFT together with its order book and recent history
type NFTDetail struct {
	NFT          *NFT             `json:"nft"`
	Bids         []Bid            `json:"bids"`
	Transactions []NFTTransaction `json:"transactions"`
}

type UserNFTStats struct {
	OwnedCount   int             `json:"owned_count"`
	CreatedCount int             `json:"created_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

type UserNFTs struct {
	NFTs  []NFT        `json:"nfts"`
	Stats UserNFTStats `json:"stats"`
}

type MarketEventType string

const (
	EventMinted      MarketEventType = "minted"
	EventListed      MarketEventType = "listed"
	EventUnlisted    MarketEventType = "unlisted"
	EventBidPlaced   MarketEventType = "bid_placed"
	EventBidCanceled MarketEventType = "bid_cancelled"
	EventBidAccepted MarketEventType = "bid_accepted"
	EventSold        MarketEventType = "sold"
)

// MarketEvent is broadcast to feed subscribers after a trading operation commits
type MarketEvent struct {
	Type       MarketEventType `json:"type"`
	NftId      string          `json:"nft_id"`
	UserId     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency names one of the two wallet balances
type Currency string

const (
	CurrencyAgon  Currency = "agon"  // marketplace currency
	CurrencyChips Currency = "chips" // casino currency
)

func (c Currency) Valid() bool {
	return c == CurrencyAgon || c == CurrencyChips
}

type BidStatus string

const (
	BidActive    BidStatus = "active"
	BidCancelled BidStatus = "cancelled"
	BidAccepted  BidStatus = "accepted"
)

// TransactionType classifies a marketplace ledger row
type TransactionType string

const (
	TxMint        TransactionType = "mint"
	TxList        TransactionType = "list"
	TxUnlist      TransactionType = "unlist"
	TxSale        TransactionType = "sale"
	TxBidAccepted TransactionType = "bid_accepted"
)

// User represents a player account
type User struct {
	Id        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Wallet holds both balances of a user
type Wallet struct {
	UserId    string          `db:"user_id" json:"user_id"`
	Agon      decimal.Decimal `db:"agon_cents" json:"agon"`
	GameChips decimal.Decimal `db:"chips_cents" json:"game_chips"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Balance returns the balance held in the given currency
func (w Wallet) Balance(c Currency) decimal.Decimal {
	if c == CurrencyChips {
		return w.GameChips
	}
	return w.Agon
}

// NFT is the ownership record of a collectible. AskPrice is valid exactly
// when IsListed is true.
type NFT struct {
	Id             string              `db:"id" json:"id"`
	CreatorId      string              `db:"creator_id" json:"creator_id"`
	CurrentOwnerId string              `db:"current_owner_id" json:"current_owner_id"`
	Name           string              `db:"name" json:"name"`
	Description    string              `db:"description" json:"description"`
	ImageRef       string              `db:"image_ref" json:"image_ref"`
	Category       string              `db:"category" json:"category"`
	Tags           []string            `db:"tags" json:"tags"`
	EditionNumber  int                 `db:"edition_number" json:"edition_number"`
	EditionTotal   int                 `db:"edition_total" json:"edition_total"`
	IsListed       bool                `db:"is_listed" json:"is_listed"`
	AskPrice       decimal.NullDecimal `db:"ask_price_cents" json:"ask_price"`
	LikeCount      int64               `db:"like_count" json:"like_count"`
	ViewCount      int64               `db:"view_count" json:"view_count"`
	MintedAt       time.Time           `db:"minted_at" json:"minted_at"`
	ListedAt       *time.Time          `db:"listed_at" json:"listed_at,omitempty"`
	LastTradedAt   *time.Time          `db:"last_traded_at" json:"last_traded_at,omitempty"`
}

// Bid is an offer on an NFT. Amount never changes once written.
type Bid struct {
	Id        string          `db:"id" json:"id"`
	NftId     string          `db:"nft_id" json:"nft_id"`
	BidderId  string          `db:"bidder_id" json:"bidder_id"`
	Amount    decimal.Decimal `db:"bid_amount_cents" json:"bid_amount"`
	Status    BidStatus       `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NFTTransaction is an append-only marketplace ledger row
type NFTTransaction struct {
	Id         string          `db:"id" json:"id"`
	NftId      string          `db:"nft_id" json:"nft_id"`
	FromUserId string          `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserId   string          `db:"to_user_id" json:"to_user_id"`
	Amount     decimal.Decimal `db:"amount_cents" json:"amount"`
	Fee        decimal.Decimal `db:"fee_cents" json:"fee"`
	NetAmount  decimal.Decimal `db:"net_amount_cents" json:"net_amount"`
	Type       TransactionType `db:"transaction_type" json:"type"`
	BidId      string          `db:"bid_id" json:"bid_id,omitempty"`
	Notes      string          `db:"notes" json:"notes"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// GameRound is the immutable record of one settled casino round
type GameRound struct {
	Id           string          `db:"id" json:"id"`
	UserId       string          `db:"user_id" json:"user_id"`
	GameType     GameType        `db:"game_type" json:"game_type"`
	BetAmount    decimal.Decimal `db:"bet_amount_cents" json:"bet_amount"`
	Choice       GameChoice      `db:"choice" json:"choice"`
	Result       string          `db:"result" json:"result"`
	Won          bool            `db:"won" json:"won"`
	AmountChange decimal.Decimal `db:"amount_change_cents" json:"amount_change"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// WalletAdjustment audits an administrative credit or debit
type WalletAdjustment struct {
	Id           string          `db:"id" json:"id"`
	AdminId      string          `db:"admin_id" json:"admin_id"`
	UserId       string          `db:"user_id" json:"user_id"`
	Currency     Currency        `db:"currency" json:"currency"`
	Amount       decimal.Decimal `db:"amount_cents" json:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after_cents" json:"balance_after"`
	Reason       string          `db:"reason" json:"reason"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

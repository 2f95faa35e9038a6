package store

import (
	"context"

	"agon-market-go/internal/models"

	"github.com/shopspring/decimal"
)

// CreateUserParams contains the parameters for registering a player.
type CreateUserParams struct {
	Username      string
	IsAdmin       bool
	StartingAgon  decimal.Decimal
	StartingChips decimal.Decimal
}

// AdjustBalanceParams describes an administrative credit (positive Delta)
// or debit (negative Delta).
type AdjustBalanceParams struct {
	AdminId  string
	UserId   string
	Currency models.Currency
	Delta    decimal.Decimal
	Reason   string
}

// NFTFilter narrows a marketplace search. Zero values mean "no filter".
type NFTFilter struct {
	Category   string
	ListedOnly bool
	Search     string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	CreatorId  string
	OwnerId    string
	SortBy     string // minted_at, ask_price, view_count, like_count, name
	Order      string // asc, desc
	Limit      int
	Offset     int
}

// MarketStore is the read and administrative contract the HTTP layer and the
// command-line tools depend on. Trading and game mutations go through their
// engines instead.
type MarketStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, *models.Wallet, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// --- Wallets ---
	GetWallet(ctx context.Context, userId string) (*models.Wallet, error)
	AdjustBalance(ctx context.Context, params AdjustBalanceParams) (*models.WalletAdjustment, *models.Wallet, error)

	// --- NFTs ---
	ListNFTs(ctx context.Context, filter NFTFilter) (*models.NFTPage, error)
	GetNFTDetail(ctx context.Context, nftId string) (*models.NFTDetail, error)
	GetUserNFTs(ctx context.Context, userId string, includeCreated bool) (*models.UserNFTs, error)

	// --- Games ---
	GetGameHistory(ctx context.Context, userId string, gameType models.GameType, limit int) ([]models.GameRound, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}

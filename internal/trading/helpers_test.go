package trading

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.MarketEvent
}

func (p *recordingPublisher) Publish(event models.MarketEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []models.MarketEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]models.MarketEventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

type fixture struct {
	engine    *Engine
	db        *database.Service
	publisher *recordingPublisher
}

func openDB(t *testing.T, path string, conns int) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         path,
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDB(t, openDB(t, ":memory:", 1))
}

// newFileFixture backs the engine with a sqlite file so concurrent
// transactions use separate connections.
func newFileFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDB(t, openDB(t, filepath.Join(t.TempDir(), "market.db"), 8))
}

// steppingClock advances one millisecond per reading so rows written in
// sequence sort in that order.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Millisecond)
		return current
	}
}

func newFixtureWithDB(t *testing.T, db *database.Service) *fixture {
	t.Helper()
	db.SetClock(steppingClock())
	publisher := &recordingPublisher{}
	return &fixture{
		engine:    NewEngine(db, models.DefaultMarketConfig(), publisher),
		db:        db,
		publisher: publisher,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) user(t *testing.T, name string, agon string) *models.User {
	t.Helper()
	user, _, err := f.db.CreateUser(context.Background(), store.CreateUserParams{
		Username:      name,
		StartingAgon:  dec(agon),
		StartingChips: decimal.Zero,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) agon(t *testing.T, userId string) decimal.Decimal {
	t.Helper()
	wallet, err := f.db.GetWallet(context.Background(), userId)
	require.NoError(t, err)
	return wallet.Agon
}

func (f *fixture) mint(t *testing.T, creator *models.User, name string) *models.NFT {
	t.Helper()
	result, err := f.engine.Mint(context.Background(), creator.Id, MintParams{
		Name:     name,
		ImageRef: "nfts/" + name + ".png",
	})
	require.NoError(t, err)
	return result.NFT
}

func (f *fixture) nft(t *testing.T, nftId string) *models.NFT {
	t.Helper()
	nft, err := f.db.GetNFT(context.Background(), nftId)
	require.NoError(t, err)
	return nft
}

func (f *fixture) ledger(t *testing.T, nftId string) []models.NFTTransaction {
	t.Helper()
	rows, err := f.db.GetNFTTransactions(context.Background(), nftId, 100)
	require.NoError(t, err)
	return rows
}

func requireKind(t *testing.T, want store.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, store.KindOf(err), "unexpected error: %v", err)
}

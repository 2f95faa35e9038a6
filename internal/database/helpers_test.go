package database

import (
	"context"
	"testing"
	"time"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*Service, func()) {
	t.Helper()
	service, err := NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		service.Close()
	}
	return service, cleanup
}

// steppingClock returns a clock that advances one millisecond per call
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

func seedUser(t *testing.T, s *Service, username string, agon, chips int64) *models.User {
	t.Helper()
	user, _, err := s.CreateUser(context.Background(), store.CreateUserParams{
		Username:      username,
		StartingAgon:  decimal.NewFromInt(agon),
		StartingChips: decimal.NewFromInt(chips),
	})
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func seedNFT(t *testing.T, s *Service, owner *models.User, name, category string) *models.NFT {
	t.Helper()
	nft := &models.NFT{
		Id:             uuid.New().String(),
		CreatorId:      owner.Id,
		CurrentOwnerId: owner.Id,
		Name:           name,
		ImageRef:       "images/" + name + ".png",
		Category:       category,
		Tags:           []string{"test"},
		EditionNumber:  1,
		EditionTotal:   1,
	}
	err := s.RunInTx(context.Background(), func(tx *Tx) error {
		nft.MintedAt = tx.Now()
		return tx.InsertNFT(context.Background(), nft)
	})
	if err != nil {
		t.Fatalf("Failed to insert nft %s: %v", name, err)
	}
	return nft
}

func listNFT(t *testing.T, s *Service, nft *models.NFT, price string) {
	t.Helper()
	err := s.RunInTx(context.Background(), func(tx *Tx) error {
		return tx.SetListed(context.Background(), nft.Id, nft.CurrentOwnerId, decimal.RequireFromString(price))
	})
	if err != nil {
		t.Fatalf("Failed to list nft %s: %v", nft.Name, err)
	}
}

package database

import (
	"context"
	"testing"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestReplaceBid_KeepsOneActivePerBidder(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "owner", 0, 0)
	bidder := seedUser(t, service, "bidder", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	for _, amount := range []int64{50, 80} {
		err := service.RunInTx(ctx, func(tx *Tx) error {
			_, _, err := tx.ReplaceBid(ctx, nft.Id, bidder.Id, decimal.NewFromInt(amount))
			return err
		})
		if err != nil {
			t.Fatalf("ReplaceBid(%d) failed: %v", amount, err)
		}
	}

	bids, err := service.GetBids(ctx, nft.Id)
	if err != nil {
		t.Fatalf("GetBids failed: %v", err)
	}
	if len(bids) != 2 {
		t.Fatalf("Expected 2 bids, got %d", len(bids))
	}
	if bids[0].Status != models.BidCancelled || !bids[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected the 50 bid to be cancelled, got %s %s", bids[0].Amount, bids[0].Status)
	}
	if bids[1].Status != models.BidActive || !bids[1].Amount.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected the 80 bid to be active, got %s %s", bids[1].Amount, bids[1].Status)
	}
}

func TestActiveBidIndexRejectsSecondActiveBid(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	owner := seedUser(t, service, "owner", 0, 0)
	bidder := seedUser(t, service, "bidder", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	insert := "INSERT INTO nft_bids (id, nft_id, bidder_id, bid_amount_cents, status, created_at) VALUES (?, ?, ?, 100, 'active', CURRENT_TIMESTAMP)"
	if _, err := service.db.Exec(insert, uuid.New().String(), nft.Id, bidder.Id); err != nil {
		t.Fatalf("First active bid failed: %v", err)
	}
	if _, err := service.db.Exec(insert, uuid.New().String(), nft.Id, bidder.Id); err == nil {
		t.Error("Expected a second active bid for the same bidder to be rejected")
	}
}

func TestSetBidStatus_TerminalStatesAreFinal(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "owner", 0, 0)
	bidder := seedUser(t, service, "bidder", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	var bid *models.Bid
	if err := service.RunInTx(ctx, func(tx *Tx) error {
		var err error
		bid, _, err = tx.ReplaceBid(ctx, nft.Id, bidder.Id, decimal.NewFromInt(5))
		return err
	}); err != nil {
		t.Fatalf("ReplaceBid failed: %v", err)
	}

	setStatus := func(status models.BidStatus) error {
		return service.RunInTx(ctx, func(tx *Tx) error {
			return tx.SetBidStatus(ctx, bid.Id, status)
		})
	}

	if err := setStatus(models.BidCancelled); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	for _, status := range []models.BidStatus{models.BidCancelled, models.BidAccepted} {
		if err := setStatus(status); store.KindOf(err) != store.KindInvalidState {
			t.Errorf("Expected invalid state moving cancelled bid to %s, got %v", status, err)
		}
	}
	if err := setStatus(models.BidActive); store.KindOf(err) != store.KindInvalidArgument {
		t.Errorf("Expected reactivation to be rejected as invalid argument, got %v", err)
	}
}

func TestCancelActiveBids(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "owner", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	var keep string
	for i, name := range []string{"a", "b", "c"} {
		bidder := seedUser(t, service, name, 0, 0)
		if err := service.RunInTx(ctx, func(tx *Tx) error {
			bid, _, err := tx.ReplaceBid(ctx, nft.Id, bidder.Id, decimal.NewFromInt(int64(10+i)))
			if i == 0 {
				keep = bid.Id
			}
			return err
		}); err != nil {
			t.Fatalf("ReplaceBid failed: %v", err)
		}
	}

	var cancelled int64
	if err := service.RunInTx(ctx, func(tx *Tx) error {
		var err error
		cancelled, err = tx.CancelActiveBids(ctx, nft.Id, keep)
		return err
	}); err != nil {
		t.Fatalf("CancelActiveBids failed: %v", err)
	}
	if cancelled != 2 {
		t.Errorf("Expected 2 cancelled bids, got %d", cancelled)
	}

	book, err := service.GetOrderBook(ctx, nft.Id)
	if err != nil {
		t.Fatalf("GetOrderBook failed: %v", err)
	}
	if len(book) != 1 || book[0].Id != keep {
		t.Errorf("Expected only %s left active, got %+v", keep, book)
	}
}

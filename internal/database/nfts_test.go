package database

import (
	"context"
	"testing"
	"time"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestListingConstraintRejectsHalfListedRows(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	owner := seedUser(t, service, "alice", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	if _, err := service.db.Exec("UPDATE nfts SET is_listed = TRUE WHERE id = ?", nft.Id); err == nil {
		t.Error("Expected listed row without ask price to be rejected")
	}
	if _, err := service.db.Exec("UPDATE nfts SET ask_price_cents = 500 WHERE id = ?", nft.Id); err == nil {
		t.Error("Expected unlisted row with ask price to be rejected")
	}
}

func TestSetListedRequiresOwner(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "alice", 0, 0)
	other := seedUser(t, service, "bob", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	err := service.RunInTx(ctx, func(tx *Tx) error {
		return tx.SetListed(ctx, nft.Id, other.Id, decimal.NewFromInt(10))
	})
	if store.KindOf(err) != store.KindInvalidState {
		t.Fatalf("Expected invalid state when lister does not own the NFT, got %v", err)
	}

	listNFT(t, service, nft, "12.34")
	got, err := service.GetNFT(ctx, nft.Id)
	if err != nil {
		t.Fatalf("GetNFT failed: %v", err)
	}
	if !got.IsListed || !got.AskPrice.Valid || !got.AskPrice.Decimal.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("Expected listing at 12.34, got listed=%v price=%v", got.IsListed, got.AskPrice)
	}
	if got.ListedAt == nil {
		t.Error("Expected listed_at to be set")
	}
	if len(got.Tags) != 1 || got.Tags[0] != "test" {
		t.Errorf("Expected tags to round trip, got %v", got.Tags)
	}
}

func TestListNFTs_FiltersAndPagination(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	service.SetClock(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	ctx := context.Background()
	alice := seedUser(t, service, "alice", 0, 0)
	bob := seedUser(t, service, "bob", 0, 0)

	castle := seedNFT(t, service, alice, "Castle Build", "notable_builds")
	flag := seedNFT(t, service, alice, "Red Flag", "nation_flags")
	meme := seedNFT(t, service, bob, "Funny Moment", "memes_moments")
	listNFT(t, service, castle, "300")
	listNFT(t, service, meme, "50")
	_ = flag

	tests := []struct {
		name   string
		filter store.NFTFilter
		want   []string
	}{
		{"default newest first", store.NFTFilter{}, []string{meme.Id, flag.Id, castle.Id}},
		{"listed only by price", store.NFTFilter{ListedOnly: true, SortBy: "ask_price", Order: "asc"}, []string{meme.Id, castle.Id}},
		{"category", store.NFTFilter{Category: "nation_flags"}, []string{flag.Id}},
		{"search is case insensitive", store.NFTFilter{Search: "castle"}, []string{castle.Id}},
		{"min price", store.NFTFilter{MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(100))}, []string{castle.Id}},
		{"owner", store.NFTFilter{OwnerId: bob.Id}, []string{meme.Id}},
		{"name ascending", store.NFTFilter{SortBy: "name", Order: "asc"}, []string{castle.Id, meme.Id, flag.Id}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.ListNFTs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListNFTs failed: %v", err)
			}
			if len(page.NFTs) != len(tt.want) {
				t.Fatalf("Expected %d nfts, got %d", len(tt.want), len(page.NFTs))
			}
			for i, id := range tt.want {
				if page.NFTs[i].Id != id {
					t.Errorf("Position %d: expected %s, got %s (%s)", i, id, page.NFTs[i].Id, page.NFTs[i].Name)
				}
			}
		})
	}

	page, err := service.ListNFTs(ctx, store.NFTFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListNFTs failed: %v", err)
	}
	if page.Total != 3 || !page.HasMore || len(page.NFTs) != 2 {
		t.Errorf("Expected first page of 2/3 with more, got total=%d more=%v len=%d", page.Total, page.HasMore, len(page.NFTs))
	}

	if _, err := service.ListNFTs(ctx, store.NFTFilter{SortBy: "id; DROP TABLE nfts"}); store.KindOf(err) != store.KindInvalidArgument {
		t.Errorf("Expected unknown sort column to be rejected, got %v", err)
	}
}

func TestListNFTs_SearchMatchesWildcardsLiterally(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "alice", 0, 0)
	percent := seedNFT(t, service, owner, "100% Castle", "notable_builds")
	underscore := seedNFT(t, service, owner, "red_flag", "nation_flags")
	backslash := seedNFT(t, service, owner, `back\slash`, "other")
	seedNFT(t, service, owner, "Plain Flag", "nation_flags")

	tests := []struct {
		search string
		want   string
	}{
		{"%", percent.Id},
		{"_", underscore.Id},
		{"0% c", percent.Id},
		{`\`, backslash.Id},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := service.ListNFTs(ctx, store.NFTFilter{Search: tt.search})
			if err != nil {
				t.Fatalf("ListNFTs failed: %v", err)
			}
			if len(page.NFTs) != 1 || page.NFTs[0].Id != tt.want {
				names := make([]string, 0, len(page.NFTs))
				for _, nft := range page.NFTs {
					names = append(names, nft.Name)
				}
				t.Errorf("Search %q: expected only %s, got %v", tt.search, tt.want, names)
			}
		})
	}
}

func TestListNFTs_RejectsOutOfRangePrices(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	huge := decimal.NewNullDecimal(decimal.RequireFromString("100000000000000000000"))
	for name, filter := range map[string]store.NFTFilter{
		"min price": {MinPrice: huge},
		"max price": {MaxPrice: huge},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := service.ListNFTs(context.Background(), filter); store.KindOf(err) != store.KindInvalidArgument {
				t.Errorf("Expected invalid argument, got %v", err)
			}
		})
	}
}

func TestGetNFTDetail_CountsViewsAndRanksBids(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	service.SetClock(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	ctx := context.Background()
	owner := seedUser(t, service, "owner", 0, 0)
	early := seedUser(t, service, "early", 0, 0)
	late := seedUser(t, service, "late", 0, 0)
	low := seedUser(t, service, "low", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	var earlyBid, lateBid, lowBid *models.Bid
	place := func(bidder *models.User, amount int64) *models.Bid {
		var bid *models.Bid
		err := service.RunInTx(ctx, func(tx *Tx) error {
			var err error
			bid, _, err = tx.ReplaceBid(ctx, nft.Id, bidder.Id, decimal.NewFromInt(amount))
			return err
		})
		if err != nil {
			t.Fatalf("ReplaceBid failed: %v", err)
		}
		return bid
	}
	lowBid = place(low, 10)
	earlyBid = place(early, 80)
	lateBid = place(late, 80)

	detail, err := service.GetNFTDetail(ctx, nft.Id)
	if err != nil {
		t.Fatalf("GetNFTDetail failed: %v", err)
	}
	if detail.NFT.ViewCount != 1 {
		t.Errorf("Expected view count 1, got %d", detail.NFT.ViewCount)
	}

	want := []string{earlyBid.Id, lateBid.Id, lowBid.Id}
	if len(detail.Bids) != len(want) {
		t.Fatalf("Expected %d bids, got %d", len(want), len(detail.Bids))
	}
	for i, id := range want {
		if detail.Bids[i].Id != id {
			t.Errorf("Order book position %d: expected %s, got %s", i, id, detail.Bids[i].Id)
		}
	}

	if _, err := service.GetNFTDetail(ctx, "missing"); store.KindOf(err) != store.KindNotFound {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestLikes(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	owner := seedUser(t, service, "owner", 0, 0)
	fan := seedUser(t, service, "fan", 0, 0)
	nft := seedNFT(t, service, owner, "flag", "nation_flags")

	like := func() bool {
		var added bool
		if err := service.RunInTx(ctx, func(tx *Tx) error {
			var err error
			added, err = tx.AddLike(ctx, nft.Id, fan.Id)
			return err
		}); err != nil {
			t.Fatalf("AddLike failed: %v", err)
		}
		return added
	}

	if !like() {
		t.Error("Expected first like to be added")
	}
	if like() {
		t.Error("Expected duplicate like to be ignored")
	}

	got, _ := service.GetNFT(ctx, nft.Id)
	if got.LikeCount != 1 {
		t.Errorf("Expected like count 1, got %d", got.LikeCount)
	}

	var removed bool
	if err := service.RunInTx(ctx, func(tx *Tx) error {
		var err error
		removed, err = tx.RemoveLike(ctx, nft.Id, fan.Id)
		return err
	}); err != nil || !removed {
		t.Fatalf("RemoveLike failed: removed=%v err=%v", removed, err)
	}

	got, _ = service.GetNFT(ctx, nft.Id)
	if got.LikeCount != 0 {
		t.Errorf("Expected like count 0, got %d", got.LikeCount)
	}
}

func TestGetUserNFTs_Stats(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := seedUser(t, service, "alice", 0, 0)
	bob := seedUser(t, service, "bob", 0, 0)

	kept := seedNFT(t, service, alice, "kept", "other")
	sold := seedNFT(t, service, alice, "sold", "other")
	listNFT(t, service, kept, "40.50")
	if err := service.RunInTx(ctx, func(tx *Tx) error {
		return tx.TransferNFT(ctx, sold.Id, alice.Id, bob.Id)
	}); err != nil {
		t.Fatalf("TransferNFT failed: %v", err)
	}

	owned, err := service.GetUserNFTs(ctx, alice.Id, false)
	if err != nil {
		t.Fatalf("GetUserNFTs failed: %v", err)
	}
	if len(owned.NFTs) != 1 || owned.Stats.OwnedCount != 1 || owned.Stats.CreatedCount != 2 {
		t.Errorf("Unexpected owned-only result: %d nfts, stats %+v", len(owned.NFTs), owned.Stats)
	}
	if !owned.Stats.TotalValue.Equal(decimal.RequireFromString("40.50")) {
		t.Errorf("Expected total value 40.50, got %s", owned.Stats.TotalValue)
	}

	withCreated, err := service.GetUserNFTs(ctx, alice.Id, true)
	if err != nil {
		t.Fatalf("GetUserNFTs failed: %v", err)
	}
	if len(withCreated.NFTs) != 2 {
		t.Errorf("Expected owned and created nfts, got %d", len(withCreated.NFTs))
	}
}

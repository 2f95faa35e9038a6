package trading

import (
	"context"
	"strings"
	"testing"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMint_ChargesCostAndRecordsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "1000")

	result, err := f.engine.Mint(ctx, creator.Id, MintParams{
		Name:        "  Capital Skyline ",
		Description: "the view from the spawn tower",
		ImageRef:    "nfts/skyline.png",
		Category:    "notable_builds",
		Tags:        "builds, skyline,, builds ,capital",
	})
	require.NoError(t, err)

	nft := result.NFT
	assert.Equal(t, "Capital Skyline", nft.Name)
	assert.Equal(t, creator.Id, nft.CreatorId)
	assert.Equal(t, creator.Id, nft.CurrentOwnerId)
	assert.Equal(t, []string{"builds", "skyline", "capital"}, nft.Tags)
	assert.Equal(t, 1, nft.EditionNumber)
	assert.Equal(t, 1, nft.EditionTotal)
	assert.False(t, nft.IsListed)
	assert.False(t, nft.AskPrice.Valid)

	assert.True(t, result.Wallet.Agon.Equal(dec("900")), "wallet after mint: %s", result.Wallet.Agon)

	rows := f.ledger(t, nft.Id)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TxMint, rows[0].Type)
	assert.Empty(t, rows[0].FromUserId)
	assert.Equal(t, creator.Id, rows[0].ToUserId)
	assert.True(t, rows[0].Amount.Equal(dec("100")))
	assert.True(t, rows[0].Fee.IsZero())
	assert.Equal(t, "NFT minted", rows[0].Notes)

	assert.Equal(t, []models.MarketEventType{models.EventMinted}, f.publisher.types())
}

func TestMint_InsufficientFundsCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "99.99")

	_, err := f.engine.Mint(ctx, creator.Id, MintParams{Name: "Broke", ImageRef: "nfts/broke.png"})
	requireKind(t, store.KindInsufficientFunds, err)

	owned, err := f.db.GetUserNFTs(ctx, creator.Id, true)
	require.NoError(t, err)
	assert.Empty(t, owned.NFTs)
	assert.True(t, f.agon(t, creator.Id).Equal(dec("99.99")))
	assert.Empty(t, f.publisher.types())
}

func TestMint_Validation(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", "1000")

	tests := []struct {
		name   string
		params MintParams
	}{
		{"missing name", MintParams{Name: "   ", ImageRef: "a.png"}},
		{"long name", MintParams{Name: strings.Repeat("x", 256), ImageRef: "a.png"}},
		{"missing image", MintParams{Name: "ok"}},
		{"unknown category", MintParams{Name: "ok", ImageRef: "a.png", Category: "weapons"}},
		{"edition beyond total", MintParams{Name: "ok", ImageRef: "a.png", EditionNumber: 3, EditionTotal: 2}},
		{"negative edition", MintParams{Name: "ok", ImageRef: "a.png", EditionNumber: -1, EditionTotal: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Mint(context.Background(), creator.Id, tt.params)
			requireKind(t, store.KindInvalidArgument, err)
		})
	}
	assert.True(t, f.agon(t, creator.Id).Equal(dec("1000")))
}

func TestMint_UnknownCreator(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Mint(context.Background(), "ghost", MintParams{Name: "ok", ImageRef: "a.png"})
	requireKind(t, store.KindNotFound, err)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{"a", "b"}, ParseTags(" a ,b, a,,"))
}

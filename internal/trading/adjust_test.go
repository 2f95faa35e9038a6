package trading

import (
	"context"
	"testing"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustBalance_WithinCeiling(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", "0")
	alice := f.user(t, "alice", "10")

	adjustment, wallet, err := f.engine.AdjustBalance(context.Background(), store.AdjustBalanceParams{
		AdminId:  admin.Id,
		UserId:   alice.Id,
		Currency: models.CurrencyAgon,
		Delta:    f.engine.MaxAdjustment(),
	})
	require.NoError(t, err)
	assert.True(t, adjustment.BalanceAfter.Equal(dec("1000010")))
	assert.True(t, wallet.Agon.Equal(adjustment.BalanceAfter))
}

func TestAdjustBalance_RejectsBeyondCeiling(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", "0")
	alice := f.user(t, "alice", "10")

	for _, delta := range []string{"1000000.01", "-1000000.01", "200000000000000000", "100000000000000000000"} {
		t.Run(delta, func(t *testing.T) {
			_, _, err := f.engine.AdjustBalance(context.Background(), store.AdjustBalanceParams{
				AdminId:  admin.Id,
				UserId:   alice.Id,
				Currency: models.CurrencyAgon,
				Delta:    dec(delta),
			})
			requireKind(t, store.KindInvalidArgument, err)
		})
	}
	assert.True(t, f.agon(t, alice.Id).Equal(dec("10")))
}

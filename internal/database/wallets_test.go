package database

import (
	"context"
	"errors"
	"testing"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestCreateUser_OpensWallet(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user, wallet, err := service.CreateUser(ctx, store.CreateUserParams{
		Username:      "alice",
		StartingAgon:  decimal.RequireFromString("1000.50"),
		StartingChips: decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if wallet.UserId != user.Id {
		t.Errorf("Expected wallet for %s, got %s", user.Id, wallet.UserId)
	}
	if !wallet.Agon.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("Expected agon 1000.50, got %s", wallet.Agon)
	}
	if !wallet.GameChips.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected chips 250, got %s", wallet.GameChips)
	}

	got, err := service.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.Id != user.Id {
		t.Errorf("Expected user %s, got %s", user.Id, got.Id)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	seedUser(t, service, "alice", 0, 0)
	_, _, err := service.CreateUser(context.Background(), store.CreateUserParams{Username: "alice"})
	if store.KindOf(err) != store.KindInvalidState {
		t.Fatalf("Expected invalid state for duplicate username, got %v", err)
	}

	users, err := service.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}

func TestDebit(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, service, "alice", 100, 50)

	tests := []struct {
		name     string
		currency models.Currency
		userId   string
		amount   string
		wantKind store.Kind
		wantErr  bool
	}{
		{"exact balance", models.CurrencyChips, user.Id, "50", 0, false},
		{"over balance", models.CurrencyAgon, user.Id, "100.01", store.KindInsufficientFunds, true},
		{"missing wallet", models.CurrencyAgon, "nobody", "1", store.KindNotFound, true},
		{"zero amount", models.CurrencyAgon, user.Id, "0", store.KindInvalidArgument, true},
		{"unknown currency", models.Currency("gold"), user.Id, "1", store.KindInvalidArgument, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.RunInTx(ctx, func(tx *Tx) error {
				_, err := tx.Debit(ctx, tt.currency, tt.userId, decimal.RequireFromString(tt.amount))
				return err
			})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Debit failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if got := store.KindOf(err); got != tt.wantKind {
				t.Errorf("Expected kind %s, got %s (%v)", tt.wantKind, got, err)
			}
		})
	}

	wallet, err := service.GetWallet(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Agon.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected agon untouched at 100, got %s", wallet.Agon)
	}
	if !wallet.GameChips.IsZero() {
		t.Errorf("Expected chips 0, got %s", wallet.GameChips)
	}
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, service, "alice", 100, 0)
	boom := errors.New("boom")

	err := service.RunInTx(ctx, func(tx *Tx) error {
		if _, err := tx.Credit(ctx, models.CurrencyAgon, user.Id, decimal.NewFromInt(500)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected callback error, got %v", err)
	}

	wallet, err := service.GetWallet(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Agon.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected rollback to keep 100, got %s", wallet.Agon)
	}
}

func TestAdjustBalance(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedUser(t, service, "admin", 0, 0)
	user := seedUser(t, service, "alice", 10, 10)

	adjustment, wallet, err := service.AdjustBalance(ctx, store.AdjustBalanceParams{
		AdminId:  admin.Id,
		UserId:   user.Id,
		Currency: models.CurrencyChips,
		Delta:    decimal.RequireFromString("90.25"),
	})
	if err != nil {
		t.Fatalf("AdjustBalance credit failed: %v", err)
	}
	if !adjustment.BalanceAfter.Equal(decimal.RequireFromString("100.25")) {
		t.Errorf("Expected balance after 100.25, got %s", adjustment.BalanceAfter)
	}
	if adjustment.Reason != "Admin credit" {
		t.Errorf("Expected default credit reason, got %q", adjustment.Reason)
	}
	if !wallet.GameChips.Equal(adjustment.BalanceAfter) {
		t.Errorf("Wallet %s disagrees with adjustment %s", wallet.GameChips, adjustment.BalanceAfter)
	}

	_, _, err = service.AdjustBalance(ctx, store.AdjustBalanceParams{
		AdminId:  admin.Id,
		UserId:   user.Id,
		Currency: models.CurrencyAgon,
		Delta:    decimal.NewFromInt(-11),
	})
	if store.KindOf(err) != store.KindInsufficientFunds {
		t.Errorf("Expected insufficient funds for overdraw, got %v", err)
	}

	_, _, err = service.AdjustBalance(ctx, store.AdjustBalanceParams{
		AdminId:  admin.Id,
		UserId:   user.Id,
		Currency: models.CurrencyAgon,
		Delta:    decimal.Zero,
	})
	if store.KindOf(err) != store.KindInvalidArgument {
		t.Errorf("Expected invalid argument for zero delta, got %v", err)
	}
}

func TestAdjustBalance_RejectsOversizedDelta(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedUser(t, service, "admin", 0, 0)
	user := seedUser(t, service, "alice", 10, 10)

	for _, delta := range []string{"100000000000000000000", "200000000000000000", "-200000000000000000", "1000000000000.01"} {
		t.Run(delta, func(t *testing.T) {
			_, _, err := service.AdjustBalance(ctx, store.AdjustBalanceParams{
				AdminId:  admin.Id,
				UserId:   user.Id,
				Currency: models.CurrencyAgon,
				Delta:    decimal.RequireFromString(delta),
			})
			if store.KindOf(err) != store.KindInvalidArgument {
				t.Fatalf("Expected invalid argument for delta %s, got %v", delta, err)
			}
		})
	}

	wallet, err := service.GetWallet(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Agon.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected agon unchanged at 10, got %s", wallet.Agon)
	}

	var recorded int
	if err := service.queryRow(ctx, "SELECT COUNT(*) FROM wallet_adjustments WHERE user_id = ?", user.Id).Scan(&recorded); err != nil {
		t.Fatalf("Counting adjustments failed: %v", err)
	}
	if recorded != 0 {
		t.Errorf("Expected no recorded adjustments, got %d", recorded)
	}
}

func TestCredit_RefusesBalanceAboveCeiling(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, service, "alice", 10, 0)

	err := service.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.Credit(ctx, models.CurrencyAgon, user.Id, decimal.New(1, 15))
		return err
	})
	if store.KindOf(err) != store.KindInvalidArgument {
		t.Fatalf("Expected invalid argument for credit past the ceiling, got %v", err)
	}

	err = service.RunInTx(ctx, func(tx *Tx) error {
		_, err := tx.Credit(ctx, models.CurrencyAgon, "missing-user", decimal.NewFromInt(1))
		return err
	})
	if store.KindOf(err) != store.KindNotFound {
		t.Errorf("Expected not found for missing wallet, got %v", err)
	}

	wallet, err := service.GetWallet(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Agon.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected agon unchanged at 10, got %s", wallet.Agon)
	}
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type currencyQueries struct {
	debit   string
	credit  string
	balance string
}

var walletQueries = map[models.Currency]currencyQueries{
	models.CurrencyAgon:  {debit: queryDebitAgon, credit: queryCreditAgon, balance: queryGetAgonBalance},
	models.CurrencyChips: {debit: queryDebitChips, credit: queryCreditChips, balance: queryGetChipsBalance},
}

func queriesFor(currency models.Currency) (currencyQueries, error) {
	q, ok := walletQueries[currency]
	if !ok {
		return currencyQueries{}, fmt.Errorf("%w: unknown currency %q", store.ErrInvalidArgument, currency)
	}
	return q, nil
}

func scanWallet(row scanner) (*models.Wallet, error) {
	var wallet models.Wallet
	var agonCents, chipsCents int64
	if err := row.Scan(&wallet.UserId, &agonCents, &chipsCents, &wallet.UpdatedAt); err != nil {
		return nil, err
	}
	wallet.Agon = money.FromCents(agonCents)
	wallet.GameChips = money.FromCents(chipsCents)
	wallet.UpdatedAt = wallet.UpdatedAt.UTC()
	return &wallet, nil
}

// GetWallet reads a wallet inside the transaction
func (t *Tx) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	wallet, err := scanWallet(t.queryRow(ctx, queryGetWallet, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wallet for user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

func (t *Tx) balance(ctx context.Context, q currencyQueries, userId string) (decimal.Decimal, error) {
	var balanceCents int64
	err := t.queryRow(ctx, q.balance, userId).Scan(&balanceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: wallet for user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	return money.FromCents(balanceCents), nil
}

// Debit removes amount from the user's balance only if the balance covers it,
// then re-reads the balance and fails with store.ErrConcurrentModification
// if it is negative.
func (t *Tx) Debit(ctx context.Context, currency models.Currency, userId string, amount decimal.Decimal) (decimal.Decimal, error) {
	q, err := queriesFor(currency)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: debit amount must be positive", store.ErrInvalidArgument)
	}

	amountCents, err := cents(amount)
	if err != nil {
		return decimal.Zero, err
	}
	rowsAffected, err := t.execAffected(ctx, q.debit, amountCents, t.now, userId, amountCents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if rowsAffected == 0 {
		current, err := t.balance(ctx, q, userId)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %s balance %s is below %s", store.ErrInsufficientFunds, currency, current, amount)
	}

	after, err := t.balance(ctx, q, userId)
	if err != nil {
		return decimal.Zero, err
	}
	if after.IsNegative() {
		zap.L().Error("Balance negative after conditional debit",
			zap.String("user_id", userId),
			zap.String("currency", string(currency)),
			zap.String("amount", amount.String()),
			zap.String("balance_after", after.String()))
		return decimal.Zero, fmt.Errorf("%w: %s balance of user %s dropped below zero", store.ErrConcurrentModification, currency, userId)
	}
	return after, nil
}

// Credit adds amount to the user's balance and returns the new balance
func (t *Tx) Credit(ctx context.Context, currency models.Currency, userId string, amount decimal.Decimal) (decimal.Decimal, error) {
	q, err := queriesFor(currency)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: credit amount must be positive", store.ErrInvalidArgument)
	}

	amountCents, err := cents(amount)
	if err != nil {
		return decimal.Zero, err
	}
	rowsAffected, err := t.execAffected(ctx, q.credit, amountCents, t.now, userId, maxBalanceCents-amountCents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit wallet: %w", err)
	}
	if rowsAffected == 0 {
		// balance reports a missing wallet as not found
		if _, err := t.balance(ctx, q, userId); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %s balance would exceed %s", store.ErrInvalidArgument, currency, money.MaxBalance)
	}
	return t.balance(ctx, q, userId)
}

func (s *Service) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	zap.L().Debug("Getting wallet", zap.String("user_id", userId))

	wallet, err := scanWallet(s.queryRow(ctx, queryGetWallet, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wallet for user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		zap.L().Error("Failed to get wallet", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

// AdjustBalance applies an administrative credit or debit and records it in
// wallet_adjustments within one transaction.
func (s *Service) AdjustBalance(ctx context.Context, params store.AdjustBalanceParams) (*models.WalletAdjustment, *models.Wallet, error) {
	if !params.Currency.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid currency %q", store.ErrInvalidArgument, params.Currency)
	}
	if params.Delta.IsZero() {
		return nil, nil, fmt.Errorf("%w: amount must be non-zero", store.ErrInvalidArgument)
	}
	if !money.HasValidPrecision(params.Delta) {
		return nil, nil, fmt.Errorf("%w: amount has more than two decimal places", store.ErrInvalidArgument)
	}
	if params.Delta.Abs().GreaterThan(money.MaxAmount) {
		return nil, nil, fmt.Errorf("%w: adjustment must not exceed %s", store.ErrInvalidArgument, money.MaxAmount)
	}

	reason := params.Reason
	if reason == "" {
		reason = "Admin credit"
		if params.Delta.IsNegative() {
			reason = "Admin debit"
		}
	}

	var adjustment *models.WalletAdjustment
	var wallet *models.Wallet
	err := s.RunInTx(ctx, func(tx *Tx) error {
		var after decimal.Decimal
		var err error
		if params.Delta.IsPositive() {
			after, err = tx.Credit(ctx, params.Currency, params.UserId, params.Delta)
		} else {
			after, err = tx.Debit(ctx, params.Currency, params.UserId, params.Delta.Neg())
		}
		if err != nil {
			return err
		}

		adjustment = &models.WalletAdjustment{
			Id:           uuid.New().String(),
			AdminId:      params.AdminId,
			UserId:       params.UserId,
			Currency:     params.Currency,
			Amount:       params.Delta,
			BalanceAfter: after,
			Reason:       reason,
			CreatedAt:    tx.Now(),
		}
		amountCents, err := cents(adjustment.Amount)
		if err != nil {
			return err
		}
		afterCents, err := cents(adjustment.BalanceAfter)
		if err != nil {
			return err
		}
		if _, err := tx.exec(ctx, queryInsertWalletAdjustment,
			adjustment.Id, adjustment.AdminId, adjustment.UserId, string(adjustment.Currency),
			amountCents, afterCents, adjustment.Reason, adjustment.CreatedAt); err != nil {
			return fmt.Errorf("failed to record adjustment: %w", err)
		}

		wallet, err = tx.GetWallet(ctx, params.UserId)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Wallet adjusted",
		zap.String("admin_id", params.AdminId),
		zap.String("user_id", params.UserId),
		zap.String("currency", string(params.Currency)),
		zap.String("delta", params.Delta.String()),
		zap.String("balance_after", adjustment.BalanceAfter.String()))

	return adjustment, wallet, nil
}

package trading

import (
	"context"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxAdjustment is the largest credit or debit an admin may apply at once
func (e *Engine) MaxAdjustment() decimal.Decimal {
	return e.cfg.MaxAdjustment
}

// AdjustBalance applies an administrative credit or debit after checking it
// against the configured per-adjustment ceiling.
func (e *Engine) AdjustBalance(ctx context.Context, params store.AdjustBalanceParams) (*models.WalletAdjustment, *models.Wallet, error) {
	if params.Delta.Abs().GreaterThan(e.cfg.MaxAdjustment) {
		err := fmt.Errorf("%w: adjustment must not exceed %s", store.ErrInvalidArgument, e.cfg.MaxAdjustment)
		logFailure("AdjustBalance", err,
			zap.String("admin_id", params.AdminId),
			zap.String("user_id", params.UserId),
			zap.String("delta", params.Delta.String()))
		return nil, nil, err
	}

	adjustment, wallet, err := e.db.AdjustBalance(ctx, params)
	if err != nil {
		logFailure("AdjustBalance", err,
			zap.String("admin_id", params.AdminId),
			zap.String("user_id", params.UserId),
			zap.String("delta", params.Delta.String()))
		return nil, nil, err
	}
	return adjustment, wallet, nil
}

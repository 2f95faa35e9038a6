package games

import (
	"context"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// DrawCrashPoint draws a multiplier in [1.00, MaxMultiplier]. A share of
// rounds crash instantly at 1.00; the rest follow
// floor(100 * (1 - edge) / (1 - r)) / 100.
func DrawCrashPoint(source Source, cfg models.CrashConfig) decimal.Decimal {
	if source.Float64() < cfg.InstantCrashProbability {
		return one
	}

	r := source.Float64()
	point := money.Floor2(decimal.NewFromFloat((1 - cfg.HouseEdge) / (1 - r)))
	if point.LessThan(one) {
		return one
	}
	if point.GreaterThan(cfg.MaxMultiplier) {
		return cfg.MaxMultiplier
	}
	return point
}

// Crash settles a round that cashes out at cashOutAt. The player wins when
// the drawn crash point reaches the target.
func (e *Engine) Crash(ctx context.Context, userId string, bet, cashOutAt decimal.Decimal) (*models.CrashResult, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}
	target := money.Round2(cashOutAt)
	if target.LessThan(e.cfg.Crash.MinCashOut) || target.GreaterThan(e.cfg.Crash.MaxCashOut) {
		return nil, fmt.Errorf("%w: cash out must be between %s and %s",
			store.ErrInvalidArgument, e.cfg.Crash.MinCashOut.StringFixed(2), e.cfg.Crash.MaxCashOut.StringFixed(2))
	}

	return e.settleCrash(ctx, userId, bet, target, DrawCrashPoint(e.source, e.cfg.Crash))
}

func (e *Engine) settleCrash(ctx context.Context, userId string, bet, target, crashPoint decimal.Decimal) (*models.CrashResult, error) {
	won := crashPoint.GreaterThanOrEqual(target)
	change := bet.Neg()
	if won {
		change = money.Floor2(bet.Mul(target)).Sub(bet)
	}

	round := &models.GameRound{
		UserId:       userId,
		GameType:     models.GameCrash,
		BetAmount:    bet,
		Choice:       models.CrashChoice{CashOutAt: target},
		Result:       crashPoint.StringFixed(2),
		Won:          won,
		AmountChange: change,
	}
	balance, err := e.settle(ctx, round)
	if err != nil {
		return nil, err
	}

	return &models.CrashResult{
		RoundId:      round.Id,
		Won:          won,
		CrashPoint:   crashPoint,
		CashOutAt:    target,
		AmountChange: change,
		NewBalance:   balance,
	}, nil
}

package games

import (
	"context"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
)

// Coinflip pays even money. The win is drawn at the configured probability
// and the reported side follows from it.
func (e *Engine) Coinflip(ctx context.Context, userId string, bet decimal.Decimal, choice models.CoinSide) (*models.CoinflipResult, error) {
	if !choice.Valid() {
		return nil, fmt.Errorf("%w: choice must be heads or tails", store.ErrInvalidArgument)
	}
	if err := validateBet(bet); err != nil {
		return nil, err
	}

	won := e.source.Float64() < e.cfg.Coinflip.WinProbability
	side := choice
	change := bet
	if !won {
		side = choice.Opposite()
		change = bet.Neg()
	}

	round := &models.GameRound{
		UserId:       userId,
		GameType:     models.GameCoinflip,
		BetAmount:    bet,
		Choice:       models.CoinflipChoice{Side: choice},
		Result:       string(side),
		Won:          won,
		AmountChange: change,
	}
	balance, err := e.settle(ctx, round)
	if err != nil {
		return nil, err
	}

	return &models.CoinflipResult{
		RoundId:      round.Id,
		Won:          won,
		Result:       side,
		AmountChange: change,
		NewBalance:   balance,
	}, nil
}

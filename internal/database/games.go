package database

import (
	"context"
	"database/sql"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultHistorySize = 20
	MaxHistorySize     = 100
)

// RecordGameRound writes the immutable history row of a settled round. Id and
// CreatedAt are assigned here.
func (t *Tx) RecordGameRound(ctx context.Context, round *models.GameRound) error {
	choice, err := models.EncodeChoice(round.Choice)
	if err != nil {
		return err
	}
	if round.Choice.GameType() != round.GameType {
		return fmt.Errorf("choice for %s recorded as %s", round.Choice.GameType(), round.GameType)
	}

	round.Id = uuid.New().String()
	round.CreatedAt = t.now
	betCents, err := cents(round.BetAmount)
	if err != nil {
		return err
	}
	changeCents, err := cents(round.AmountChange)
	if err != nil {
		return err
	}
	_, err = t.exec(ctx, queryInsertGameRound,
		round.Id, round.UserId, string(round.GameType), betCents, choice,
		round.Result, round.Won, changeCents, round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game round: %w", err)
	}
	return nil
}

// GetGameHistory returns a user's most recent rounds, optionally for one game type
func (s *Service) GetGameHistory(ctx context.Context, userId string, gameType models.GameType, limit int) ([]models.GameRound, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	if limit > MaxHistorySize {
		limit = MaxHistorySize
	}

	var rows *sql.Rows
	var err error
	if gameType == "" {
		rows, err = s.query(ctx, queryGetGameHistory, userId, limit)
	} else {
		rows, err = s.query(ctx, queryGetGameHistoryByType, userId, string(gameType), limit)
	}
	if err != nil {
		zap.L().Error("Failed to get game history", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to get game history: %w", err)
	}
	defer closeRows(rows)

	rounds := []models.GameRound{}
	for rows.Next() {
		var round models.GameRound
		var gameTypeStr, choice string
		var betCents, changeCents int64
		err := rows.Scan(&round.Id, &round.UserId, &gameTypeStr, &betCents, &choice,
			&round.Result, &round.Won, &changeCents, &round.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game round: %w", err)
		}
		round.GameType = models.GameType(gameTypeStr)
		round.Choice, err = models.DecodeChoice(round.GameType, choice)
		if err != nil {
			return nil, fmt.Errorf("round %s: %w", round.Id, err)
		}
		round.BetAmount = money.FromCents(betCents)
		round.AmountChange = money.FromCents(changeCents)
		round.CreatedAt = round.CreatedAt.UTC()
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return rounds, nil
}

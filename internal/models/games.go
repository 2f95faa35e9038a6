package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameCoinflip GameType = "coinflip"
	GameCrash    GameType = "crash"
)

func (g GameType) Valid() bool {
	return g == GameCoinflip || g == GameCrash
}

type CoinSide string

const (
	Heads CoinSide = "heads"
	Tails CoinSide = "tails"
)

func (s CoinSide) Valid() bool {
	return s == Heads || s == Tails
}

func (s CoinSide) Opposite() CoinSide {
	if s == Heads {
		return Tails
	}
	return Heads
}

// GameChoice is the player-supplied parameter set of a round. Each game type
// has exactly one concrete choice type; add new games to DecodeChoice.
type GameChoice interface {
	GameType() GameType
	isGameChoice()
}

// CoinflipChoice is the side the player called
type CoinflipChoice struct {
	Side CoinSide `json:"choice"`
}

func (CoinflipChoice) GameType() GameType { return GameCoinflip }
func (CoinflipChoice) isGameChoice()      {}

// CrashChoice is the multiplier the player cashes out at
type CrashChoice struct {
	CashOutAt decimal.Decimal `json:"cashOutAt"`
}

func (CrashChoice) GameType() GameType { return GameCrash }
func (CrashChoice) isGameChoice()      {}

// EncodeChoice serializes a choice for the game_history.choice column
func EncodeChoice(c GameChoice) (string, error) {
	if c == nil {
		return "", fmt.Errorf("choice is required")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("unable to encode %s choice: %w", c.GameType(), err)
	}
	return string(data), nil
}

// DecodeChoice parses a stored choice using the round's game type as the tag
func DecodeChoice(gameType GameType, raw string) (GameChoice, error) {
	switch gameType {
	case GameCoinflip:
		var c CoinflipChoice
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("unable to decode coinflip choice: %w", err)
		}
		return c, nil
	case GameCrash:
		var c CrashChoice
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("unable to decode crash choice: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}
}

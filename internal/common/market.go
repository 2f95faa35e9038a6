package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// yamlDecimal reads a YAML scalar as an exact decimal instead of a float
type yamlDecimal struct {
	value decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", raw, err)
	}
	d.value = value
	return nil
}

// marketFile mirrors market.yaml. Absent keys keep their defaults.
type marketFile struct {
	FeeRate       *yamlDecimal `yaml:"fee_rate"`
	MintCost      *yamlDecimal `yaml:"mint_cost"`
	MaxBid        *yamlDecimal `yaml:"max_bid"`
	MaxAdjustment *yamlDecimal `yaml:"max_adjustment"`
	StartingAgon  *yamlDecimal `yaml:"starting_agon"`
	StartingChips *yamlDecimal `yaml:"starting_chips"`
	Categories    []string     `yaml:"categories"`
	Coinflip      struct {
		WinProbability *float64 `yaml:"win_probability"`
	} `yaml:"coinflip"`
	Crash struct {
		InstantCrashProbability *float64     `yaml:"instant_crash_probability"`
		HouseEdge               *float64     `yaml:"house_edge"`
		MaxMultiplier           *yamlDecimal `yaml:"max_multiplier"`
		MinCashOut              *yamlDecimal `yaml:"min_cash_out"`
		MaxCashOut              *yamlDecimal `yaml:"max_cash_out"`
	} `yaml:"crash"`
}

func setDecimal(dst *decimal.Decimal, src *yamlDecimal) {
	if src != nil {
		*dst = src.value
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// LoadMarketConfig reads the economic tunables from the given YAML file,
// relative to the working directory unless absolute. A missing file yields
// the defaults.
func LoadMarketConfig(marketFilePath string) (models.MarketConfig, error) {
	cfg := models.DefaultMarketConfig()
	if marketFilePath == "" {
		return cfg, nil
	}

	path := marketFilePath
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, marketFilePath)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("unable to read %s: %w", marketFilePath, err)
	}

	var file marketFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return cfg, fmt.Errorf("unable to parse %s: %w", marketFilePath, err)
	}

	setDecimal(&cfg.FeeRate, file.FeeRate)
	setDecimal(&cfg.MintCost, file.MintCost)
	setDecimal(&cfg.MaxBid, file.MaxBid)
	setDecimal(&cfg.MaxAdjustment, file.MaxAdjustment)
	setDecimal(&cfg.StartingAgon, file.StartingAgon)
	setDecimal(&cfg.StartingChips, file.StartingChips)
	if len(file.Categories) > 0 {
		cfg.Categories = file.Categories
	}
	setFloat(&cfg.Coinflip.WinProbability, file.Coinflip.WinProbability)
	setFloat(&cfg.Crash.InstantCrashProbability, file.Crash.InstantCrashProbability)
	setFloat(&cfg.Crash.HouseEdge, file.Crash.HouseEdge)
	setDecimal(&cfg.Crash.MaxMultiplier, file.Crash.MaxMultiplier)
	setDecimal(&cfg.Crash.MinCashOut, file.Crash.MinCashOut)
	setDecimal(&cfg.Crash.MaxCashOut, file.Crash.MaxCashOut)

	if err := ValidateMarketConfig(cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", marketFilePath, err)
	}
	return cfg, nil
}

func ValidateMarketConfig(cfg models.MarketConfig) error {
	one := decimal.NewFromInt(1)

	if cfg.FeeRate.IsNegative() || cfg.FeeRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("fee_rate must be in [0, 1), got %s", cfg.FeeRate)
	}
	if cfg.MintCost.IsNegative() {
		return fmt.Errorf("mint_cost cannot be negative, got %s", cfg.MintCost)
	}
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"max_bid", cfg.MaxBid},
		{"max_adjustment", cfg.MaxAdjustment},
	}
	for _, a := range amounts {
		if !a.value.IsPositive() || a.value.GreaterThan(money.MaxAmount) {
			return fmt.Errorf("%s must be in (0, %s], got %s", a.name, money.MaxAmount, a.value)
		}
	}
	if cfg.MintCost.GreaterThan(money.MaxAmount) {
		return fmt.Errorf("mint_cost must not exceed %s, got %s", money.MaxAmount, cfg.MintCost)
	}
	if cfg.StartingAgon.IsNegative() || cfg.StartingChips.IsNegative() {
		return errors.New("starting balances cannot be negative")
	}
	if cfg.StartingAgon.GreaterThan(money.MaxAmount) || cfg.StartingChips.GreaterThan(money.MaxAmount) {
		return fmt.Errorf("starting balances must not exceed %s", money.MaxAmount)
	}

	for i, category := range cfg.Categories {
		if category == "" {
			return fmt.Errorf("category at index %d is empty", i)
		}
		if slices.Index(cfg.Categories, category) != i {
			return fmt.Errorf("category %q listed twice", category)
		}
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"coinflip.win_probability", cfg.Coinflip.WinProbability},
		{"crash.instant_crash_probability", cfg.Crash.InstantCrashProbability},
		{"crash.house_edge", cfg.Crash.HouseEdge},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value >= 1 {
			return fmt.Errorf("%s must be in [0, 1), got %v", p.name, p.value)
		}
	}

	crash := cfg.Crash
	if crash.MaxMultiplier.LessThan(one) {
		return fmt.Errorf("crash.max_multiplier must be at least 1, got %s", crash.MaxMultiplier)
	}
	if crash.MinCashOut.LessThanOrEqual(one) || crash.MinCashOut.GreaterThan(crash.MaxCashOut) {
		return errors.New("crash.min_cash_out must be above 1 and at most max_cash_out")
	}
	if crash.MaxCashOut.GreaterThan(crash.MaxMultiplier) {
		return errors.New("crash.max_cash_out cannot exceed max_multiplier")
	}
	return nil
}

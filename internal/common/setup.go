package common

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agon-market-go/internal/database"
	"agon-market-go/internal/feed"
	"agon-market-go/internal/games"
	"agon-market-go/internal/models"
	"agon-market-go/internal/ratelimit"
	"agon-market-go/internal/trading"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from a .env file when one is present
func init() {
	if err := godotenv.Load(); err != nil {
		// Environment variables can still come from the shell or the container
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services is everything the HTTP server needs, wired together
type Services struct {
	DbService *database.Service
	Market    models.MarketConfig
	Trading   *trading.Engine
	Games     *games.Engine
	Feed      *feed.Hub
	Limiter   ratelimit.Limiter

	redisLimiter *ratelimit.RedisLimiter
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	market, err := LoadMarketConfig(cfg.MarketFile)
	if err != nil {
		return nil, err
	}

	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{
		DbService: dbService,
		Market:    market,
		Feed:      feed.NewHub(),
		Limiter:   ratelimit.Unlimited{},
	}
	services.Trading = trading.NewEngine(dbService, market, services.Feed)
	services.Games = games.NewEngine(dbService, market, games.CryptoSource{})

	if cfg.RateLimit.RedisAddr == "" {
		zap.L().Info("Rate limiting disabled (REDIS_ADDR not set)")
		return services, nil
	}

	limiter, err := ratelimit.NewRedisLimiter(ctx, cfg.RateLimit, time.Minute)
	if err != nil {
		dbService.Close()
		return nil, fmt.Errorf("unable to start rate limiter: %w", err)
	}
	services.Limiter = limiter
	services.redisLimiter = limiter

	return services, nil
}

// InitializeDatabaseOnly opens just the store, for the command-line tools
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.redisLimiter != nil {
		if err := cs.redisLimiter.Close(); err != nil {
			zap.L().Warn("Failed to close rate limiter", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}

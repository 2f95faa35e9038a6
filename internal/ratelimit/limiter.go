/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ratelimit throttles per-user write requests with a fixed window
// counter kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"agon-market-go/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "agon:ratelimit"

type Limiter interface {
	// Allow counts one request for key and reports whether it fits the window
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited allows every request. It is used when no Redis is configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter connects to Redis and allows cfg.PerMinute requests per
// key in each window.
func NewRedisLimiter(ctx context.Context, cfg models.RateLimitConfig, window time.Duration) (*RedisLimiter, error) {
	if cfg.PerMinute <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", cfg.PerMinute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			zap.L().Warn("Failed to close redis client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.L().Info("Rate limiter connected",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("per_window", cfg.PerMinute),
		zap.Duration("window", window))

	return &RedisLimiter{client: client, limit: int64(cfg.PerMinute), window: window}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", keyPrefix, key)

	// The window's clock starts with the key, so the counter can never
	// outlive it even if the client goes away mid-request
	var count *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		count = pipe.Incr(ctx, redisKey)
		return nil
	}); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return count.Val() <= l.limit, nil
}

// Reset clears the counter for key
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("%s:%s", keyPrefix, key)).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

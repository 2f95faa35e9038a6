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

package api

import (
	"context"
	"fmt"

	"agon-market-go/internal/feed"
	"agon-market-go/internal/games"
	"agon-market-go/internal/ratelimit"
	"agon-market-go/internal/store"
	"agon-market-go/internal/trading"
)

// Server is the HTTP boundary over the store and the two engines
type Server struct {
	store   store.MarketStore
	trading *trading.Engine
	games   *games.Engine
	feed    *feed.Hub
	limiter ratelimit.Limiter
	tokens  *TokenService
}

type Options struct {
	Store   store.MarketStore
	Trading *trading.Engine
	Games   *games.Engine
	Feed    *feed.Hub
	Limiter ratelimit.Limiter
	Tokens  *TokenService
}

func NewServer(opts Options) *Server {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Server{
		store:   opts.Store,
		trading: opts.Trading,
		games:   opts.Games,
		feed:    opts.Feed,
		limiter: limiter,
		tokens:  opts.Tokens,
	}
}

func (s *Server) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger writes one access log line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := models.GetIdentity(c.Request.Context()); ok {
			fields = append(fields, zap.String("user_id", id.UserId))
		}
		zap.L().Info("HTTP request", fields...)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browsers cannot set headers on a websocket handshake
		token := c.Query("token")
		return token, token != ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authRequired resolves the bearer token to a known user
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "unauthenticated", "authorization required")
			return
		}

		userId, err := s.tokens.Verify(token)
		if err != nil {
			respondStatus(c, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}

		user, err := s.store.GetUserById(c.Request.Context(), userId)
		if errors.Is(err, store.ErrNotFound) {
			respondStatus(c, http.StatusUnauthorized, "unauthenticated", "unknown user")
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}

		ctx := models.WithIdentity(c.Request.Context(), models.Identity{UserId: user.Id, IsAdmin: user.IsAdmin})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !caller(c).IsAdmin {
			respondError(c, errAdminOnly)
			return
		}
		c.Next()
	}
}

var errAdminOnly = fmt.Errorf("%w: admin access required", store.ErrForbidden)

// rateLimited throttles writes per user and bucket
func (s *Server) rateLimited(bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := caller(c)
		allowed, err := s.limiter.Allow(c.Request.Context(), bucket+":"+id.UserId)
		if err != nil {
			zap.L().Error("Rate limit check failed", zap.String("user_id", id.UserId), zap.Error(err))
			respondStatus(c, http.StatusServiceUnavailable, "unavailable", "rate limit check failed")
			return
		}
		if !allowed {
			respondStatus(c, http.StatusTooManyRequests, "rate_limited", "too many requests, please wait")
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) models.Identity {
	id, _ := models.GetIdentity(c.Request.Context())
	return id
}

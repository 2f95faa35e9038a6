package api

import (
	"net/http"

	"agon-market-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps an error kind to its HTTP status code
func statusFor(kind store.Kind) int {
	switch kind {
	case store.KindNotFound:
		return http.StatusNotFound
	case store.KindForbidden:
		return http.StatusForbidden
	case store.KindInvalidArgument:
		return http.StatusBadRequest
	case store.KindInvalidState:
		return http.StatusConflict
	case store.KindInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := store.KindOf(err)
	if kind == store.KindInternal {
		zap.L().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(statusFor(kind), errorResponse{Error: errorBody{
		Kind:    kind.String(),
		Message: store.Message(err),
	}})
}

// respondStatus writes an error that has no store kind, such as 401 or 429
func respondStatus(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

func respondBadRequest(c *gin.Context, message string) {
	respondStatus(c, http.StatusBadRequest, store.KindInvalidArgument.String(), message)
}

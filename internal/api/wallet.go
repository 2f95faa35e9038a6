package api

import (
	"net/http"

	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type adjustBalanceRequest struct {
	Currency models.Currency `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}

func (s *Server) wallet(c *gin.Context) {
	wallet, err := s.store.GetWallet(c.Request.Context(), caller(c).UserId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (s *Server) adjustBalance(c *gin.Context) {
	var req adjustBalanceRequest
	if !bindJSON(c, &req) {
		return
	}

	adjustment, wallet, err := s.trading.AdjustBalance(c.Request.Context(), store.AdjustBalanceParams{
		AdminId:  caller(c).UserId,
		UserId:   c.Param("id"),
		Currency: req.Currency,
		Delta:    req.Amount,
		Reason:   req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"adjustment": adjustment, "wallet": wallet})
}

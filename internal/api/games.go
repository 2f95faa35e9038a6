package api

import (
	"net/http"

	"agon-market-go/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type coinflipRequest struct {
	BetAmount decimal.Decimal `json:"betAmount"`
	Choice    models.CoinSide `json:"choice"`
}

type crashRequest struct {
	BetAmount decimal.Decimal `json:"betAmount"`
	CashOutAt decimal.Decimal `json:"cashOutAt"`
}

func (s *Server) coinflip(c *gin.Context) {
	var req coinflipRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.games.Coinflip(c.Request.Context(), caller(c).UserId, req.BetAmount, req.Choice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) crash(c *gin.Context) {
	var req crashRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.games.Crash(c.Request.Context(), caller(c).UserId, req.BetAmount, req.CashOutAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) gameHistory(c *gin.Context) {
	gameType := models.GameType(c.Query("game_type"))
	if gameType != "" && !gameType.Valid() {
		respondBadRequest(c, "game_type must be coinflip or crash")
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	rounds, err := s.store.GetGameHistory(c.Request.Context(), caller(c).UserId, gameType, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": rounds})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with every route mounted
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.GET("/nfts", s.listNFTs)
	api.GET("/nfts/categories", s.categories)
	api.GET("/nfts/:id", s.getNFT)
	api.GET("/nfts/user/:userId", s.userNFTs)

	authed := api.Group("", s.authRequired())
	authed.GET("/wallet", s.wallet)
	authed.GET("/games/history", s.gameHistory)
	if s.feed != nil {
		authed.GET("/feed", s.subscribeFeed)
	}

	trades := authed.Group("/nfts", s.rateLimited("trade"))
	trades.POST("/mint", s.mint)
	trades.POST("/:id/list", s.list)
	trades.POST("/:id/unlist", s.unlist)
	trades.POST("/:id/bid", s.placeBid)
	trades.POST("/:id/accept-bid", s.acceptBid)
	trades.POST("/:id/buy", s.buy)
	trades.POST("/:id/like", s.like)
	trades.DELETE("/:id/unlike", s.unlike)
	trades.DELETE("/bids/:bidId", s.cancelBid)

	bets := authed.Group("/games", s.rateLimited("game"))
	bets.POST("/coinflip", s.coinflip)
	bets.POST("/crash", s.crash)

	admin := authed.Group("/admin", adminRequired())
	admin.POST("/users/:id/adjust-balance", s.adjustBalance)

	r.NoRoute(func(c *gin.Context) {
		respondStatus(c, http.StatusNotFound, "not_found", "route not found")
	})

	return r
}

func (s *Server) health(c *gin.Context) {
	if err := s.HealthCheck(c.Request.Context()); err != nil {
		respondStatus(c, http.StatusServiceUnavailable, "unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) subscribeFeed(c *gin.Context) {
	s.feed.ServeWS(c.Writer, c.Request)
}

package api

import (
	"net/http"
	"strconv"

	"agon-market-go/internal/store"
	"agon-market-go/internal/trading"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type mintRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ImageRef      string `json:"image_ref"`
	Category      string `json:"category"`
	Tags          string `json:"tags"`
	EditionNumber int    `json:"edition_number"`
	EditionTotal  int    `json:"edition_total"`
}

type listRequest struct {
	AskPrice decimal.Decimal `json:"askPrice"`
}

type bidRequest struct {
	BidAmount decimal.Decimal `json:"bidAmount"`
}

type acceptBidRequest struct {
	BidId string `json:"bidId"`
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, name+" must be an integer")
		return 0, false
	}
	return value, true
}

func queryDecimal(c *gin.Context, name string) (decimal.NullDecimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return decimal.NullDecimal{}, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		respondBadRequest(c, name+" must be a number")
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(value), true
}

func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		respondBadRequest(c, name+" must be true or false")
		return false, false
	}
	return value, true
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) listNFTs(c *gin.Context) {
	filter := store.NFTFilter{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		CreatorId: c.Query("creator_id"),
		OwnerId:   c.Query("owner_id"),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
	}

	var ok bool
	if filter.ListedOnly, ok = queryBool(c, "listed_only"); !ok {
		return
	}
	if filter.MinPrice, ok = queryDecimal(c, "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = queryDecimal(c, "max_price"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(c, "offset"); !ok {
		return
	}

	page, err := s.store.ListNFTs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": s.trading.Categories(),
		"fee_rate":   s.trading.FeeRate(),
	})
}

func (s *Server) getNFT(c *gin.Context) {
	detail, err := s.store.GetNFTDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) userNFTs(c *gin.Context) {
	includeCreated, ok := queryBool(c, "include_created")
	if !ok {
		return
	}
	nfts, err := s.store.GetUserNFTs(c.Request.Context(), c.Param("userId"), includeCreated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nfts)
}

func (s *Server) mint(c *gin.Context) {
	var req mintRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := s.trading.Mint(c.Request.Context(), caller(c).UserId, trading.MintParams{
		Name:          req.Name,
		Description:   req.Description,
		ImageRef:      req.ImageRef,
		Category:      req.Category,
		Tags:          req.Tags,
		EditionNumber: req.EditionNumber,
		EditionTotal:  req.EditionTotal,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) list(c *gin.Context) {
	var req listRequest
	if !bindJSON(c, &req) {
		return
	}
	nft, err := s.trading.ListNFT(c.Request.Context(), caller(c).UserId, c.Param("id"), req.AskPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft": nft})
}

func (s *Server) unlist(c *gin.Context) {
	nft, err := s.trading.UnlistNFT(c.Request.Context(), caller(c).UserId, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft": nft})
}

func (s *Server) placeBid(c *gin.Context) {
	var req bidRequest
	if !bindJSON(c, &req) {
		return
	}
	bid, err := s.trading.PlaceBid(c.Request.Context(), caller(c).UserId, c.Param("id"), req.BidAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bid": bid})
}

func (s *Server) cancelBid(c *gin.Context) {
	bidId := c.Param("bidId")
	if err := s.trading.CancelBid(c.Request.Context(), caller(c).UserId, bidId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bid_id": bidId, "status": "cancelled"})
}

func (s *Server) acceptBid(c *gin.Context) {
	var req acceptBidRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.trading.AcceptBid(c.Request.Context(), caller(c).UserId, c.Param("id"), req.BidId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) buy(c *gin.Context) {
	result, err := s.trading.BuyNFT(c.Request.Context(), caller(c).UserId, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) like(c *gin.Context) {
	nft, err := s.trading.Like(c.Request.Context(), caller(c).UserId, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft": nft})
}

func (s *Server) unlike(c *gin.Context) {
	nft, err := s.trading.Unlike(c.Request.Context(), caller(c).UserId, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft": nft})
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPageSize   = 50
	MaxPageSize       = 100
	RecentHistorySize = 20
)

// Whitelisted ORDER BY columns for ListNFTs
var nftSortColumns = map[string]string{
	"minted_at":  "minted_at",
	"ask_price":  "ask_price_cents",
	"view_count": "view_count",
	"like_count": "like_count",
	"name":       "name",
}

// likeEscaper makes search text match literally under ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func scanNFT(row scanner) (*models.NFT, error) {
	var nft models.NFT
	var tags string
	var askCents sql.NullInt64
	var listedAt, lastTradedAt sql.NullTime
	err := row.Scan(&nft.Id, &nft.CreatorId, &nft.CurrentOwnerId, &nft.Name, &nft.Description, &nft.ImageRef,
		&nft.Category, &tags, &nft.EditionNumber, &nft.EditionTotal, &nft.IsListed, &askCents,
		&nft.LikeCount, &nft.ViewCount, &nft.MintedAt, &listedAt, &lastTradedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &nft.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags of nft %s: %w", nft.Id, err)
	}
	if nft.Tags == nil {
		nft.Tags = []string{}
	}
	if askCents.Valid {
		nft.AskPrice = decimal.NewNullDecimal(money.FromCents(askCents.Int64))
	}
	nft.MintedAt = nft.MintedAt.UTC()
	nft.ListedAt = timePtr(listedAt)
	nft.LastTradedAt = timePtr(lastTradedAt)
	return &nft, nil
}

func collectNFTs(rows *sql.Rows) ([]models.NFT, error) {
	defer closeRows(rows)

	nfts := []models.NFT{}
	for rows.Next() {
		nft, err := scanNFT(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nft: %w", err)
		}
		nfts = append(nfts, *nft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nft rows: %w", err)
	}
	return nfts, nil
}

// GetNFT reads and, on Postgres, row-locks an NFT for the rest of the transaction
func (t *Tx) GetNFT(ctx context.Context, nftId string) (*models.NFT, error) {
	nft, err := scanNFT(t.queryRow(ctx, queryGetNFT+t.dialect.forUpdate(), nftId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: NFT %s", store.ErrNotFound, nftId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return nft, nil
}

func (t *Tx) InsertNFT(ctx context.Context, nft *models.NFT) error {
	tags, err := json.Marshal(nft.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	_, err = t.exec(ctx, queryInsertNFT, nft.Id, nft.CreatorId, nft.CurrentOwnerId, nft.Name, nft.Description,
		nft.ImageRef, nft.Category, string(tags), nft.EditionNumber, nft.EditionTotal, nft.MintedAt)
	if err != nil {
		return fmt.Errorf("failed to insert nft: %w", err)
	}
	return nil
}

// SetListed lists an NFT at price. It fails if ownerId no longer owns it.
func (t *Tx) SetListed(ctx context.Context, nftId, ownerId string, price decimal.Decimal) error {
	priceCents, err := cents(price)
	if err != nil {
		return err
	}
	rowsAffected, err := t.execAffected(ctx, queryListNFT, priceCents, t.now, nftId, ownerId)
	if err != nil {
		return fmt.Errorf("failed to list nft: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: NFT %s changed owner", store.ErrInvalidState, nftId)
	}
	return nil
}

// SetUnlisted clears the listing. It fails if ownerId no longer owns it.
func (t *Tx) SetUnlisted(ctx context.Context, nftId, ownerId string) error {
	rowsAffected, err := t.execAffected(ctx, queryUnlistNFT, nftId, ownerId)
	if err != nil {
		return fmt.Errorf("failed to unlist nft: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: NFT %s changed owner", store.ErrInvalidState, nftId)
	}
	return nil
}

// TransferNFT moves ownership from fromId to toId and clears any listing
func (t *Tx) TransferNFT(ctx context.Context, nftId, fromId, toId string) error {
	rowsAffected, err := t.execAffected(ctx, queryTransferNFT, toId, t.now, nftId, fromId)
	if err != nil {
		return fmt.Errorf("failed to transfer nft: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: NFT %s changed owner", store.ErrInvalidState, nftId)
	}
	return nil
}

// AddLike records userId liking nftId, reporting false if it already existed
func (t *Tx) AddLike(ctx context.Context, nftId, userId string) (bool, error) {
	rowsAffected, err := t.execAffected(ctx, queryInsertLike, nftId, userId, t.now)
	if err != nil {
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}
	if _, err := t.exec(ctx, queryIncrementNFTLikes, nftId); err != nil {
		return false, fmt.Errorf("failed to increment like count: %w", err)
	}
	return true, nil
}

// RemoveLike deletes userId's like of nftId, reporting false if there was none
func (t *Tx) RemoveLike(ctx context.Context, nftId, userId string) (bool, error) {
	rowsAffected, err := t.execAffected(ctx, queryDeleteLike, nftId, userId)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}
	if _, err := t.exec(ctx, queryDecrementNFTLikes, nftId); err != nil {
		return false, fmt.Errorf("failed to decrement like count: %w", err)
	}
	return true, nil
}

func (s *Service) GetNFT(ctx context.Context, nftId string) (*models.NFT, error) {
	nft, err := scanNFT(s.queryRow(ctx, queryGetNFT, nftId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: NFT %s", store.ErrNotFound, nftId)
	}
	if err != nil {
		zap.L().Error("Failed to get nft", zap.String("nft_id", nftId), zap.Error(err))
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return nft, nil
}

// ListNFTs runs a filtered, sorted, paginated marketplace search
func (s *Service) ListNFTs(ctx context.Context, filter store.NFTFilter) (*models.NFTPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	sortColumn, ok := nftSortColumns[filter.SortBy]
	if filter.SortBy == "" {
		sortColumn, ok = "minted_at", true
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot sort by %q", store.ErrInvalidArgument, filter.SortBy)
	}
	order := "DESC"
	switch strings.ToLower(filter.Order) {
	case "", "desc":
	case "asc":
		order = "ASC"
	default:
		return nil, fmt.Errorf("%w: order must be asc or desc", store.ErrInvalidArgument)
	}

	var where []string
	var args []any
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ListedOnly {
		where = append(where, "is_listed = TRUE")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if filter.MinPrice.Valid {
		minCents, err := cents(filter.MinPrice.Decimal)
		if err != nil {
			return nil, fmt.Errorf("min_price: %w", err)
		}
		where = append(where, "ask_price_cents >= ?")
		args = append(args, minCents)
	}
	if filter.MaxPrice.Valid {
		maxCents, err := cents(filter.MaxPrice.Decimal)
		if err != nil {
			return nil, fmt.Errorf("max_price: %w", err)
		}
		where = append(where, "ask_price_cents <= ?")
		args = append(args, maxCents)
	}
	if filter.CreatorId != "" {
		where = append(where, "creator_id = ?")
		args = append(args, filter.CreatorId)
	}
	if filter.OwnerId != "" {
		where = append(where, "current_owner_id = ?")
		args = append(args, filter.OwnerId)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	zap.L().Debug("Searching nfts",
		zap.String("where", clause),
		zap.String("sort", sortColumn+" "+order),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	var total int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM nfts"+clause, args...).Scan(&total); err != nil {
		zap.L().Error("Failed to count nfts", zap.Error(err))
		return nil, fmt.Errorf("failed to count nfts: %w", err)
	}

	pageQuery := "SELECT " + nftColumns + " FROM nfts" + clause +
		" ORDER BY " + sortColumn + " " + order + ", id ASC LIMIT ? OFFSET ?"
	rows, err := s.query(ctx, pageQuery, append(args, limit, offset)...)
	if err != nil {
		zap.L().Error("Failed to search nfts", zap.Error(err))
		return nil, fmt.Errorf("failed to search nfts: %w", err)
	}
	nfts, err := collectNFTs(rows)
	if err != nil {
		return nil, err
	}

	return &models.NFTPage{
		NFTs:    nfts,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(nfts) < total,
	}, nil
}

// GetNFTDetail counts a view and returns the NFT with its order book and
// most recent ledger rows.
func (s *Service) GetNFTDetail(ctx context.Context, nftId string) (*models.NFTDetail, error) {
	result, err := s.exec(ctx, queryIncrementNFTViews, nftId)
	if err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: NFT %s", store.ErrNotFound, nftId)
	}

	nft, err := s.GetNFT(ctx, nftId)
	if err != nil {
		return nil, err
	}
	bids, err := s.GetOrderBook(ctx, nftId)
	if err != nil {
		return nil, err
	}
	transactions, err := s.GetNFTTransactions(ctx, nftId, RecentHistorySize)
	if err != nil {
		return nil, err
	}

	return &models.NFTDetail{NFT: nft, Bids: bids, Transactions: transactions}, nil
}

// GetUserNFTs returns what a user owns (and optionally created) with summary stats
func (s *Service) GetUserNFTs(ctx context.Context, userId string, includeCreated bool) (*models.UserNFTs, error) {
	if _, err := s.GetUserById(ctx, userId); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if includeCreated {
		rows, err = s.query(ctx, queryGetOwnedOrCreatedNFTs, userId, userId)
	} else {
		rows, err = s.query(ctx, queryGetOwnedNFTs, userId)
	}
	if err != nil {
		zap.L().Error("Failed to get user nfts", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to get user nfts: %w", err)
	}
	nfts, err := collectNFTs(rows)
	if err != nil {
		return nil, err
	}

	stats := models.UserNFTStats{TotalValue: decimal.Zero}
	for _, nft := range nfts {
		if nft.CurrentOwnerId != userId {
			continue
		}
		stats.OwnedCount++
		if nft.IsListed && nft.AskPrice.Valid {
			stats.TotalValue = stats.TotalValue.Add(nft.AskPrice.Decimal)
		}
	}
	if err := s.queryRow(ctx, queryCountCreatedNFTs, userId).Scan(&stats.CreatedCount); err != nil {
		return nil, fmt.Errorf("failed to count created nfts: %w", err)
	}

	return &models.UserNFTs{NFTs: nfts, Stats: stats}, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanBid(row scanner) (*models.Bid, error) {
	var bid models.Bid
	var amountCents int64
	var status string
	if err := row.Scan(&bid.Id, &bid.NftId, &bid.BidderId, &amountCents, &status, &bid.CreatedAt); err != nil {
		return nil, err
	}
	bid.Amount = money.FromCents(amountCents)
	bid.Status = models.BidStatus(status)
	bid.CreatedAt = bid.CreatedAt.UTC()
	return &bid, nil
}

func collectBids(rows *sql.Rows) ([]models.Bid, error) {
	defer closeRows(rows)

	bids := []models.Bid{}
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bid rows: %w", err)
	}
	return bids, nil
}

func (t *Tx) GetBid(ctx context.Context, bidId string) (*models.Bid, error) {
	bid, err := scanBid(t.queryRow(ctx, queryGetBid+t.dialect.forUpdate(), bidId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bid %s", store.ErrNotFound, bidId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// ReplaceBid cancels the bidder's active bid on the NFT, if any, and inserts
// a new active bid. It returns the new bid and how many bids it cancelled.
func (t *Tx) ReplaceBid(ctx context.Context, nftId, bidderId string, amount decimal.Decimal) (*models.Bid, int64, error) {
	cancelled, err := t.execAffected(ctx, queryCancelBidderActiveBids, nftId, bidderId)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to cancel previous bid: %w", err)
	}

	bid := &models.Bid{
		Id:        uuid.New().String(),
		NftId:     nftId,
		BidderId:  bidderId,
		Amount:    amount,
		Status:    models.BidActive,
		CreatedAt: t.now,
	}
	amountCents, err := cents(bid.Amount)
	if err != nil {
		return nil, 0, err
	}
	if _, err := t.exec(ctx, queryInsertBid, bid.Id, bid.NftId, bid.BidderId, amountCents, bid.CreatedAt); err != nil {
		return nil, 0, fmt.Errorf("failed to insert bid: %w", err)
	}
	return bid, cancelled, nil
}

// SetBidStatus moves an active bid to a terminal status. Non-active bids
// are never changed.
func (t *Tx) SetBidStatus(ctx context.Context, bidId string, status models.BidStatus) error {
	if status != models.BidCancelled && status != models.BidAccepted {
		return fmt.Errorf("%w: %q is not a terminal bid status", store.ErrInvalidArgument, status)
	}
	rowsAffected, err := t.execAffected(ctx, querySetBidStatus, string(status), bidId)
	if err != nil {
		return fmt.Errorf("failed to update bid status: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: bid %s is not active", store.ErrInvalidState, bidId)
	}
	return nil
}

// CancelActiveBids cancels every active bid on the NFT except exceptBidId,
// which may be empty.
func (t *Tx) CancelActiveBids(ctx context.Context, nftId, exceptBidId string) (int64, error) {
	var cancelled int64
	var err error
	if exceptBidId == "" {
		cancelled, err = t.execAffected(ctx, queryCancelAllActiveBids, nftId)
	} else {
		cancelled, err = t.execAffected(ctx, queryCancelOtherActiveBids, nftId, exceptBidId)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to cancel active bids: %w", err)
	}
	return cancelled, nil
}

// GetOrderBook returns active bids ranked by amount, earliest first on ties
func (s *Service) GetOrderBook(ctx context.Context, nftId string) ([]models.Bid, error) {
	zap.L().Debug("Getting order book", zap.String("nft_id", nftId))

	rows, err := s.query(ctx, queryGetOrderBook, nftId)
	if err != nil {
		zap.L().Error("Failed to get order book", zap.String("nft_id", nftId), zap.Error(err))
		return nil, fmt.Errorf("failed to get order book: %w", err)
	}
	return collectBids(rows)
}

// GetBids returns every bid ever placed on an NFT, oldest first
func (s *Service) GetBids(ctx context.Context, nftId string) ([]models.Bid, error) {
	rows, err := s.query(ctx, queryGetBidsByNFT, nftId)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	return collectBids(rows)
}

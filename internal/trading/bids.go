package trading

import (
	"context"
	"fmt"
	"time"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlaceBid offers amount Agon for an NFT. The bidder's balance is checked now
// but not held; AcceptBid checks it again. A bidder's earlier active bid on
// the same NFT is cancelled.
func (e *Engine) PlaceBid(ctx context.Context, bidderId, nftId string, amount decimal.Decimal) (*models.Bid, error) {
	if err := e.validateAmount("bid amount", amount); err != nil {
		logFailure("Bid", err, zap.String("nft_id", nftId), zap.String("user_id", bidderId))
		return nil, err
	}

	var bid *models.Bid
	var replaced int64
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		nft, err := tx.GetNFT(ctx, nftId)
		if err != nil {
			return err
		}
		if nft.CurrentOwnerId == bidderId {
			return fmt.Errorf("%w: you cannot bid on your own NFT", store.ErrInvalidArgument)
		}

		wallet, err := tx.GetWallet(ctx, bidderId)
		if err != nil {
			return err
		}
		if !money.CanAfford(wallet.Agon, amount) {
			return fmt.Errorf("%w: insufficient Agon balance", store.ErrInsufficientFunds)
		}

		bid, replaced, err = tx.ReplaceBid(ctx, nftId, bidderId, amount)
		return err
	})
	if err != nil {
		logFailure("Bid", err,
			zap.String("nft_id", nftId),
			zap.String("user_id", bidderId),
			zap.String("amount", amount.String()))
		return nil, err
	}

	zap.L().Info("Bid placed",
		zap.String("bid_id", bid.Id),
		zap.String("nft_id", nftId),
		zap.String("bidder_id", bidderId),
		zap.String("amount", amount.String()),
		zap.Int64("replaced", replaced))

	e.publish(models.MarketEvent{
		Type:       models.EventBidPlaced,
		NftId:      nftId,
		UserId:     bidderId,
		Amount:     amount,
		OccurredAt: bid.CreatedAt,
	})
	return bid, nil
}

// CancelBid withdraws one of the caller's active bids
func (e *Engine) CancelBid(ctx context.Context, bidderId, bidId string) error {
	var bid *models.Bid
	var cancelledAt time.Time
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		var err error
		bid, err = tx.GetBid(ctx, bidId)
		if err != nil {
			return err
		}
		if bid.BidderId != bidderId {
			return fmt.Errorf("%w: you do not own this bid", store.ErrForbidden)
		}
		if bid.Status != models.BidActive {
			return fmt.Errorf("%w: bid is %s", store.ErrInvalidState, bid.Status)
		}
		if err := tx.SetBidStatus(ctx, bidId, models.BidCancelled); err != nil {
			return err
		}
		cancelledAt = tx.Now()
		return nil
	})
	if err != nil {
		logFailure("Cancel bid", err, zap.String("bid_id", bidId), zap.String("user_id", bidderId))
		return err
	}

	zap.L().Info("Bid cancelled",
		zap.String("bid_id", bidId),
		zap.String("nft_id", bid.NftId),
		zap.String("bidder_id", bidderId))

	e.publish(models.MarketEvent{
		Type:       models.EventBidCanceled,
		NftId:      bid.NftId,
		UserId:     bidderId,
		Amount:     bid.Amount,
		OccurredAt: cancelledAt,
	})
	return nil
}

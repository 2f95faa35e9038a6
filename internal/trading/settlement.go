package trading

import (
	"context"
	"errors"
	"fmt"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/money"
	"agon-market-go/internal/store"

	"go.uber.org/zap"
)

// AcceptBid sells the NFT to the bidder at the bid amount. The bidder is
// debited the full amount and the seller credited the amount less the
// platform fee. Every other active bid on the NFT is cancelled.
func (e *Engine) AcceptBid(ctx context.Context, ownerId, nftId, bidId string) (*models.AcceptBidResult, error) {
	if bidId == "" {
		err := fmt.Errorf("%w: bid id is required", store.ErrInvalidArgument)
		logFailure("Accept bid", err, zap.String("nft_id", nftId), zap.String("user_id", ownerId))
		return nil, err
	}

	result := &models.AcceptBidResult{}
	var bid *models.Bid
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := ownedNFT(ctx, tx, nftId, ownerId); err != nil {
			return err
		}

		var err error
		bid, err = tx.GetBid(ctx, bidId)
		if err != nil {
			return err
		}
		if bid.NftId != nftId {
			return fmt.Errorf("%w: bid %s is not on this NFT", store.ErrNotFound, bidId)
		}
		if bid.Status != models.BidActive {
			return fmt.Errorf("%w: bid is %s", store.ErrInvalidState, bid.Status)
		}
		if bid.BidderId == ownerId {
			return fmt.Errorf("%w: you cannot accept your own bid", store.ErrInvalidArgument)
		}

		fee, received := money.SplitSale(bid.Amount, e.cfg.FeeRate)

		// The bid was never escrowed, so the bidder may no longer cover it
		if _, err := tx.Debit(ctx, models.CurrencyAgon, bid.BidderId, bid.Amount); err != nil {
			if errors.Is(err, store.ErrInsufficientFunds) {
				return fmt.Errorf("%w: bidder can no longer cover this bid", store.ErrInsufficientFunds)
			}
			return err
		}
		if _, err := tx.Credit(ctx, models.CurrencyAgon, ownerId, received); err != nil {
			return err
		}
		if err := tx.TransferNFT(ctx, nftId, ownerId, bid.BidderId); err != nil {
			return err
		}
		if err := tx.SetBidStatus(ctx, bid.Id, models.BidAccepted); err != nil {
			return err
		}
		if _, err := tx.CancelActiveBids(ctx, nftId, bid.Id); err != nil {
			return err
		}
		if err := tx.RecordNFTTransaction(ctx, &models.NFTTransaction{
			NftId:      nftId,
			FromUserId: ownerId,
			ToUserId:   bid.BidderId,
			Amount:     bid.Amount,
			Fee:        fee,
			NetAmount:  received,
			Type:       models.TxBidAccepted,
			BidId:      bid.Id,
			Notes:      fmt.Sprintf("Bid accepted for %s Agon", bid.Amount),
		}); err != nil {
			return err
		}

		result.Sale = models.SaleSummary{Price: bid.Amount, Fee: fee, Received: received}
		if result.NFT, err = tx.GetNFT(ctx, nftId); err != nil {
			return err
		}
		result.Wallet, err = tx.GetWallet(ctx, ownerId)
		return err
	})
	if err != nil {
		logFailure("Accept bid", err,
			zap.String("nft_id", nftId),
			zap.String("bid_id", bidId),
			zap.String("user_id", ownerId))
		return nil, err
	}

	zap.L().Info("Bid accepted",
		zap.String("nft_id", nftId),
		zap.String("bid_id", bid.Id),
		zap.String("seller_id", ownerId),
		zap.String("buyer_id", bid.BidderId),
		zap.String("price", result.Sale.Price.String()),
		zap.String("fee", result.Sale.Fee.String()),
		zap.String("received", result.Sale.Received.String()))

	e.publish(models.MarketEvent{
		Type:       models.EventBidAccepted,
		NftId:      nftId,
		UserId:     bid.BidderId,
		Amount:     bid.Amount,
		OccurredAt: *result.NFT.LastTradedAt,
	})
	return result, nil
}

// BuyNFT purchases a listed NFT at its ask price and clears its order book
func (e *Engine) BuyNFT(ctx context.Context, buyerId, nftId string) (*models.BuyResult, error) {
	result := &models.BuyResult{}
	var sellerId string
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		nft, err := tx.GetNFT(ctx, nftId)
		if err != nil {
			return err
		}
		if !nft.IsListed || !nft.AskPrice.Valid {
			return fmt.Errorf("%w: NFT is not listed for sale", store.ErrInvalidState)
		}
		if nft.CurrentOwnerId == buyerId {
			return fmt.Errorf("%w: you cannot buy your own NFT", store.ErrInvalidArgument)
		}
		sellerId = nft.CurrentOwnerId
		price := nft.AskPrice.Decimal

		wallet, err := tx.GetWallet(ctx, buyerId)
		if err != nil {
			return err
		}
		if !money.CanAfford(wallet.Agon, price) {
			return fmt.Errorf("%w: insufficient Agon balance", store.ErrInsufficientFunds)
		}

		fee, received := money.SplitSale(price, e.cfg.FeeRate)
		if _, err := tx.Debit(ctx, models.CurrencyAgon, buyerId, price); err != nil {
			return err
		}
		if _, err := tx.Credit(ctx, models.CurrencyAgon, sellerId, received); err != nil {
			return err
		}
		if err := tx.TransferNFT(ctx, nftId, sellerId, buyerId); err != nil {
			return err
		}
		if _, err := tx.CancelActiveBids(ctx, nftId, ""); err != nil {
			return err
		}
		if err := tx.RecordNFTTransaction(ctx, &models.NFTTransaction{
			NftId:      nftId,
			FromUserId: sellerId,
			ToUserId:   buyerId,
			Amount:     price,
			Fee:        fee,
			NetAmount:  received,
			Type:       models.TxSale,
			Notes:      fmt.Sprintf("Instant buy for %s Agon", price),
		}); err != nil {
			return err
		}

		result.Purchase = models.PurchaseSummary{Price: price, Fee: fee}
		if result.NFT, err = tx.GetNFT(ctx, nftId); err != nil {
			return err
		}
		result.Wallet, err = tx.GetWallet(ctx, buyerId)
		return err
	})
	if err != nil {
		logFailure("Buy", err, zap.String("nft_id", nftId), zap.String("user_id", buyerId))
		return nil, err
	}

	zap.L().Info("NFT bought",
		zap.String("nft_id", nftId),
		zap.String("seller_id", sellerId),
		zap.String("buyer_id", buyerId),
		zap.String("price", result.Purchase.Price.String()),
		zap.String("fee", result.Purchase.Fee.String()))

	e.publish(models.MarketEvent{
		Type:       models.EventSold,
		NftId:      nftId,
		UserId:     buyerId,
		Amount:     result.Purchase.Price,
		OccurredAt: *result.NFT.LastTradedAt,
	})
	return result, nil
}

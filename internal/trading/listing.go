package trading

import (
	"context"
	"fmt"
	"time"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ownedNFT loads the NFT inside tx and checks that userId owns it
func ownedNFT(ctx context.Context, tx *database.Tx, nftId, userId string) (*models.NFT, error) {
	nft, err := tx.GetNFT(ctx, nftId)
	if err != nil {
		return nil, err
	}
	if nft.CurrentOwnerId != userId {
		return nil, fmt.Errorf("%w: you do not own this NFT", store.ErrForbidden)
	}
	return nft, nil
}

// ListNFT offers an NFT for instant purchase at askPrice. Listing an already
// listed NFT changes its price.
func (e *Engine) ListNFT(ctx context.Context, ownerId, nftId string, askPrice decimal.Decimal) (*models.NFT, error) {
	if err := e.validateAmount("ask price", askPrice); err != nil {
		logFailure("List", err, zap.String("nft_id", nftId), zap.String("user_id", ownerId))
		return nil, err
	}

	var listed *models.NFT
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := ownedNFT(ctx, tx, nftId, ownerId); err != nil {
			return err
		}
		if err := tx.SetListed(ctx, nftId, ownerId, askPrice); err != nil {
			return err
		}
		if err := tx.RecordNFTTransaction(ctx, &models.NFTTransaction{
			NftId:      nftId,
			FromUserId: ownerId,
			ToUserId:   ownerId,
			Type:       models.TxList,
			Notes:      fmt.Sprintf("Listed for %s Agon", askPrice),
		}); err != nil {
			return err
		}

		var err error
		listed, err = tx.GetNFT(ctx, nftId)
		return err
	})
	if err != nil {
		logFailure("List", err, zap.String("nft_id", nftId), zap.String("user_id", ownerId))
		return nil, err
	}

	zap.L().Info("NFT listed",
		zap.String("nft_id", nftId),
		zap.String("owner_id", ownerId),
		zap.String("ask_price", askPrice.String()))

	e.publish(models.MarketEvent{
		Type:       models.EventListed,
		NftId:      nftId,
		UserId:     ownerId,
		Amount:     askPrice,
		OccurredAt: *listed.ListedAt,
	})
	return listed, nil
}

// UnlistNFT withdraws an NFT from instant purchase. Bids stay open.
func (e *Engine) UnlistNFT(ctx context.Context, ownerId, nftId string) (*models.NFT, error) {
	var unlisted *models.NFT
	var occurredAt time.Time
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := ownedNFT(ctx, tx, nftId, ownerId); err != nil {
			return err
		}
		if err := tx.SetUnlisted(ctx, nftId, ownerId); err != nil {
			return err
		}
		if err := tx.RecordNFTTransaction(ctx, &models.NFTTransaction{
			NftId:      nftId,
			FromUserId: ownerId,
			ToUserId:   ownerId,
			Type:       models.TxUnlist,
			Notes:      "Unlisted from marketplace",
		}); err != nil {
			return err
		}
		occurredAt = tx.Now()

		var err error
		unlisted, err = tx.GetNFT(ctx, nftId)
		return err
	})
	if err != nil {
		logFailure("Unlist", err, zap.String("nft_id", nftId), zap.String("user_id", ownerId))
		return nil, err
	}

	zap.L().Info("NFT unlisted",
		zap.String("nft_id", nftId),
		zap.String("owner_id", ownerId))

	e.publish(models.MarketEvent{
		Type:       models.EventUnlisted,
		NftId:      nftId,
		UserId:     ownerId,
		Amount:     decimal.Zero,
		OccurredAt: occurredAt,
	})
	return unlisted, nil
}

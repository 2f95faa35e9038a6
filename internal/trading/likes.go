package trading

import (
	"context"
	"fmt"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"go.uber.org/zap"
)

// Like records that userId likes the NFT and returns it with the new count
func (e *Engine) Like(ctx context.Context, userId, nftId string) (*models.NFT, error) {
	return e.toggleLike(ctx, userId, nftId, true)
}

// Unlike removes userId's like and returns the NFT with the new count
func (e *Engine) Unlike(ctx context.Context, userId, nftId string) (*models.NFT, error) {
	return e.toggleLike(ctx, userId, nftId, false)
}

func (e *Engine) toggleLike(ctx context.Context, userId, nftId string, like bool) (*models.NFT, error) {
	operation := "Unlike"
	if like {
		operation = "Like"
	}

	var nft *models.NFT
	err := e.db.RunInTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetNFT(ctx, nftId); err != nil {
			return err
		}

		if like {
			added, err := tx.AddLike(ctx, nftId, userId)
			if err != nil {
				return err
			}
			if !added {
				return fmt.Errorf("%w: NFT already liked", store.ErrInvalidState)
			}
		} else {
			removed, err := tx.RemoveLike(ctx, nftId, userId)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: NFT not liked", store.ErrInvalidState)
			}
		}

		var err error
		nft, err = tx.GetNFT(ctx, nftId)
		return err
	})
	if err != nil {
		logFailure(operation, err, zap.String("nft_id", nftId), zap.String("user_id", userId))
		return nil, err
	}

	zap.L().Debug(operation+" recorded",
		zap.String("nft_id", nftId),
		zap.String("user_id", userId),
		zap.Int64("like_count", nft.LikeCount))
	return nft, nil
}

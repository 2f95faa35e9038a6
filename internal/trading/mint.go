package trading

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"agon-market-go/internal/database"
	"agon-market-go/internal/models"
	"agon-market-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxNameLength   = 255
	DefaultCategory = "other"
)

// MintParams describes a new NFT. ImageRef points into the image store.
// Tags is a comma-separated list. Zero edition fields mean 1 of 1.
type MintParams struct {
	Name          string
	Description   string
	ImageRef      string
	Category      string
	Tags          string
	EditionNumber int
	EditionTotal  int
}

// ParseTags splits a comma-separated tag list, dropping blanks and repeats
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func (e *Engine) newNFT(creatorId string, params MintParams) (*models.NFT, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: NFT name is required", store.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: NFT name must be %d characters or less", store.ErrInvalidArgument, MaxNameLength)
	}
	if strings.TrimSpace(params.ImageRef) == "" {
		return nil, fmt.Errorf("%w: image is required", store.ErrInvalidArgument)
	}

	category := params.Category
	if category == "" {
		category = DefaultCategory
	}
	if !slices.Contains(e.cfg.Categories, category) {
		return nil, fmt.Errorf("%w: unknown category %q", store.ErrInvalidArgument, category)
	}

	number, total := params.EditionNumber, params.EditionTotal
	if number == 0 {
		number = 1
	}
	if total == 0 {
		total = 1
	}
	if number < 1 || total < 1 || number > total {
		return nil, fmt.Errorf("%w: edition %d of %d is not valid", store.ErrInvalidArgument, number, total)
	}

	return &models.NFT{
		Id:             uuid.New().String(),
		CreatorId:      creatorId,
		CurrentOwnerId: creatorId,
		Name:           name,
		Description:    strings.TrimSpace(params.Description),
		ImageRef:       params.ImageRef,
		Category:       category,
		Tags:           ParseTags(params.Tags),
		EditionNumber:  number,
		EditionTotal:   total,
	}, nil
}

// Mint charges the creator the mint cost and creates an unlisted NFT they own
func (e *Engine) Mint(ctx context.Context, creatorId string, params MintParams) (*models.MintResult, error) {
	nft, err := e.newNFT(creatorId, params)
	if err != nil {
		logFailure("Mint", err, zap.String("user_id", creatorId))
		return nil, err
	}

	result := &models.MintResult{}
	err = e.db.RunInTx(ctx, func(tx *database.Tx) error {
		if e.cfg.MintCost.IsPositive() {
			if _, err := tx.Debit(ctx, models.CurrencyAgon, creatorId, e.cfg.MintCost); err != nil {
				if errors.Is(err, store.ErrInsufficientFunds) {
					return fmt.Errorf("%w: minting costs %s Agon", store.ErrInsufficientFunds, e.cfg.MintCost)
				}
				return err
			}
		}

		nft.MintedAt = tx.Now()
		if err := tx.InsertNFT(ctx, nft); err != nil {
			return err
		}
		if err := tx.RecordNFTTransaction(ctx, &models.NFTTransaction{
			NftId:     nft.Id,
			ToUserId:  creatorId,
			Amount:    e.cfg.MintCost,
			NetAmount: e.cfg.MintCost,
			Type:      models.TxMint,
			Notes:     "NFT minted",
		}); err != nil {
			return err
		}

		var err error
		if result.NFT, err = tx.GetNFT(ctx, nft.Id); err != nil {
			return err
		}
		result.Wallet, err = tx.GetWallet(ctx, creatorId)
		return err
	})
	if err != nil {
		logFailure("Mint", err, zap.String("user_id", creatorId), zap.String("name", nft.Name))
		return nil, err
	}

	zap.L().Info("NFT minted",
		zap.String("nft_id", nft.Id),
		zap.String("creator_id", creatorId),
		zap.String("category", nft.Category),
		zap.String("cost", e.cfg.MintCost.String()))

	e.publish(models.MarketEvent{
		Type:       models.EventMinted,
		NftId:      nft.Id,
		UserId:     creatorId,
		Amount:     e.cfg.MintCost,
		OccurredAt: nft.MintedAt,
	})
	return result, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"agon-market-go/internal/models"
	"agon-market-go/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordNFTTransaction appends a row to the marketplace ledger. Id and
// CreatedAt are assigned here.
func (t *Tx) RecordNFTTransaction(ctx context.Context, entry *models.NFTTransaction) error {
	entry.Id = uuid.New().String()
	entry.CreatedAt = t.now

	var amounts [3]int64
	for i, amount := range []decimal.Decimal{entry.Amount, entry.Fee, entry.NetAmount} {
		c, err := cents(amount)
		if err != nil {
			return err
		}
		amounts[i] = c
	}

	_, err := t.exec(ctx, queryInsertNFTTransaction,
		entry.Id, entry.NftId, nullString(entry.FromUserId), entry.ToUserId,
		amounts[0], amounts[1], amounts[2],
		string(entry.Type), nullString(entry.BidId), entry.Notes, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert %s transaction: %w", entry.Type, err)
	}
	return nil
}

// GetNFTTransactions returns up to limit ledger rows for an NFT, newest first
func (s *Service) GetNFTTransactions(ctx context.Context, nftId string, limit int) ([]models.NFTTransaction, error) {
	zap.L().Debug("Getting nft transactions",
		zap.String("nft_id", nftId),
		zap.Int("limit", limit))

	rows, err := s.query(ctx, queryGetNFTTransactions, nftId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get nft transactions: %w", err)
	}
	defer closeRows(rows)

	transactions := []models.NFTTransaction{}
	for rows.Next() {
		var entry models.NFTTransaction
		var fromUser, bidId sql.NullString
		var amountCents, feeCents, netCents int64
		var txType string
		err := rows.Scan(&entry.Id, &entry.NftId, &fromUser, &entry.ToUserId,
			&amountCents, &feeCents, &netCents, &txType, &bidId, &entry.Notes, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nft transaction: %w", err)
		}
		entry.FromUserId = fromUser.String
		entry.BidId = bidId.String
		entry.Amount = money.FromCents(amountCents)
		entry.Fee = money.FromCents(feeCents)
		entry.NetAmount = money.FromCents(netCents)
		entry.Type = models.TransactionType(txType)
		entry.CreatedAt = entry.CreatedAt.UTC()
		transactions = append(transactions, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during nft transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating nft transaction rows: %w", err)
	}

	return transactions, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// posting is one leg of a money movement before it is written
type posting struct {
	Type              models.TransactionType
	Amount            decimal.Decimal
	Currency          string
	Status            models.TransactionStatus
	Description       string
	RelatedUserId     string
	TenancyId         string
	ExternalReference string
}

// ensureWallet returns the user's wallet, creating it with the given currency
// when absent. Concurrent callers race on the user_id unique constraint and
// all read back the single surviving row.
func ensureWallet(ctx context.Context, q sqlx.ExtContext, userId, currency string, now time.Time) (*models.Wallet, error) {
	if _, err := q.ExecContext(ctx, queryInsertWallet, uuid.New().String(), userId, currency, now, now); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	var wallet models.Wallet
	if err := sqlx.GetContext(ctx, q, &wallet, queryGetWalletByUserId, userId); err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

func getWalletByUser(ctx context.Context, q sqlx.QueryerContext, userId string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := sqlx.GetContext(ctx, q, &wallet, queryGetWalletByUserId, userId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wallet for user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

// applyBalanceChange moves the wallet balance by delta. A change that would
// leave the balance negative fails with store.ErrInsufficientBalance and
// writes nothing.
func applyBalanceChange(ctx context.Context, q sqlx.ExecerContext, wallet *models.Wallet, delta decimal.Decimal, now time.Time) error {
	newBalance := wallet.Balance.Add(delta)
	if newBalance.IsNegative() {
		return fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, wallet.Balance.String(), delta.Neg().String())
	}

	result, err := q.ExecContext(ctx, queryUpdateWalletBalance, newBalance, now, wallet.Id, wallet.Version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	wallet.Balance = newBalance
	wallet.Version++
	wallet.UpdatedAt = now
	return nil
}

// post applies a posting to a wallet and appends its transaction record.
func post(ctx context.Context, tx *sqlx.Tx, wallet *models.Wallet, p posting, now time.Time) (*models.WalletTransaction, error) {
	if wallet.Currency != p.Currency {
		return nil, fmt.Errorf("%w: wallet %s holds %s, posting is %s", store.ErrCurrencyMismatch, wallet.Id, wallet.Currency, p.Currency)
	}

	if err := applyBalanceChange(ctx, tx, wallet, p.Amount, now); err != nil {
		return nil, err
	}

	record := &models.WalletTransaction{
		Id:                uuid.New().String(),
		WalletId:          wallet.Id,
		UserId:            wallet.UserId,
		Type:              p.Type,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		Description:       p.Description,
		RelatedUserId:     p.RelatedUserId,
		TenancyId:         p.TenancyId,
		ExternalReference: p.ExternalReference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := sqlx.NamedExecContext(ctx, tx, queryInsertTransaction, record); err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	zap.L().Debug("Posted wallet transaction",
		zap.String("transaction_id", record.Id),
		zap.String("wallet_id", wallet.Id),
		zap.String("type", string(p.Type)),
		zap.String("amount", p.Amount.String()),
		zap.String("balance", wallet.Balance.String()))

	return record, nil
}

// setTransactionStatus moves a transaction to a new status, optionally
// attaching an external reference.
func setTransactionStatus(ctx context.Context, q sqlx.ExecerContext, record *models.WalletTransaction, status models.TransactionStatus, reference string, now time.Time) error {
	if _, err := q.ExecContext(ctx, queryUpdateTransactionStatus, status, reference, reference, now, record.Id); err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	record.Status = status
	if reference != "" {
		record.ExternalReference = reference
	}
	record.UpdatedAt = now
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetOrCreateWallet returns the user's wallet, creating an empty one in the
// given currency on first access.
func (s *Service) GetOrCreateWallet(ctx context.Context, userId, currency string) (*models.Wallet, error) {
	if userId == "" || currency == "" {
		return nil, fmt.Errorf("%w: user id and currency are required", store.ErrValidation)
	}

	wallet, err := ensureWallet(ctx, s.db, userId, currency, s.timestamp())
	if err != nil {
		zap.L().Error("Failed to get or create wallet", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Resolved wallet",
		zap.String("user_id", userId),
		zap.String("wallet_id", wallet.Id),
		zap.String("balance", wallet.Balance.String()))
	return wallet, nil
}

func (s *Service) GetWalletByUserId(ctx context.Context, userId string) (*models.Wallet, error) {
	return getWalletByUser(ctx, s.db, userId)
}

func (s *Service) GetWalletById(ctx context.Context, walletId string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.GetContext(ctx, &wallet, queryGetWalletById, walletId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wallet %s", store.ErrNotFound, walletId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

func (s *Service) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.db.SelectContext(ctx, &wallets, queryListWallets); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (s *Service) SetExternalCustomerId(ctx context.Context, walletId, customerId string) error {
	result, err := s.db.ExecContext(ctx, queryUpdateWalletCustomer, customerId, s.timestamp(), walletId)
	if err != nil {
		return fmt.Errorf("failed to store customer reference: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: wallet %s", store.ErrNotFound, walletId)
	}

	zap.L().Info("Linked payment customer to wallet",
		zap.String("wallet_id", walletId),
		zap.String("customer_id", customerId))
	return nil
}

// UpdateWalletSettings changes the payout flags that are not nil.
func (s *Service) UpdateWalletSettings(ctx context.Context, userId string, autoPayout, instantPayout *bool) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		wallet, err = getWalletByUser(ctx, tx, userId)
		if err != nil {
			return err
		}

		if autoPayout != nil {
			wallet.AutoPayout = *autoPayout
		}
		if instantPayout != nil {
			wallet.InstantPayout = *instantPayout
		}
		wallet.UpdatedAt = s.timestamp()

		_, err = tx.ExecContext(ctx, queryUpdateWalletSettings, wallet.AutoPayout, wallet.InstantPayout, wallet.UpdatedAt, wallet.Id)
		if err != nil {
			return fmt.Errorf("failed to update wallet settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Wallet settings updated",
		zap.String("wallet_id", wallet.Id),
		zap.Bool("auto_payout", wallet.AutoPayout),
		zap.Bool("instant_payout", wallet.InstantPayout))
	return wallet, nil
}

// ListTransactions returns a page of the wallet's history, newest first.
func (s *Service) ListTransactions(ctx context.Context, walletId string, limit, offset int) ([]models.WalletTransaction, error) {
	zap.L().Debug("Querying transaction history",
		zap.String("wallet_id", walletId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	transactions := []models.WalletTransaction{}
	if err := s.db.SelectContext(ctx, &transactions, queryListTransactions, walletId, limit, offset); err != nil {
		zap.L().Error("Failed to query transaction history", zap.String("wallet_id", walletId), zap.Error(err))
		return nil, fmt.Errorf("failed to query transaction history: %w", err)
	}
	return transactions, nil
}

func (s *Service) CountTransactions(ctx context.Context, walletId string) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, queryCountTransactions, walletId); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// ReconcileWallet verifies that the stored balance matches the sum of the
// wallet's settled and in-flight transactions.
func (s *Service) ReconcileWallet(ctx context.Context, walletId string) (*store.Reconciliation, error) {
	zap.L().Info("Reconciling wallet", zap.String("wallet_id", walletId))

	wallet, err := s.GetWalletById(ctx, walletId)
	if err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	if err := s.db.SelectContext(ctx, &amounts, queryReconcileAmounts, walletId); err != nil {
		return nil, fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	calculated := decimal.Zero
	for _, amount := range amounts {
		calculated = calculated.Add(amount)
	}

	result := &store.Reconciliation{
		WalletId:   walletId,
		Balance:    wallet.Balance,
		Calculated: calculated,
	}

	if !result.Matches() {
		zap.L().Error("Balance reconciliation failed",
			zap.String("wallet_id", walletId),
			zap.String("current_balance", wallet.Balance.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", wallet.Balance.Sub(calculated).String()))
		return result, nil
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("wallet_id", walletId),
		zap.String("balance", wallet.Balance.String()))
	return result, nil
}

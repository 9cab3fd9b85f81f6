package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AddBankAccount stores a payout destination. The user's first account is
// always the default; a later account becomes default only when asked, which
// clears the flag on the others.
func (s *Service) AddBankAccount(ctx context.Context, params store.AddBankAccountParams) (*models.BankAccount, error) {
	account := &models.BankAccount{
		Id:                uuid.New().String(),
		UserId:            params.UserId,
		BankName:          params.BankName,
		AccountHolderName: params.AccountHolderName,
		Iban:              params.Iban,
		CreatedAt:         s.timestamp(),
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var existing int
		if err := tx.GetContext(ctx, &existing, queryCountBankAccounts, params.UserId); err != nil {
			return fmt.Errorf("failed to count bank accounts: %w", err)
		}

		account.IsDefault = existing == 0 || params.IsDefault
		if account.IsDefault && existing > 0 {
			if _, err := tx.ExecContext(ctx, queryClearDefaultAccounts, params.UserId); err != nil {
				return fmt.Errorf("failed to clear default bank account: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, queryInsertBankAccount,
			account.Id, account.UserId, account.BankName, account.AccountHolderName,
			account.Iban, account.IsDefault, account.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert bank account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Bank account added",
		zap.String("id", account.Id),
		zap.String("user_id", account.UserId),
		zap.Bool("is_default", account.IsDefault))
	return account, nil
}

func (s *Service) ListBankAccounts(ctx context.Context, userId string) ([]models.BankAccount, error) {
	accounts := []models.BankAccount{}
	if err := s.db.SelectContext(ctx, &accounts, queryListBankAccounts, userId); err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) GetDefaultBankAccount(ctx context.Context, userId string) (*models.BankAccount, error) {
	var account models.BankAccount
	err := s.db.GetContext(ctx, &account, queryGetDefaultBankAccount, userId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: default bank account for user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load default bank account: %w", err)
	}
	return &account, nil
}

// DeleteBankAccount removes one of the user's accounts. When the default is
// removed the oldest remaining account takes its place.
func (s *Service) DeleteBankAccount(ctx context.Context, userId, accountId string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		account, err := getBankAccount(ctx, tx, userId, accountId)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, queryDeleteBankAccount, accountId, userId); err != nil {
			return fmt.Errorf("failed to delete bank account: %w", err)
		}

		if account.IsDefault {
			if _, err := tx.ExecContext(ctx, queryPromoteOldestBankAccount, userId); err != nil {
				return fmt.Errorf("failed to promote default bank account: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().Info("Bank account deleted", zap.String("id", accountId), zap.String("user_id", userId))
	return nil
}

func getBankAccount(ctx context.Context, q sqlx.QueryerContext, userId, accountId string) (*models.BankAccount, error) {
	var account models.BankAccount
	err := sqlx.GetContext(ctx, q, &account, queryGetBankAccount, accountId, userId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bank account %s", store.ErrNotFound, accountId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	return &account, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Withdraw debits the caller's wallet towards one of their bank accounts.
// The transaction is recorded pending and confirmed within the same database
// transaction; no external payout is made.
func (s *Service) Withdraw(ctx context.Context, params store.WithdrawParams) (*models.WalletTransaction, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", store.ErrValidation)
	}

	zap.L().Info("Processing withdrawal",
		zap.String("user_id", params.UserId),
		zap.String("bank_account_id", params.BankAccountId),
		zap.String("amount", params.Amount.String()))

	var record *models.WalletTransaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		wallet, err := getWalletByUser(ctx, tx, params.UserId)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(params.Amount) {
			return fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, wallet.Balance.String(), params.Amount.String())
		}

		account, err := getBankAccount(ctx, tx, params.UserId, params.BankAccountId)
		if err != nil {
			return err
		}

		record, err = post(ctx, tx, wallet, posting{
			Type:        models.TxWithdrawal,
			Amount:      params.Amount.Neg(),
			Currency:    wallet.Currency,
			Status:      models.TxStatusPending,
			Description: fmt.Sprintf("Withdrawal to %s (%s)", account.BankName, maskIban(account.Iban)),
		}, now)
		if err != nil {
			return err
		}

		return setTransactionStatus(ctx, tx, record, models.TxStatusCompleted, "", now)
	})
	if err != nil {
		zap.L().Warn("Withdrawal failed", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Withdrawal completed",
		zap.String("transaction_id", record.Id),
		zap.String("user_id", params.UserId),
		zap.String("amount", params.Amount.String()))
	return record, nil
}

// CreditDeposit applies a gateway-confirmed top-up. A checkout session that
// was already credited returns store.ErrDuplicateTransaction.
func (s *Service) CreditDeposit(ctx context.Context, params store.CreditDepositParams) (*models.WalletTransaction, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", store.ErrValidation)
	}

	zap.L().Info("Crediting deposit",
		zap.String("wallet_id", params.WalletId),
		zap.String("user_id", params.UserId),
		zap.String("amount", params.Amount.String()),
		zap.String("external_reference", params.ExternalReference))

	var record *models.WalletTransaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if params.ExternalReference != "" {
			var existingId string
			err := tx.GetContext(ctx, &existingId, queryCheckDuplicateDeposit, params.ExternalReference)
			if err == nil {
				zap.L().Warn("Duplicate deposit reference detected, skipping",
					zap.String("external_reference", params.ExternalReference),
					zap.String("existing_transaction_id", existingId))
				return fmt.Errorf("%w: external reference %s already credited", store.ErrDuplicateTransaction, params.ExternalReference)
			} else if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to check for duplicate deposit: %w", err)
			}
		}

		var wallet models.Wallet
		err := tx.GetContext(ctx, &wallet, queryGetWalletById, params.WalletId)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: wallet %s", store.ErrNotFound, params.WalletId)
		}
		if err != nil {
			return fmt.Errorf("failed to load wallet: %w", err)
		}
		if wallet.UserId != params.UserId {
			return fmt.Errorf("%w: wallet %s does not belong to user %s", store.ErrNotFound, params.WalletId, params.UserId)
		}

		record, err = post(ctx, tx, &wallet, posting{
			Type:              models.TxDeposit,
			Amount:            params.Amount,
			Currency:          params.Currency,
			Status:            models.TxStatusCompleted,
			Description:       "Wallet top-up",
			ExternalReference: params.ExternalReference,
		}, s.timestamp())
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Deposit credited",
		zap.String("transaction_id", record.Id),
		zap.String("wallet_id", params.WalletId),
		zap.String("amount", params.Amount.String()))
	return record, nil
}

// StartPayout debits the wallet for a transfer the gateway has yet to confirm.
// The returned transaction stays pending until SettlePayout.
func (s *Service) StartPayout(ctx context.Context, params store.StartPayoutParams) (*models.WalletTransaction, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payout amount must be positive", store.ErrValidation)
	}

	var record *models.WalletTransaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := getWalletByUser(ctx, tx, params.UserId)
		if err != nil {
			return err
		}
		account, err := getBankAccount(ctx, tx, params.UserId, params.BankAccountId)
		if err != nil {
			return err
		}

		record, err = post(ctx, tx, wallet, posting{
			Type:              models.TxPayout,
			Amount:            params.Amount.Neg(),
			Currency:          wallet.Currency,
			Status:            models.TxStatusPending,
			Description:       fmt.Sprintf("Instant payout to %s (%s)", account.BankName, maskIban(account.Iban)),
			ExternalReference: params.Reference,
		}, s.timestamp())
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Payout started",
		zap.String("transaction_id", record.Id),
		zap.String("user_id", params.UserId),
		zap.String("amount", params.Amount.String()))
	return record, nil
}

// SettlePayout completes a pending payout, or fails it and restores the
// debited amount to the wallet.
func (s *Service) SettlePayout(ctx context.Context, transactionId string, succeeded bool, externalReference string) (*models.WalletTransaction, error) {
	var record models.WalletTransaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		err := tx.GetContext(ctx, &record, queryGetTransaction, transactionId)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: transaction %s", store.ErrNotFound, transactionId)
		}
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		if record.Type != models.TxPayout || record.Status != models.TxStatusPending {
			return fmt.Errorf("%w: transaction %s is %s %s", store.ErrInvalidState, transactionId, record.Type, record.Status)
		}

		if succeeded {
			return setTransactionStatus(ctx, tx, &record, models.TxStatusCompleted, externalReference, now)
		}

		wallet, err := getWalletByUser(ctx, tx, record.UserId)
		if err != nil {
			return err
		}
		if err := applyBalanceChange(ctx, tx, wallet, record.Amount.Neg(), now); err != nil {
			return err
		}
		return setTransactionStatus(ctx, tx, &record, models.TxStatusFailed, externalReference, now)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Payout settled",
		zap.String("transaction_id", transactionId),
		zap.String("status", string(record.Status)))
	return &record, nil
}

// PayRent moves one period of rent from the tenant's wallet to the landlord's.
func (s *Service) PayRent(ctx context.Context, tenantId, tenancyId string) (*store.TransferResult, error) {
	result := &store.TransferResult{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		tenancy, err := getTenancyForTenant(ctx, tx, tenancyId, tenantId)
		if err != nil {
			return err
		}
		if tenancy.Status != models.TenancyActive {
			return fmt.Errorf("%w: tenancy %s is %s", store.ErrInvalidState, tenancyId, tenancy.Status)
		}
		if !tenancy.RentAmount.IsPositive() {
			return fmt.Errorf("%w: tenancy %s has no rent amount", store.ErrInvalidState, tenancyId)
		}

		tenantWallet, err := getWalletByUser(ctx, tx, tenantId)
		if err != nil {
			return err
		}
		result.Debit, err = post(ctx, tx, tenantWallet, posting{
			Type:          models.TxRentPaid,
			Amount:        tenancy.RentAmount.Neg(),
			Currency:      tenancy.Currency,
			Status:        models.TxStatusCompleted,
			Description:   rentDescription(tenancy),
			RelatedUserId: tenancy.LandlordId,
			TenancyId:     tenancy.Id,
		}, now)
		if err != nil {
			return err
		}

		landlordWallet, err := ensureWallet(ctx, tx, tenancy.LandlordId, tenancy.Currency, now)
		if err != nil {
			return err
		}
		result.Credit, err = post(ctx, tx, landlordWallet, posting{
			Type:          models.TxRentReceived,
			Amount:        tenancy.RentAmount,
			Currency:      tenancy.Currency,
			Status:        models.TxStatusCompleted,
			Description:   rentDescription(tenancy),
			RelatedUserId: tenantId,
			TenancyId:     tenancy.Id,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Rent paid",
		zap.String("tenancy_id", tenancyId),
		zap.String("tenant_id", tenantId),
		zap.String("amount", result.Credit.Amount.String()))
	return result, nil
}

func rentDescription(t *models.Tenancy) string {
	if t.Unit == "" {
		return "Rent payment"
	}
	return fmt.Sprintf("Rent payment for unit %s", t.Unit)
}

// maskIban keeps the country code and the last four characters
func maskIban(iban string) string {
	if len(iban) <= 6 {
		return iban
	}
	return iban[:2] + "****" + iban[len(iban)-4:]
}

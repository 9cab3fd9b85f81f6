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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LockSecurityDeposit moves the deposit amount out of the tenant's wallet into
// a hold tied to the landlord's tenancy.
func (s *Service) LockSecurityDeposit(ctx context.Context, params store.LockDepositParams) (*models.SecurityDeposit, *models.WalletTransaction, error) {
	if !params.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: deposit amount must be positive", store.ErrValidation)
	}

	var deposit *models.SecurityDeposit
	var record *models.WalletTransaction
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		var tenancy models.Tenancy
		err := tx.GetContext(ctx, &tenancy, queryGetTenancy, params.TenancyId)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && tenancy.LandlordId != params.LandlordId) {
			return fmt.Errorf("%w: tenancy %s", store.ErrNotFound, params.TenancyId)
		}
		if err != nil {
			return fmt.Errorf("failed to load tenancy: %w", err)
		}
		if tenancy.Status != models.TenancyActive {
			return fmt.Errorf("%w: tenancy %s is %s", store.ErrInvalidState, tenancy.Id, tenancy.Status)
		}

		tenantWallet, err := ensureWallet(ctx, tx, tenancy.TenantId, tenancy.Currency, now)
		if err != nil {
			return err
		}

		deposit = &models.SecurityDeposit{
			Id:         uuid.New().String(),
			TenancyId:  tenancy.Id,
			TenantId:   tenancy.TenantId,
			LandlordId: tenancy.LandlordId,
			Amount:     params.Amount,
			Currency:   tenancy.Currency,
			Status:     models.DepositHeld,
			LockedAt:   now,
		}

		record, err = post(ctx, tx, tenantWallet, posting{
			Type:          models.TxSecurityDepositLock,
			Amount:        params.Amount.Neg(),
			Currency:      tenancy.Currency,
			Status:        models.TxStatusCompleted,
			Description:   "Security deposit locked",
			RelatedUserId: tenancy.LandlordId,
			TenancyId:     tenancy.Id,
		}, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, queryInsertDeposit,
			deposit.Id, deposit.TenancyId, deposit.TenantId, deposit.LandlordId,
			deposit.Amount, deposit.Currency, deposit.LockedAt)
		if err != nil {
			return fmt.Errorf("failed to insert security deposit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Security deposit locked",
		zap.String("deposit_id", deposit.Id),
		zap.String("tenancy_id", deposit.TenancyId),
		zap.String("amount", deposit.Amount.String()))
	return deposit, record, nil
}

// GetSecurityDeposit loads a deposit held for landlordId.
func (s *Service) GetSecurityDeposit(ctx context.Context, depositId, landlordId string) (*models.SecurityDeposit, error) {
	var deposit models.SecurityDeposit
	err := s.db.GetContext(ctx, &deposit, queryGetDepositForLandlord, depositId, landlordId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: security deposit %s", store.ErrNotFound, depositId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query security deposit: %w", err)
	}
	return &deposit, nil
}

// ReleaseSecurityDeposit returns all or part of a held deposit to the tenant.
// The amount not returned is credited to the landlord. The deposit reaches a
// terminal status in the same database transaction as both credits.
func (s *Service) ReleaseSecurityDeposit(ctx context.Context, params store.ReleaseDepositParams) (*store.ReleaseResult, error) {
	zap.L().Info("Releasing security deposit",
		zap.String("deposit_id", params.DepositId),
		zap.String("landlord_id", params.LandlordId))

	result := &store.ReleaseResult{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		var deposit models.SecurityDeposit
		err := tx.GetContext(ctx, &deposit, queryGetDepositForLandlord, params.DepositId, params.LandlordId)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: security deposit %s", store.ErrNotFound, params.DepositId)
		}
		if err != nil {
			return fmt.Errorf("failed to load security deposit: %w", err)
		}
		if deposit.Status.IsTerminal() {
			return fmt.Errorf("%w: security deposit %s already %s", store.ErrInvalidState, deposit.Id, deposit.Status)
		}

		releaseAmount := deposit.Amount
		if params.ReleaseAmount != nil {
			releaseAmount = *params.ReleaseAmount
		}
		if releaseAmount.IsNegative() || releaseAmount.GreaterThan(deposit.Amount) {
			return fmt.Errorf("%w: release amount %s outside [0, %s]", store.ErrValidation, releaseAmount.String(), deposit.Amount.String())
		}

		status := models.DepositPartiallyReleased
		if releaseAmount.Equal(deposit.Amount) {
			status = models.DepositReleased
		}

		res, err := tx.ExecContext(ctx, queryReleaseDeposit, status, releaseAmount, now, params.DeductionReason, deposit.Id)
		if err != nil {
			return fmt.Errorf("failed to update security deposit: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("%w: security deposit %s already released", store.ErrInvalidState, deposit.Id)
		}

		deposit.Status = status
		deposit.ReleaseAmount = decimal.NewNullDecimal(releaseAmount)
		deposit.ReleasedAt = &now
		deposit.DeductionReason = params.DeductionReason
		result.Deposit = &deposit

		deduction := deposit.Amount.Sub(releaseAmount)

		if releaseAmount.IsPositive() {
			tenantWallet, err := ensureWallet(ctx, tx, deposit.TenantId, deposit.Currency, now)
			if err != nil {
				return err
			}
			result.Refund, err = post(ctx, tx, tenantWallet, posting{
				Type:          models.TxSecurityDepositRelease,
				Amount:        releaseAmount,
				Currency:      deposit.Currency,
				Status:        models.TxStatusCompleted,
				Description:   refundDescription(deduction, params.DeductionReason),
				RelatedUserId: deposit.LandlordId,
				TenancyId:     deposit.TenancyId,
			}, now)
			if err != nil {
				return err
			}
		}

		if deduction.IsPositive() {
			landlordWallet, err := ensureWallet(ctx, tx, deposit.LandlordId, deposit.Currency, now)
			if err != nil {
				return err
			}
			result.Deduction, err = post(ctx, tx, landlordWallet, posting{
				Type:          models.TxSecurityDepositRelease,
				Amount:        deduction,
				Currency:      deposit.Currency,
				Status:        models.TxStatusCompleted,
				Description:   deductionDescription(params.DeductionReason),
				RelatedUserId: deposit.TenantId,
				TenancyId:     deposit.TenancyId,
			}, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("Security deposit release failed", zap.String("deposit_id", params.DepositId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Security deposit released",
		zap.String("deposit_id", result.Deposit.Id),
		zap.String("status", string(result.Deposit.Status)),
		zap.String("release_amount", result.Deposit.ReleaseAmount.Decimal.String()))
	return result, nil
}

func (s *Service) ListSecurityDeposits(ctx context.Context, filter store.PartyFilter) ([]models.SecurityDeposit, error) {
	query, arg, err := partyQuery(filter, queryListDepositsByTenant, queryListDepositsByLandlord)
	if err != nil {
		return nil, err
	}

	deposits := []models.SecurityDeposit{}
	if err := s.db.SelectContext(ctx, &deposits, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list security deposits: %w", err)
	}
	return deposits, nil
}

func refundDescription(deduction decimal.Decimal, reason string) string {
	if !deduction.IsPositive() {
		return "Security deposit released"
	}
	if reason == "" {
		return fmt.Sprintf("Security deposit released (deduction: %s)", deduction.String())
	}
	return fmt.Sprintf("Security deposit released (deduction: %s, %s)", deduction.String(), reason)
}

func deductionDescription(reason string) string {
	if reason == "" {
		return "Security deposit deduction retained"
	}
	return "Security deposit deduction retained: " + reason
}

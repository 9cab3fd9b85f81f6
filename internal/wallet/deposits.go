package wallet

import (
	"context"
	"fmt"
	"strings"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListSecurityDeposits returns the deposits the caller holds or has paid
func (s *Service) ListSecurityDeposits(ctx context.Context, identity *models.Identity) ([]models.SecurityDeposit, error) {
	filter, err := partyFilter(identity)
	if err != nil {
		return nil, err
	}
	deposits, err := s.store.ListSecurityDeposits(ctx, filter)
	if err != nil {
		return nil, err
	}
	if deposits == nil {
		deposits = []models.SecurityDeposit{}
	}
	return deposits, nil
}

// LockDeposit places a hold on the tenant's funds for one of the landlord's tenancies
func (s *Service) LockDeposit(ctx context.Context, identity *models.Identity, tenancyId string, amount decimal.Decimal) (deposit *models.SecurityDeposit, err error) {
	defer func() { s.metrics.ObserveOperation("lock_deposit", err) }()

	if err := requireRole(identity, models.RoleLandlord); err != nil {
		return nil, err
	}
	if tenancyId == "" {
		return nil, fmt.Errorf("%w: tenancy is required", ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrValidation)
	}
	tenancy, err := s.tenancyFor(ctx, identity, tenancyId)
	if err != nil {
		return nil, err
	}
	if err := s.requireMinorUnits(amount, tenancy.Currency, "deposit"); err != nil {
		return nil, err
	}

	deposit, record, err := s.store.LockSecurityDeposit(ctx, store.LockDepositParams{
		LandlordId: identity.UserId,
		TenancyId:  tenancyId,
		Amount:     amount,
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, record)
	return deposit, nil
}

// ReleaseDeposit returns releaseAmount to the tenant (the whole deposit when
// nil) and credits the remainder to the landlord.
func (s *Service) ReleaseDeposit(ctx context.Context, identity *models.Identity, depositId string, releaseAmount *decimal.Decimal, deductionReason string) (result *store.ReleaseResult, err error) {
	defer func() { s.metrics.ObserveOperation("release_deposit", err) }()

	if err := requireRole(identity, models.RoleLandlord); err != nil {
		return nil, err
	}
	if depositId == "" {
		return nil, fmt.Errorf("%w: deposit is required", ErrValidation)
	}
	if releaseAmount != nil && releaseAmount.IsNegative() {
		return nil, fmt.Errorf("%w: release amount cannot be negative", ErrValidation)
	}
	if releaseAmount != nil {
		held, err := s.store.GetSecurityDeposit(ctx, depositId, identity.UserId)
		if err != nil {
			return nil, err
		}
		if err := s.requireMinorUnits(*releaseAmount, held.Currency, "release"); err != nil {
			return nil, err
		}
	}

	result, err = s.store.ReleaseSecurityDeposit(ctx, store.ReleaseDepositParams{
		LandlordId:      identity.UserId,
		DepositId:       depositId,
		ReleaseAmount:   releaseAmount,
		DeductionReason: strings.TrimSpace(deductionReason),
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Security deposit released",
		zap.String("deposit_id", depositId),
		zap.String("status", string(result.Deposit.Status)))
	s.committed(ctx, result.Refund, result.Deduction)
	return result, nil
}

// partyFilter scopes a listing by the caller's role
func partyFilter(identity *models.Identity) (store.PartyFilter, error) {
	if identity == nil {
		return store.PartyFilter{}, fmt.Errorf("%w: no identity", ErrForbidden)
	}
	switch identity.Role {
	case models.RoleTenant:
		return store.PartyFilter{TenantId: identity.UserId}, nil
	case models.RoleLandlord:
		return store.PartyFilter{LandlordId: identity.UserId}, nil
	}
	return store.PartyFilter{}, fmt.Errorf("%w: unknown role", ErrForbidden)
}

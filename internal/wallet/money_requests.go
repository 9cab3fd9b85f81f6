package wallet

import (
	"context"
	"fmt"
	"strings"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

// CreateMoneyRequest files a reimbursement request against the tenant's own tenancy
func (s *Service) CreateMoneyRequest(ctx context.Context, identity *models.Identity, tenancyId string, amount decimal.Decimal, reason string, category models.RequestCategory) (request *models.MoneyRequest, err error) {
	defer func() { s.metrics.ObserveOperation("create_money_request", err) }()

	if err := requireRole(identity, models.RoleTenant); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	switch {
	case tenancyId == "":
		return nil, fmt.Errorf("%w: tenancy is required", ErrValidation)
	case !amount.IsPositive():
		return nil, fmt.Errorf("%w: request amount must be positive", ErrValidation)
	case reason == "":
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	case !category.Valid():
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	tenancy, err := s.tenancyFor(ctx, identity, tenancyId)
	if err != nil {
		return nil, err
	}
	if err := s.requireMinorUnits(amount, tenancy.Currency, "request"); err != nil {
		return nil, err
	}

	return s.store.CreateMoneyRequest(ctx, store.CreateMoneyRequestParams{
		TenantId:  identity.UserId,
		TenancyId: tenancyId,
		Amount:    amount,
		Reason:    reason,
		Category:  category,
	})
}

// DecideMoneyRequest settles a pending request. Approval pays the tenant from
// the landlord's wallet and marks the request paid in one step.
func (s *Service) DecideMoneyRequest(ctx context.Context, identity *models.Identity, requestId string, decision models.Decision, note string) (request *models.MoneyRequest, err error) {
	defer func() { s.metrics.ObserveOperation("decide_money_request", err) }()

	if err := requireRole(identity, models.RoleLandlord); err != nil {
		return nil, err
	}
	if requestId == "" {
		return nil, fmt.Errorf("%w: request is required", ErrValidation)
	}

	params := store.DecideMoneyRequestParams{
		LandlordId: identity.UserId,
		RequestId:  requestId,
		Note:       strings.TrimSpace(note),
	}

	switch decision {
	case models.DecisionApprove:
		payment, err := s.store.PayMoneyRequest(ctx, params)
		if err != nil {
			return nil, err
		}
		s.committed(ctx, payment.Debit, payment.Credit)
		return payment.Request, nil
	case models.DecisionReject:
		return s.store.RejectMoneyRequest(ctx, params)
	}
	return nil, fmt.Errorf("%w: action must be approve or reject", ErrValidation)
}

func (s *Service) ListMoneyRequests(ctx context.Context, identity *models.Identity) ([]models.MoneyRequest, error) {
	filter, err := partyFilter(identity)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListMoneyRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.MoneyRequest{}
	}
	return requests, nil
}

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
	"go.uber.org/zap"
)

// CreateMoneyRequest records a pending reimbursement request against the
// tenant's own active tenancy. The currency is fixed to the tenancy's.
func (s *Service) CreateMoneyRequest(ctx context.Context, params store.CreateMoneyRequestParams) (*models.MoneyRequest, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: request amount must be positive", store.ErrValidation)
	}
	if !params.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", store.ErrValidation, params.Category)
	}

	tenancy, err := getTenancyForTenant(ctx, s.db, params.TenancyId, params.TenantId)
	if err != nil {
		return nil, err
	}
	if tenancy.Status != models.TenancyActive {
		return nil, fmt.Errorf("%w: tenancy %s is %s", store.ErrInvalidState, tenancy.Id, tenancy.Status)
	}

	request := &models.MoneyRequest{
		Id:         uuid.New().String(),
		TenancyId:  tenancy.Id,
		TenantId:   params.TenantId,
		LandlordId: tenancy.LandlordId,
		Amount:     params.Amount,
		Currency:   tenancy.Currency,
		Reason:     params.Reason,
		Category:   params.Category,
		Status:     models.RequestPending,
		CreatedAt:  s.timestamp(),
	}

	_, err = s.db.ExecContext(ctx, queryInsertMoneyRequest,
		request.Id, request.TenancyId, request.TenantId, request.LandlordId,
		request.Amount, request.Currency, request.Reason, request.Category, request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert money request: %w", err)
	}

	zap.L().Info("Money request created",
		zap.String("request_id", request.Id),
		zap.String("tenancy_id", request.TenancyId),
		zap.String("amount", request.Amount.String()),
		zap.String("category", string(request.Category)))
	return request, nil
}

// RejectMoneyRequest closes a pending request without moving funds.
func (s *Service) RejectMoneyRequest(ctx context.Context, params store.DecideMoneyRequestParams) (*models.MoneyRequest, error) {
	var request *models.MoneyRequest
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		request, err = getPendingRequest(ctx, tx, params)
		if err != nil {
			return err
		}
		return decideRequest(ctx, tx, request, models.RequestRejected, params.Note, s.timestamp())
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Money request rejected", zap.String("request_id", request.Id))
	return request, nil
}

// PayMoneyRequest approves a pending request: the landlord's wallet is
// debited, the tenant's credited and the request marked paid, all or nothing.
func (s *Service) PayMoneyRequest(ctx context.Context, params store.DecideMoneyRequestParams) (*store.MoneyRequestPayment, error) {
	payment := &store.MoneyRequestPayment{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.timestamp()

		request, err := getPendingRequest(ctx, tx, params)
		if err != nil {
			return err
		}
		payment.Request = request

		landlordWallet, err := ensureWallet(ctx, tx, request.LandlordId, request.Currency, now)
		if err != nil {
			return err
		}
		if landlordWallet.Currency != request.Currency {
			return fmt.Errorf("%w: request in %s, landlord wallet in %s", store.ErrCurrencyMismatch, request.Currency, landlordWallet.Currency)
		}
		if landlordWallet.Balance.LessThan(request.Amount) {
			return fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, landlordWallet.Balance.String(), request.Amount.String())
		}

		description := fmt.Sprintf("Money request (%s): %s", request.Category, request.Reason)

		payment.Debit, err = post(ctx, tx, landlordWallet, posting{
			Type:          models.TxMaintenanceRequest,
			Amount:        request.Amount.Neg(),
			Currency:      request.Currency,
			Status:        models.TxStatusCompleted,
			Description:   description,
			RelatedUserId: request.TenantId,
			TenancyId:     request.TenancyId,
		}, now)
		if err != nil {
			return err
		}

		tenantWallet, err := ensureWallet(ctx, tx, request.TenantId, request.Currency, now)
		if err != nil {
			return err
		}
		payment.Credit, err = post(ctx, tx, tenantWallet, posting{
			Type:          models.TxMaintenanceRequest,
			Amount:        request.Amount,
			Currency:      request.Currency,
			Status:        models.TxStatusCompleted,
			Description:   description,
			RelatedUserId: request.LandlordId,
			TenancyId:     request.TenancyId,
		}, now)
		if err != nil {
			return err
		}

		return decideRequest(ctx, tx, request, models.RequestPaid, params.Note, now)
	})
	if err != nil {
		zap.L().Warn("Money request approval failed", zap.String("request_id", params.RequestId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Money request paid",
		zap.String("request_id", payment.Request.Id),
		zap.String("amount", payment.Request.Amount.String()))
	return payment, nil
}

func (s *Service) ListMoneyRequests(ctx context.Context, filter store.PartyFilter) ([]models.MoneyRequest, error) {
	query, arg, err := partyQuery(filter, queryListRequestsByTenant, queryListRequestsByLandlord)
	if err != nil {
		return nil, err
	}

	requests := []models.MoneyRequest{}
	if err := s.db.SelectContext(ctx, &requests, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list money requests: %w", err)
	}
	return requests, nil
}

func getPendingRequest(ctx context.Context, tx *sqlx.Tx, params store.DecideMoneyRequestParams) (*models.MoneyRequest, error) {
	var request models.MoneyRequest
	err := tx.GetContext(ctx, &request, queryGetMoneyRequestForLandlord, params.RequestId, params.LandlordId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: money request %s", store.ErrNotFound, params.RequestId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load money request: %w", err)
	}
	if request.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: money request %s is %s", store.ErrInvalidState, request.Id, request.Status)
	}
	return &request, nil
}

func decideRequest(ctx context.Context, tx *sqlx.Tx, request *models.MoneyRequest, status models.MoneyRequestStatus, note string, now time.Time) error {
	result, err := tx.ExecContext(ctx, queryDecideMoneyRequest, status, note, now, request.Id)
	if err != nil {
		return fmt.Errorf("failed to update money request: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: money request %s already decided", store.ErrInvalidState, request.Id)
	}

	request.Status = status
	request.LandlordNote = note
	request.DecidedAt = &now
	return nil
}

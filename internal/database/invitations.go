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

func (s *Service) CreateInvitation(ctx context.Context, params store.CreateInvitationParams) (*models.Invitation, error) {
	if params.Token == "" || params.LandlordId == "" || params.Email == "" {
		return nil, fmt.Errorf("%w: token, landlord and email are required", store.ErrValidation)
	}

	invitation := &models.Invitation{
		Id:         uuid.New().String(),
		Token:      params.Token,
		LandlordId: params.LandlordId,
		Email:      params.Email,
		FullName:   params.FullName,
		Phone:      params.Phone,
		PropertyId: params.PropertyId,
		Unit:       params.Unit,
		RentAmount: params.RentAmount,
		Currency:   params.Currency,
		ExpiresAt:  params.ExpiresAt.UTC(),
		CreatedAt:  s.timestamp(),
	}

	_, err := s.db.ExecContext(ctx, queryInsertInvitation,
		invitation.Id, invitation.Token, invitation.LandlordId, invitation.Email,
		invitation.FullName, invitation.Phone, invitation.PropertyId, invitation.Unit,
		invitation.RentAmount, invitation.Currency, invitation.ExpiresAt, invitation.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}

	zap.L().Info("Invitation created",
		zap.String("invitation_id", invitation.Id),
		zap.String("landlord_id", invitation.LandlordId),
		zap.Time("expires_at", invitation.ExpiresAt))
	return invitation, nil
}

func (s *Service) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return getInvitation(ctx, s.db, token)
}

// ConsumeInvitation marks the token used by userId. Only the first caller
// flips the used flag; everyone else gets store.ErrInvalidState. When the
// invitation names a property, the tenancy is created in the same transaction.
func (s *Service) ConsumeInvitation(ctx context.Context, params store.ConsumeInvitationParams) (*models.Invitation, *models.Tenancy, error) {
	var invitation *models.Invitation
	var tenancy *models.Tenancy
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		invitation, err = getInvitation(ctx, tx, params.Token)
		if err != nil {
			return err
		}

		usedAt := params.UsedAt.UTC()
		result, err := tx.ExecContext(ctx, queryConsumeInvitation, params.UserId, usedAt, params.Token)
		if err != nil {
			return fmt.Errorf("failed to consume invitation: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("%w: invitation already used", store.ErrInvalidState)
		}

		invitation.Used = true
		invitation.UsedBy = params.UserId
		invitation.UsedAt = &usedAt

		if invitation.PropertyId == "" {
			return nil
		}
		tenancy, err = insertTenancy(ctx, tx, store.CreateTenancyParams{
			PropertyId: invitation.PropertyId,
			LandlordId: invitation.LandlordId,
			TenantId:   params.UserId,
			Unit:       invitation.Unit,
			RentAmount: invitation.RentAmount,
			Currency:   invitation.Currency,
			Status:     models.TenancyActive,
			StartDate:  usedAt,
		}, s.timestamp())
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Invitation consumed",
		zap.String("invitation_id", invitation.Id),
		zap.String("user_id", params.UserId),
		zap.Bool("tenancy_created", tenancy != nil))
	return invitation, tenancy, nil
}

func getInvitation(ctx context.Context, q sqlx.QueryerContext, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := sqlx.GetContext(ctx, q, &invitation, queryGetInvitationByToken, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invitation", store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	return &invitation, nil
}

/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

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

func (s *Service) CreateProfile(ctx context.Context, params store.CreateProfileParams) (*models.Profile, error) {
	if params.Id == "" {
		params.Id = uuid.New().String()
	}
	if params.Role.IsZero() {
		return nil, fmt.Errorf("%w: role is required", store.ErrValidation)
	}
	if params.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", store.ErrValidation)
	}

	zap.L().Info("Creating profile",
		zap.String("id", params.Id),
		zap.String("email", params.Email),
		zap.String("role", params.Role.String()))

	result, err := s.db.ExecContext(ctx, queryInsertProfile,
		params.Id, params.Email, params.FullName, params.Phone, params.Role, params.Currency, s.timestamp())
	if err != nil {
		zap.L().Error("Failed to insert profile", zap.String("email", params.Email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: profile with email %s already exists", store.ErrInvalidState, params.Email)
	}

	return s.GetProfile(ctx, params.Id)
}

func (s *Service) GetProfile(ctx context.Context, userId string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, queryGetProfile, userId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", store.ErrNotFound, userId)
	}
	if err != nil {
		zap.L().Error("Failed to query profile", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query profile: %w", err)
	}
	return &profile, nil
}

func (s *Service) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, queryGetProfileByEmail, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", store.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query profile by email: %w", err)
	}
	return &profile, nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.SelectContext(ctx, &profiles, queryListProfiles); err != nil {
		return nil, fmt.Errorf("unable to query profiles: %w", err)
	}
	zap.L().Debug("Retrieved profiles", zap.Int("count", len(profiles)))
	return profiles, nil
}

func (s *Service) CreateProperty(ctx context.Context, params store.CreatePropertyParams) (*models.Property, error) {
	if params.LandlordId == "" || params.Name == "" {
		return nil, fmt.Errorf("%w: landlord and name are required", store.ErrValidation)
	}

	property := &models.Property{
		Id:         uuid.New().String(),
		LandlordId: params.LandlordId,
		Name:       params.Name,
		Address:    params.Address,
		CreatedAt:  s.timestamp(),
	}
	_, err := s.db.ExecContext(ctx, queryInsertProperty,
		property.Id, property.LandlordId, property.Name, property.Address, property.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("unable to insert property: %w", err)
	}

	zap.L().Info("Property created", zap.String("id", property.Id), zap.String("landlord_id", property.LandlordId))
	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, propertyId string) (*models.Property, error) {
	var property models.Property
	err := s.db.GetContext(ctx, &property, queryGetProperty, propertyId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: property %s", store.ErrNotFound, propertyId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query property: %w", err)
	}
	return &property, nil
}

func (s *Service) CreateTenancy(ctx context.Context, params store.CreateTenancyParams) (*models.Tenancy, error) {
	var tenancy *models.Tenancy
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		tenancy, err = insertTenancy(ctx, tx, params, s.timestamp())
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Tenancy created",
		zap.String("id", tenancy.Id),
		zap.String("tenant_id", tenancy.TenantId),
		zap.String("landlord_id", tenancy.LandlordId))
	return tenancy, nil
}

func insertTenancy(ctx context.Context, tx *sqlx.Tx, params store.CreateTenancyParams, now time.Time) (*models.Tenancy, error) {
	var property models.Property
	err := tx.GetContext(ctx, &property, queryGetProperty, params.PropertyId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: property %s", store.ErrNotFound, params.PropertyId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query property: %w", err)
	}
	if property.LandlordId != params.LandlordId {
		return nil, fmt.Errorf("%w: property %s", store.ErrNotFound, params.PropertyId)
	}
	if params.RentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: rent amount cannot be negative", store.ErrValidation)
	}

	status := params.Status
	if status == "" {
		status = models.TenancyActive
	}
	startDate := params.StartDate
	if startDate.IsZero() {
		startDate = now
	}

	tenancy := &models.Tenancy{
		Id:         uuid.New().String(),
		PropertyId: params.PropertyId,
		LandlordId: params.LandlordId,
		TenantId:   params.TenantId,
		Unit:       params.Unit,
		RentAmount: params.RentAmount,
		Currency:   params.Currency,
		Status:     status,
		StartDate:  startDate,
		CreatedAt:  now,
	}
	if _, err := sqlx.NamedExecContext(ctx, tx, queryInsertTenancy, tenancy); err != nil {
		return nil, fmt.Errorf("unable to insert tenancy: %w", err)
	}
	return tenancy, nil
}

func (s *Service) GetTenancy(ctx context.Context, tenancyId string) (*models.Tenancy, error) {
	var tenancy models.Tenancy
	err := s.db.GetContext(ctx, &tenancy, queryGetTenancy, tenancyId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenancy %s", store.ErrNotFound, tenancyId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query tenancy: %w", err)
	}
	return &tenancy, nil
}

// getTenancyForTenant loads a tenancy only if it belongs to the tenant, so a
// foreign tenancy is indistinguishable from a missing one.
func getTenancyForTenant(ctx context.Context, q sqlx.QueryerContext, tenancyId, tenantId string) (*models.Tenancy, error) {
	var tenancy models.Tenancy
	err := sqlx.GetContext(ctx, q, &tenancy, queryGetTenancyForTenant, tenancyId, tenantId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenancy %s", store.ErrNotFound, tenancyId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query tenancy: %w", err)
	}
	return &tenancy, nil
}

func (s *Service) ListTenancies(ctx context.Context, filter store.PartyFilter) ([]models.Tenancy, error) {
	query, arg, err := partyQuery(filter, queryListTenanciesByTenant, queryListTenanciesByLandlord)
	if err != nil {
		return nil, err
	}

	tenancies := []models.Tenancy{}
	if err := s.db.SelectContext(ctx, &tenancies, query, arg); err != nil {
		return nil, fmt.Errorf("unable to query tenancies: %w", err)
	}
	return tenancies, nil
}

// partyQuery picks the tenant-scoped or landlord-scoped variant of a listing
func partyQuery(filter store.PartyFilter, byTenant, byLandlord string) (string, string, error) {
	switch {
	case filter.TenantId != "" && filter.LandlordId == "":
		return byTenant, filter.TenantId, nil
	case filter.LandlordId != "" && filter.TenantId == "":
		return byLandlord, filter.LandlordId, nil
	}
	return "", "", fmt.Errorf("%w: exactly one of tenant or landlord must be set", store.ErrValidation)
}

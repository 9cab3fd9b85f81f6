package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

func createInvitation(t *testing.T, s *Service, params store.CreateInvitationParams) *models.Invitation {
	t.Helper()
	if params.Email == "" {
		params.Email = "new.tenant@example.com"
	}
	if params.Currency == "" {
		params.Currency = "EUR"
	}
	if params.ExpiresAt.IsZero() {
		params.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}

	invitation, err := s.CreateInvitation(context.Background(), params)
	if err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}
	return invitation
}

func TestConsumeInvitation_OnlyOnce(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	landlord := createProfile(t, service, models.RoleLandlord)
	createInvitation(t, service, store.CreateInvitationParams{Token: "tok-once", LandlordId: landlord.Id})

	invitation, tenancy, err := service.ConsumeInvitation(ctx, store.ConsumeInvitationParams{
		Token: "tok-once", UserId: "tenant-1", UsedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("ConsumeInvitation failed: %v", err)
	}
	if !invitation.Used || invitation.UsedBy != "tenant-1" || invitation.UsedAt == nil {
		t.Errorf("Invitation not marked used: %+v", invitation)
	}
	if tenancy != nil {
		t.Errorf("Expected no tenancy without a property, got %+v", tenancy)
	}

	_, _, err = service.ConsumeInvitation(ctx, store.ConsumeInvitationParams{
		Token: "tok-once", UserId: "tenant-2", UsedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on second redemption, got: %v", err)
	}

	stored, err := service.GetInvitationByToken(ctx, "tok-once")
	if err != nil {
		t.Fatalf("GetInvitationByToken failed: %v", err)
	}
	if stored.UsedBy != "tenant-1" {
		t.Errorf("Second redemption must not overwrite used_by, got %s", stored.UsedBy)
	}
}

func TestConsumeInvitation_ConcurrentRedemptions(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	landlord := createProfile(t, service, models.RoleLandlord)
	createInvitation(t, service, store.CreateInvitationParams{Token: "tok-race", LandlordId: landlord.Id})

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := service.ConsumeInvitation(ctx, store.ConsumeInvitationParams{
				Token: "tok-race", UserId: "tenant", UsedAt: time.Now(),
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else if !errors.Is(err, store.ErrInvalidState) {
				t.Errorf("Unexpected redemption error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one successful redemption, got %d", winners)
	}
}

func TestConsumeInvitation_CreatesTenancy(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	fx := seedTenancy(t, service)
	newcomer := createProfile(t, service, models.RoleTenant)

	createInvitation(t, service, store.CreateInvitationParams{
		Token:      "tok-unit",
		LandlordId: fx.landlord.Id,
		PropertyId: fx.property.Id,
		Unit:       "3A",
		RentAmount: decimal.NewFromInt(1100),
	})

	_, tenancy, err := service.ConsumeInvitation(ctx, store.ConsumeInvitationParams{
		Token: "tok-unit", UserId: newcomer.Id, UsedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("ConsumeInvitation failed: %v", err)
	}
	if tenancy == nil {
		t.Fatalf("Expected a tenancy to be created")
	}
	if tenancy.TenantId != newcomer.Id || tenancy.Unit != "3A" || !tenancy.RentAmount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Unexpected tenancy: %+v", tenancy)
	}
	if tenancy.Status != models.TenancyActive {
		t.Errorf("Expected active tenancy, got %s", tenancy.Status)
	}

	tenancies, err := service.ListTenancies(ctx, store.PartyFilter{TenantId: newcomer.Id})
	if err != nil {
		t.Fatalf("ListTenancies failed: %v", err)
	}
	if len(tenancies) != 1 {
		t.Errorf("Expected one persisted tenancy, got %d", len(tenancies))
	}
}

func TestGetInvitationByToken_Unknown(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	if _, err := service.GetInvitationByToken(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

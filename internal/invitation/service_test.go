package invitation

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"property-wallet-go/internal/database"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixture struct {
	service  *Service
	db       *database.Service
	landlord *models.Identity
	now      time.Time
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "invitations.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	f := &fixture{db: db, now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.service = NewService(db, metrics.New(), models.DefaultCurrencies(), models.WalletConfig{}).
		WithClock(func() time.Time { return f.now })

	landlord := f.newProfile(t, models.RoleLandlord)
	f.landlord = &models.Identity{UserId: landlord.Id, Email: landlord.Email, Role: landlord.Role, Currency: landlord.Currency}
	return f
}

func (f *fixture) newProfile(t *testing.T, role models.Role) *models.Profile {
	t.Helper()
	id := uuid.New().String()
	profile, err := f.db.CreateProfile(context.Background(), store.CreateProfileParams{
		Id:       id,
		Email:    id[:8] + "@example.com",
		FullName: "Test User",
		Role:     role,
		Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	return profile
}

func TestCreateAndResolve(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.landlord, models.InvitationRequest{Email: "new@example.com", FullName: "New Tenant"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(created.Token) != 43 {
		t.Errorf("token length = %d, want 43", len(created.Token))
	}
	if !created.ExpiresAt.Equal(f.now.Add(defaultTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", created.ExpiresAt, f.now.Add(defaultTTL))
	}
	if created.Currency != "EUR" {
		t.Errorf("Currency = %s, want landlord currency", created.Currency)
	}

	resolved, err := f.service.Resolve(ctx, created.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Email != "new@example.com" || resolved.FullName != "New Tenant" {
		t.Errorf("unexpected invitation %+v", resolved)
	}
}

func TestResolveAfterExpiry(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.landlord, models.InvitationRequest{Email: "late@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f.now = f.now.Add(8 * 24 * time.Hour)
	if _, err := f.service.Resolve(ctx, created.Token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	tenant := f.newProfile(t, models.RoleTenant)
	if _, _, err := f.service.Consume(ctx, created.Token, tenant.Id); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired on consume, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	f := setupTestService(t)
	if _, err := f.service.Resolve(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	tenant := f.newProfile(t, models.RoleTenant)
	if _, err := f.service.Create(ctx, &models.Identity{UserId: tenant.Id, Role: models.RoleTenant}, models.InvitationRequest{Email: "a@example.com"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("tenant create: expected ErrForbidden, got %v", err)
	}

	tests := []struct {
		name string
		req  models.InvitationRequest
		want error
	}{
		{"bad email", models.InvitationRequest{Email: "not-an-email"}, store.ErrValidation},
		{"negative rent", models.InvitationRequest{Email: "a@example.com", RentAmount: decimal.NewFromInt(-1)}, store.ErrValidation},
		{"unknown currency", models.InvitationRequest{Email: "a@example.com", Currency: "XYZ"}, store.ErrValidation},
		{"rent below minor unit", models.InvitationRequest{Email: "a@example.com", Currency: "EUR", RentAmount: decimal.RequireFromString("900.005")}, store.ErrValidation},
		{"unknown property", models.InvitationRequest{Email: "a@example.com", PropertyId: "missing", RentAmount: decimal.NewFromInt(500)}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.Create(ctx, f.landlord, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConsumeCreatesTenancy(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	property, err := f.db.CreateProperty(ctx, store.CreatePropertyParams{LandlordId: f.landlord.UserId, Name: "Harbour View"})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}
	created, err := f.service.Create(ctx, f.landlord, models.InvitationRequest{
		Email:      "tenant@example.com",
		PropertyId: property.Id,
		Unit:       "4A",
		RentAmount: decimal.NewFromInt(1200),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tenant := f.newProfile(t, models.RoleTenant)
	invitation, tenancy, err := f.service.Consume(ctx, created.Token, tenant.Id)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !invitation.Used || invitation.UsedBy != tenant.Id {
		t.Errorf("invitation not marked used: %+v", invitation)
	}
	if tenancy == nil || tenancy.TenantId != tenant.Id || !tenancy.RentAmount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("unexpected tenancy %+v", tenancy)
	}

	if _, err := f.service.Resolve(ctx, created.Token); !errors.Is(err, ErrUsed) {
		t.Fatalf("expected ErrUsed after consume, got %v", err)
	}
	if _, _, err := f.service.Consume(ctx, created.Token, tenant.Id); !errors.Is(err, ErrUsed) {
		t.Fatalf("expected ErrUsed on second consume, got %v", err)
	}
	if !errors.Is(ErrUsed, store.ErrInvalidState) {
		t.Error("ErrUsed should be an invalid state error")
	}
}

func TestConsumeConcurrently(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.landlord, models.InvitationRequest{Email: "race@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	var succeeded, used int32
	for i := 0; i < 8; i++ {
		tenant := f.newProfile(t, models.RoleTenant)
		wg.Add(1)
		go func(userId string) {
			defer wg.Done()
			_, _, err := f.service.Consume(ctx, created.Token, userId)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, ErrUsed):
				atomic.AddInt32(&used, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(tenant.Id)
	}
	wg.Wait()

	if succeeded != 1 || used != 7 {
		t.Fatalf("succeeded=%d used=%d, want 1 and 7", succeeded, used)
	}
}

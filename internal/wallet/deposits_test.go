package wallet

import (
	"context"
	"errors"
	"testing"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestLockAndPartialRelease(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, tenant.UserId, 600)
	ctx := context.Background()

	deposit, err := env.service.LockDeposit(ctx, landlord, tenancy.Id, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("LockDeposit failed: %v", err)
	}
	env.assertBalance(t, tenant.UserId, 100)

	releaseAmount := decimal.NewFromInt(300)
	result, err := env.service.ReleaseDeposit(ctx, landlord, deposit.Id, &releaseAmount, "wall repair")
	if err != nil {
		t.Fatalf("ReleaseDeposit failed: %v", err)
	}
	if result.Deposit.Status != models.DepositPartiallyReleased {
		t.Errorf("status = %s, want partially_released", result.Deposit.Status)
	}
	if !result.Deposit.ReleaseAmount.Valid || !result.Deposit.ReleaseAmount.Decimal.Equal(releaseAmount) {
		t.Errorf("release amount = %v, want 300", result.Deposit.ReleaseAmount)
	}
	env.assertBalance(t, tenant.UserId, 400)
	env.assertBalance(t, landlord.UserId, 200)

	// Terminal status: a second release is rejected
	if _, err := env.service.ReleaseDeposit(ctx, landlord, deposit.Id, nil, ""); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	tenantView, err := env.service.ListSecurityDeposits(ctx, tenant)
	if err != nil || len(tenantView) != 1 {
		t.Fatalf("tenant deposits = %v, %v", tenantView, err)
	}
	landlordView, err := env.service.ListSecurityDeposits(ctx, landlord)
	if err != nil || len(landlordView) != 1 {
		t.Fatalf("landlord deposits = %v, %v", landlordView, err)
	}
}

func TestReleaseDepositRejectsNegativeAmount(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, _, _ := env.tenancy(t)
	negative := decimal.NewFromInt(-1)

	_, err := env.service.ReleaseDeposit(context.Background(), landlord, "dep", &negative, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReleaseDepositOfOtherLandlord(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, tenant.UserId, 100)
	ctx := context.Background()

	deposit, err := env.service.LockDeposit(ctx, landlord, tenancy.Id, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("LockDeposit failed: %v", err)
	}

	stranger := env.profile(t, models.RoleLandlord, "EUR")
	if _, err := env.service.ReleaseDeposit(ctx, stranger, deposit.Id, nil, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

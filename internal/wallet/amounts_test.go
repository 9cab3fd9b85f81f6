package wallet

import (
	"context"
	"errors"
	"testing"

	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestAmountsFinerThanMinorUnitRejected(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, tenant.UserId, 100)
	env.fund(t, landlord.UserId, 100)
	ctx := context.Background()
	account := addAccount(t, env, tenant.UserId)

	deposit, err := env.service.LockDeposit(ctx, landlord, tenancy.Id, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("LockDeposit failed: %v", err)
	}

	tooFine := decimal.RequireFromString("1.005")
	tests := []struct {
		name string
		call func() error
	}{
		{"withdraw", func() error {
			_, err := env.service.Withdraw(ctx, tenant.UserId, tooFine, account.Id)
			return err
		}},
		{"lock deposit", func() error {
			_, err := env.service.LockDeposit(ctx, landlord, tenancy.Id, tooFine)
			return err
		}},
		{"release deposit", func() error {
			_, err := env.service.ReleaseDeposit(ctx, landlord, deposit.Id, &tooFine, "cleaning")
			return err
		}},
		{"money request", func() error {
			_, err := env.service.CreateMoneyRequest(ctx, tenant, tenancy.Id, tooFine, "Light bulbs", models.CategoryRepair)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	env.assertBalance(t, tenant.UserId, 50)
	env.assertBalance(t, landlord.UserId, 100)

	requests, err := env.service.ListMoneyRequests(ctx, tenant)
	if err != nil || len(requests) != 0 {
		t.Fatalf("no request should be stored: %v, %v", requests, err)
	}

	if _, err := env.service.Withdraw(ctx, tenant.UserId, decimal.RequireFromString("1.25"), account.Id); err != nil {
		t.Fatalf("Withdraw of whole cents failed: %v", err)
	}
	wallet, err := env.db.GetWalletByUserId(ctx, tenant.UserId)
	if err != nil {
		t.Fatalf("GetWalletByUserId failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.RequireFromString("48.75")) {
		t.Errorf("balance = %s, want 48.75", wallet.Balance)
	}
}

func TestLockDepositOnForeignTenancy(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	_, tenant, tenancy := env.tenancy(t)
	env.fund(t, tenant.UserId, 100)

	stranger := env.profile(t, models.RoleLandlord, "EUR")
	_, err := env.service.LockDeposit(context.Background(), stranger, tenancy.Id, decimal.NewFromInt(10))
	if err == nil {
		t.Fatal("expected lock on another landlord's tenancy to fail")
	}
	env.assertBalance(t, tenant.UserId, 100)
}

package wallet

import (
	"context"
	"errors"
	"testing"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestMoneyRequestInsufficientLandlordBalance(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, landlord.UserId, 50)
	ctx := context.Background()

	request, err := env.service.CreateMoneyRequest(ctx, tenant, tenancy.Id, decimal.NewFromInt(75), "Boiler repair", models.CategoryRepair)
	if err != nil {
		t.Fatalf("CreateMoneyRequest failed: %v", err)
	}
	if request.Currency != "EUR" || request.Status != models.RequestPending {
		t.Errorf("unexpected request %+v", request)
	}

	_, err = env.service.DecideMoneyRequest(ctx, landlord, request.Id, models.DecisionApprove, "")
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	requests, err := env.service.ListMoneyRequests(ctx, tenant)
	if err != nil || len(requests) != 1 || requests[0].Status != models.RequestPending {
		t.Fatalf("request should remain pending: %v, %v", requests, err)
	}
	env.assertBalance(t, landlord.UserId, 50)
}

func TestMoneyRequestApprove(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, landlord.UserId, 200)
	ctx := context.Background()

	request, err := env.service.CreateMoneyRequest(ctx, tenant, tenancy.Id, decimal.NewFromInt(75), "Boiler repair", models.CategoryRepair)
	if err != nil {
		t.Fatalf("CreateMoneyRequest failed: %v", err)
	}

	paid, err := env.service.DecideMoneyRequest(ctx, landlord, request.Id, models.DecisionApprove, "Thanks")
	if err != nil {
		t.Fatalf("DecideMoneyRequest failed: %v", err)
	}
	if paid.Status != models.RequestPaid || paid.LandlordNote != "Thanks" {
		t.Errorf("unexpected request %+v", paid)
	}
	env.assertBalance(t, landlord.UserId, 125)
	env.assertBalance(t, tenant.UserId, 75)

	if _, err := env.service.DecideMoneyRequest(ctx, landlord, request.Id, models.DecisionReject, ""); err == nil {
		t.Fatal("a decided request cannot be decided again")
	}
}

func TestMoneyRequestReject(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	ctx := context.Background()

	request, err := env.service.CreateMoneyRequest(ctx, tenant, tenancy.Id, decimal.NewFromInt(20), "Light bulbs", models.CategoryMaintenance)
	if err != nil {
		t.Fatalf("CreateMoneyRequest failed: %v", err)
	}

	rejected, err := env.service.DecideMoneyRequest(ctx, landlord, request.Id, models.DecisionReject, "Tenant responsibility")
	if err != nil {
		t.Fatalf("DecideMoneyRequest failed: %v", err)
	}
	if rejected.Status != models.RequestRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
}

func TestMoneyRequestValidation(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		amount   decimal.Decimal
		reason   string
		category models.RequestCategory
	}{
		{"zero amount", decimal.Zero, "x", models.CategoryOther},
		{"blank reason", decimal.NewFromInt(5), "  ", models.CategoryOther},
		{"unknown category", decimal.NewFromInt(5), "x", models.RequestCategory("travel")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateMoneyRequest(ctx, tenant, tenancy.Id, tt.amount, tt.reason, tt.category)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := env.service.DecideMoneyRequest(ctx, landlord, "req", models.Decision("maybe"), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown action, got %v", err)
	}
}

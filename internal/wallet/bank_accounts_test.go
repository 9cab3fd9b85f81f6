package wallet

import (
	"context"
	"errors"
	"testing"

	"property-wallet-go/internal/models"
)

func TestBankAccountsDefaultHandling(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleLandlord, "EUR")
	ctx := context.Background()

	first := addAccount(t, env, user.UserId)
	if !first.IsDefault {
		t.Error("first account should be default")
	}
	if first.Iban != "DE89370400440532013000" {
		t.Errorf("IBAN not normalized: %q", first.Iban)
	}

	second, err := env.service.AddBankAccount(ctx, user.UserId, models.BankAccountRequest{
		BankName:          "Barclays",
		AccountHolderName: "Test Holder",
		Iban:              "GB82WEST12345698765432",
	})
	if err != nil {
		t.Fatalf("AddBankAccount failed: %v", err)
	}
	if second.IsDefault {
		t.Error("second account should not be default unless requested")
	}

	if err := env.service.DeleteBankAccount(ctx, user.UserId, first.Id); err != nil {
		t.Fatalf("DeleteBankAccount failed: %v", err)
	}
	accounts, err := env.service.ListBankAccounts(ctx, user.UserId)
	if err != nil {
		t.Fatalf("ListBankAccounts failed: %v", err)
	}
	if len(accounts) != 1 || !accounts[0].IsDefault {
		t.Fatalf("remaining account should be promoted to default: %+v", accounts)
	}
}

func TestAddBankAccountValidation(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleTenant, "EUR")

	tests := []models.BankAccountRequest{
		{BankName: "", AccountHolderName: "A", Iban: "DE89370400440532013000"},
		{BankName: "B", AccountHolderName: "A", Iban: "DE89370400440532013001"},
	}
	for _, req := range tests {
		if _, err := env.service.AddBankAccount(context.Background(), user.UserId, req); !errors.Is(err, ErrValidation) {
			t.Errorf("AddBankAccount(%+v) = %v, want ErrValidation", req, err)
		}
	}

	accounts, _ := env.service.ListBankAccounts(context.Background(), user.UserId)
	if accounts == nil || len(accounts) != 0 {
		t.Errorf("expected empty non-nil list, got %v", accounts)
	}
}

package wallet

import (
	"context"
	"fmt"
	"strings"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"
)

func (s *Service) ListBankAccounts(ctx context.Context, userId string) ([]models.BankAccount, error) {
	accounts, err := s.store.ListBankAccounts(ctx, userId)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.BankAccount{}
	}
	return accounts, nil
}

// AddBankAccount registers a payout destination. The first account a user
// adds becomes the default.
func (s *Service) AddBankAccount(ctx context.Context, userId string, req models.BankAccountRequest) (account *models.BankAccount, err error) {
	defer func() { s.metrics.ObserveOperation("add_bank_account", err) }()

	bankName := strings.TrimSpace(req.BankName)
	holder := strings.TrimSpace(req.AccountHolderName)
	if bankName == "" || holder == "" {
		return nil, fmt.Errorf("%w: bank name and account holder are required", ErrValidation)
	}
	iban := normalizeIban(req.Iban)
	if err := validateIban(iban); err != nil {
		return nil, err
	}

	return s.store.AddBankAccount(ctx, store.AddBankAccountParams{
		UserId:            userId,
		BankName:          bankName,
		AccountHolderName: holder,
		Iban:              iban,
		IsDefault:         req.IsDefault,
	})
}

func (s *Service) DeleteBankAccount(ctx context.Context, userId, accountId string) (err error) {
	defer func() { s.metrics.ObserveOperation("delete_bank_account", err) }()

	if accountId == "" {
		return fmt.Errorf("%w: bank account is required", ErrValidation)
	}
	return s.store.DeleteBankAccount(ctx, userId, accountId)
}

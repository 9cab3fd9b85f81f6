package wallet

import (
	"context"
	"fmt"
	"strings"

	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InitiateDeposit opens a hosted checkout for a top-up and returns its URL.
// The balance is credited later by HandleCheckoutCompleted.
func (s *Service) InitiateDeposit(ctx context.Context, userId string, amount decimal.Decimal, currency string) (url string, err error) {
	defer func() { s.metrics.ObserveOperation("deposit_initiated", err) }()

	if err := requireMinimum(amount, "deposit"); err != nil {
		return "", err
	}

	wallet, err := s.GetWallet(ctx, userId)
	if err != nil {
		return "", err
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = wallet.Currency
	}
	if !s.currencies.Supports(currency) {
		return "", fmt.Errorf("%w: unsupported currency %s", ErrValidation, currency)
	}
	if currency != wallet.Currency {
		return "", fmt.Errorf("%w: wallet holds %s, not %s", ErrValidation, wallet.Currency, currency)
	}

	minorUnits, err := s.currencies.ToMinorUnits(amount, currency)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	customerId, err := s.ensureCustomer(ctx, wallet)
	if err != nil {
		return "", err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		CustomerId: customerId,
		Amount:     minorUnits,
		Currency:   currency,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		Metadata: map[string]string{
			gateway.MetadataType:     gateway.MetadataWalletDeposit,
			gateway.MetadataWalletId: wallet.Id,
			gateway.MetadataUserId:   userId,
		},
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Deposit initiated",
		zap.String("user_id", userId),
		zap.String("wallet_id", wallet.Id),
		zap.String("session_id", session.Id),
		zap.String("amount", amount.String()),
		zap.String("currency", currency))
	return session.Url, nil
}

// ensureCustomer returns the wallet's gateway customer, creating and
// persisting one on first use.
func (s *Service) ensureCustomer(ctx context.Context, wallet *models.Wallet) (string, error) {
	if wallet.ExternalCustomerId != "" {
		return wallet.ExternalCustomerId, nil
	}

	params := gateway.CustomerParams{
		Metadata: map[string]string{gateway.MetadataUserId: wallet.UserId},
	}
	if profile, err := s.store.GetProfile(ctx, wallet.UserId); err == nil {
		params.Email = profile.Email
		params.Name = profile.FullName
	}

	customer, err := s.gateway.CreateCustomer(ctx, params)
	if err != nil {
		return "", err
	}
	if err := s.store.SetExternalCustomerId(ctx, wallet.Id, customer.Id); err != nil {
		return "", fmt.Errorf("failed to store customer reference: %w", err)
	}
	wallet.ExternalCustomerId = customer.Id
	return customer.Id, nil
}

// Withdraw debits the wallet towards one of the caller's bank accounts
func (s *Service) Withdraw(ctx context.Context, userId string, amount decimal.Decimal, bankAccountId string) (record *models.WalletTransaction, err error) {
	defer func() { s.metrics.ObserveOperation("withdraw", err) }()

	if err := requireMinimum(amount, "withdrawal"); err != nil {
		return nil, err
	}
	if bankAccountId == "" {
		return nil, fmt.Errorf("%w: bank account is required", ErrValidation)
	}
	wallet, err := s.GetWallet(ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := s.requireMinorUnits(amount, wallet.Currency, "withdrawal"); err != nil {
		return nil, err
	}

	record, err = s.store.Withdraw(ctx, store.WithdrawParams{
		UserId:        userId,
		BankAccountId: bankAccountId,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, record)
	return record, nil
}

// PayRent moves one period of rent from the tenant to the landlord
func (s *Service) PayRent(ctx context.Context, identity *models.Identity, tenancyId string) (result *store.TransferResult, err error) {
	defer func() { s.metrics.ObserveOperation("pay_rent", err) }()

	if err := requireRole(identity, models.RoleTenant); err != nil {
		return nil, err
	}
	if tenancyId == "" {
		return nil, fmt.Errorf("%w: tenancy is required", ErrValidation)
	}
	if _, err := s.GetWallet(ctx, identity.UserId); err != nil {
		return nil, err
	}

	result, err = s.store.PayRent(ctx, identity.UserId, tenancyId)
	if err != nil {
		return nil, err
	}

	s.committed(ctx, result.Debit, result.Credit)
	return result, nil
}

package wallet

import (
	"context"
	"errors"
	"fmt"

	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/notify"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrValidation = store.ErrValidation
	ErrForbidden  = errors.New("forbidden")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// minimumAmount is the smallest deposit or withdrawal accepted
var minimumAmount = decimal.NewFromInt(1)

// LedgerMirror receives every committed wallet transaction
type LedgerMirror interface {
	RecordTransaction(ctx context.Context, record *models.WalletTransaction) error
}

// Dependencies wires the wallet to its collaborators
type Dependencies struct {
	Store      store.WalletStore
	Gateway    gateway.PaymentGateway
	Mirror     LedgerMirror
	Notifier   notify.Notifier
	Metrics    *metrics.Metrics
	Currencies models.Currencies
}

// Service is the wallet ledger: balances, transaction history, security
// deposits, money requests and gateway-driven crediting.
type Service struct {
	store      store.WalletStore
	gateway    gateway.PaymentGateway
	mirror     LedgerMirror
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	currencies models.Currencies
	cfg        models.WalletConfig
	successURL string
	cancelURL  string
}

func NewService(deps Dependencies, cfg models.WalletConfig, gatewayCfg models.GatewayConfig) (*Service, error) {
	if deps.Store == nil || deps.Gateway == nil {
		return nil, fmt.Errorf("wallet service requires a store and a payment gateway")
	}
	if deps.Mirror == nil || deps.Notifier == nil || deps.Metrics == nil {
		return nil, fmt.Errorf("wallet service requires a mirror, a notifier and metrics")
	}

	currencies := deps.Currencies
	if len(currencies) == 0 {
		currencies = models.DefaultCurrencies()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "EUR"
	}
	if !currencies.Supports(cfg.DefaultCurrency) {
		return nil, fmt.Errorf("default currency %s is not in the currency table", cfg.DefaultCurrency)
	}

	return &Service{
		store:      deps.Store,
		gateway:    deps.Gateway,
		mirror:     deps.Mirror,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		currencies: currencies,
		cfg:        cfg,
		successURL: gatewayCfg.SuccessURL,
		cancelURL:  gatewayCfg.CancelURL,
	}, nil
}

// GetWallet returns the caller's wallet, creating it with the profile
// currency on first access.
func (s *Service) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	wallet, err := s.store.GetWalletByUserId(ctx, userId)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	currency, err := s.profileCurrency(ctx, userId)
	if err != nil {
		return nil, err
	}
	return s.store.GetOrCreateWallet(ctx, userId, currency)
}

func (s *Service) profileCurrency(ctx context.Context, userId string) (string, error) {
	profile, err := s.store.GetProfile(ctx, userId)
	if errors.Is(err, store.ErrNotFound) {
		return s.cfg.DefaultCurrency, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Currency == "" {
		return s.cfg.DefaultCurrency, nil
	}
	return profile.Currency, nil
}

// ListTransactions pages through the caller's history, newest first
func (s *Service) ListTransactions(ctx context.Context, userId string, limit, offset int) (*models.TransactionPage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset cannot be negative", ErrValidation)
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	wallet, err := s.GetWallet(ctx, userId)
	if err != nil {
		return nil, err
	}

	transactions, err := s.store.ListTransactions(ctx, wallet.Id, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountTransactions(ctx, wallet.Id)
	if err != nil {
		return nil, err
	}

	if transactions == nil {
		transactions = []models.WalletTransaction{}
	}
	return &models.TransactionPage{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

// UpdateSettings changes the payout flags; nil leaves a flag unchanged
func (s *Service) UpdateSettings(ctx context.Context, userId string, autoPayout, instantPayout *bool) (*models.Wallet, error) {
	if _, err := s.GetWallet(ctx, userId); err != nil {
		return nil, err
	}
	wallet, err := s.store.UpdateWalletSettings(ctx, userId, autoPayout, instantPayout)
	s.metrics.ObserveOperation("update_settings", err)
	return wallet, err
}

// committed fans a committed transaction out to the ledger mirror and the
// notifier. Neither can fail the operation that produced it.
func (s *Service) committed(ctx context.Context, records ...*models.WalletTransaction) {
	for _, record := range records {
		if record == nil {
			continue
		}
		if err := s.mirror.RecordTransaction(ctx, record); err != nil {
			zap.L().Warn("Failed to mirror transaction",
				zap.String("transaction_id", record.Id),
				zap.Error(err))
		}
		if err := s.notifier.Publish(ctx, notify.EventFromTransaction(record)); err != nil {
			zap.L().Warn("Failed to publish wallet event",
				zap.String("transaction_id", record.Id),
				zap.Error(err))
		}
	}
}

// requireRole rejects callers whose role does not match
func requireRole(identity *models.Identity, role models.Role) error {
	if identity == nil {
		return fmt.Errorf("%w: no identity", ErrForbidden)
	}
	if identity.Role != role {
		return fmt.Errorf("%w: %s only", ErrForbidden, role)
	}
	return nil
}

func requireMinimum(amount decimal.Decimal, operation string) error {
	if amount.LessThan(minimumAmount) {
		return fmt.Errorf("%w: %s amount must be at least %s", ErrValidation, operation, minimumAmount.String())
	}
	return nil
}

// requireMinorUnits rejects amounts finer than the currency's minor unit
func (s *Service) requireMinorUnits(amount decimal.Decimal, currency, operation string) error {
	if _, err := s.currencies.ToMinorUnits(amount, currency); err != nil {
		return fmt.Errorf("%w: %s %v", ErrValidation, operation, err)
	}
	return nil
}

// tenancyFor loads a tenancy the caller is party to. Someone else's tenancy
// reads as missing.
func (s *Service) tenancyFor(ctx context.Context, identity *models.Identity, tenancyId string) (*models.Tenancy, error) {
	tenancy, err := s.store.GetTenancy(ctx, tenancyId)
	if err != nil {
		return nil, err
	}
	party := tenancy.TenantId
	if identity.Role == models.RoleLandlord {
		party = tenancy.LandlordId
	}
	if party != identity.UserId {
		return nil, fmt.Errorf("%w: tenancy %s", store.ErrNotFound, tenancyId)
	}
	return tenancy, nil
}

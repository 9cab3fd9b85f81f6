package invitation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"go.uber.org/zap"
)

var (
	ErrExpired   = errors.New("invitation expired")
	ErrUsed      = fmt.Errorf("%w: invitation already used", store.ErrInvalidState)
	ErrForbidden = errors.New("forbidden")
)

const (
	defaultTTL = 7 * 24 * time.Hour
	tokenBytes = 32
)

type Service struct {
	store      store.WalletStore
	metrics    *metrics.Metrics
	currencies models.Currencies
	currency   string
	ttl        time.Duration
	now        func() time.Time
}

// NewService returns an invitation service. A zero ttl falls back to seven days.
func NewService(walletStore store.WalletStore, m *metrics.Metrics, currencies models.Currencies, cfg models.WalletConfig) *Service {
	ttl := cfg.InvitationTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if currencies == nil {
		currencies = models.DefaultCurrencies()
	}
	currency := strings.ToUpper(cfg.DefaultCurrency)
	if currency == "" {
		currency = "EUR"
	}
	return &Service{
		store:      walletStore,
		metrics:    m,
		currencies: currencies,
		currency:   currency,
		ttl:        ttl,
		now:        time.Now,
	}
}

// WithClock replaces the time source, used by tests to move past expiry
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create issues a single-use token for a prospective tenant of the calling landlord
func (s *Service) Create(ctx context.Context, identity *models.Identity, req models.InvitationRequest) (invitation *models.Invitation, err error) {
	defer func() { s.metrics.ObserveOperation("create_invitation", err) }()

	if identity == nil || identity.Role != models.RoleLandlord {
		return nil, fmt.Errorf("%w: landlord only", ErrForbidden)
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", store.ErrValidation)
	}
	if req.RentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: rent amount cannot be negative", store.ErrValidation)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = identity.Currency
	}
	if currency == "" {
		currency = s.currency
	}
	if !s.currencies.Supports(currency) {
		return nil, fmt.Errorf("%w: unsupported currency %s", store.ErrValidation, currency)
	}
	if _, err := s.currencies.ToMinorUnits(req.RentAmount, currency); err != nil {
		return nil, fmt.Errorf("%w: rent %v", store.ErrValidation, err)
	}

	if req.PropertyId != "" {
		property, err := s.store.GetProperty(ctx, req.PropertyId)
		if err != nil {
			return nil, err
		}
		if property.LandlordId != identity.UserId {
			return nil, fmt.Errorf("%w: property %s", store.ErrNotFound, req.PropertyId)
		}
		if !req.RentAmount.IsPositive() {
			return nil, fmt.Errorf("%w: rent amount is required with a property", store.ErrValidation)
		}
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	return s.store.CreateInvitation(ctx, store.CreateInvitationParams{
		Token:      token,
		LandlordId: identity.UserId,
		Email:      email,
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      strings.TrimSpace(req.Phone),
		PropertyId: req.PropertyId,
		Unit:       strings.TrimSpace(req.Unit),
		RentAmount: req.RentAmount,
		Currency:   currency,
		ExpiresAt:  s.now().Add(s.ttl),
	})
}

// Resolve returns the invitation behind token if it can still be redeemed
func (s *Service) Resolve(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Used {
		return nil, ErrUsed
	}
	if !s.now().Before(invitation.ExpiresAt) {
		return nil, ErrExpired
	}
	return invitation, nil
}

// Consume redeems token for userId. Only one caller can ever succeed; the
// tenancy named by the invitation, if any, is created with it.
func (s *Service) Consume(ctx context.Context, token, userId string) (invitation *models.Invitation, tenancy *models.Tenancy, err error) {
	defer func() { s.metrics.ObserveOperation("consume_invitation", err) }()

	if userId == "" {
		return nil, nil, fmt.Errorf("%w: user is required", store.ErrValidation)
	}
	if _, err := s.Resolve(ctx, token); err != nil {
		return nil, nil, err
	}

	invitation, tenancy, err = s.store.ConsumeInvitation(ctx, store.ConsumeInvitationParams{
		Token:  token,
		UserId: userId,
		UsedAt: s.now(),
	})
	if errors.Is(err, store.ErrInvalidState) {
		zap.L().Info("Invitation redeemed concurrently", zap.String("user_id", userId))
		return nil, nil, ErrUsed
	}
	if err != nil {
		return nil, nil, err
	}
	return invitation, tenancy, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"property-wallet-go/internal/database"
	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/notify"
	"property-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const validSignature = "valid"

// fakeGateway accepts webhooks signed with validSignature and records calls
type fakeGateway struct {
	mu        sync.Mutex
	customers int
	sessions  []gateway.CheckoutParams
	payouts   []gateway.PayoutParams
	payoutErr error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, params gateway.CustomerParams) (*gateway.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return &gateway.Customer{Id: fmt.Sprintf("cus_%d", g.customers), Email: params.Email}, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params gateway.CheckoutParams) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = append(g.sessions, params)
	id := fmt.Sprintf("cs_%d", len(g.sessions))
	return &gateway.CheckoutSession{Id: id, Url: "https://pay.example/" + id}, nil
}

func (g *fakeGateway) CreatePayout(_ context.Context, params gateway.PayoutParams) (*gateway.Payout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payouts = append(g.payouts, params)
	if g.payoutErr != nil {
		return nil, g.payoutErr
	}
	return &gateway.Payout{Id: fmt.Sprintf("po_%d", len(g.payouts)), Status: "paid"}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*gateway.Event, error) {
	if signatureHeader != validSignature {
		return nil, gateway.ErrInvalidSignature
	}
	return gateway.ParseEvent(payload)
}

type recordingMirror struct {
	mu      sync.Mutex
	records []*models.WalletTransaction
}

func (m *recordingMirror) RecordTransaction(_ context.Context, record *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

type testEnv struct {
	service  *Service
	db       *database.Service
	gateway  *fakeGateway
	mirror   *recordingMirror
	notifier *recordingNotifier
}

func setupTestService(t *testing.T, cfg models.WalletConfig) *testEnv {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "wallet.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	env := &testEnv{
		db:       db,
		gateway:  &fakeGateway{},
		mirror:   &recordingMirror{},
		notifier: &recordingNotifier{},
	}
	env.service, err = NewService(Dependencies{
		Store:      db,
		Gateway:    env.gateway,
		Mirror:     env.mirror,
		Notifier:   env.notifier,
		Metrics:    metrics.New(),
		Currencies: models.DefaultCurrencies(),
	}, cfg, models.GatewayConfig{SuccessURL: "https://app.example/ok", CancelURL: "https://app.example/cancel"})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return env
}

func (e *testEnv) profile(t *testing.T, role models.Role, currency string) *models.Identity {
	t.Helper()
	id := uuid.New().String()
	profile, err := e.db.CreateProfile(context.Background(), store.CreateProfileParams{
		Id:       id,
		Email:    role.String() + "-" + id[:8] + "@example.com",
		FullName: "Test " + role.String(),
		Role:     role,
		Currency: currency,
	})
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	return &models.Identity{UserId: profile.Id, Email: profile.Email, Role: profile.Role, Currency: profile.Currency}
}

// tenancy binds a new tenant to a new landlord property
func (e *testEnv) tenancy(t *testing.T) (landlord, tenant *models.Identity, tenancy *models.Tenancy) {
	t.Helper()
	ctx := context.Background()
	landlord = e.profile(t, models.RoleLandlord, "EUR")
	tenant = e.profile(t, models.RoleTenant, "EUR")

	property, err := e.db.CreateProperty(ctx, store.CreatePropertyParams{LandlordId: landlord.UserId, Name: "Canal House"})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}
	tenancy, err = e.db.CreateTenancy(ctx, store.CreateTenancyParams{
		PropertyId: property.Id,
		LandlordId: landlord.UserId,
		TenantId:   tenant.UserId,
		Unit:       "2B",
		RentAmount: decimal.NewFromInt(900),
		Currency:   "EUR",
	})
	if err != nil {
		t.Fatalf("CreateTenancy failed: %v", err)
	}
	return landlord, tenant, tenancy
}

// checkoutPayload builds a checkout.session.completed delivery
func checkoutPayload(t *testing.T, sessionId string, wallet *models.Wallet, amountMinor int64) []byte {
	t.Helper()
	session := gateway.CheckoutSession{
		Id:            sessionId,
		AmountTotal:   amountMinor,
		Currency:      "eur",
		PaymentStatus: "paid",
		Metadata: map[string]string{
			gateway.MetadataType:     gateway.MetadataWalletDeposit,
			gateway.MetadataWalletId: wallet.Id,
			gateway.MetadataUserId:   wallet.UserId,
		},
	}
	object, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	event := gateway.Event{Id: "evt_" + sessionId, Type: gateway.EventCheckoutCompleted}
	event.Data.Object = object
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

// fund credits a user through the webhook path
func (e *testEnv) fund(t *testing.T, userId string, amount int64) {
	t.Helper()
	wallet, err := e.service.GetWallet(context.Background(), userId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	payload := checkoutPayload(t, "cs_"+uuid.New().String(), wallet, amount*100)
	if err := e.service.HandleCheckoutCompleted(context.Background(), payload, validSignature); err != nil {
		t.Fatalf("HandleCheckoutCompleted failed: %v", err)
	}
}

func (e *testEnv) assertBalance(t *testing.T, userId string, want int64) {
	t.Helper()
	wallet, err := e.db.GetWalletByUserId(context.Background(), userId)
	if err != nil {
		t.Fatalf("GetWalletByUserId failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("balance = %s, want %d", wallet.Balance, want)
	}
}

func TestNewServiceRejectsUnknownDefaultCurrency(t *testing.T) {
	_, err := NewService(Dependencies{
		Store:    &database.Service{},
		Gateway:  &fakeGateway{},
		Mirror:   &recordingMirror{},
		Notifier: &recordingNotifier{},
		Metrics:  metrics.New(),
	}, models.WalletConfig{DefaultCurrency: "XYZ"}, models.GatewayConfig{})
	if err == nil {
		t.Fatal("expected error for unsupported default currency")
	}
}

func TestGetWalletUsesProfileCurrency(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleTenant, "GBP")

	wallet, err := env.service.GetWallet(context.Background(), user.UserId)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if wallet.Currency != "GBP" || !wallet.Balance.IsZero() {
		t.Errorf("unexpected wallet %+v", wallet)
	}

	again, err := env.service.GetWallet(context.Background(), user.UserId)
	if err != nil || again.Id != wallet.Id {
		t.Fatalf("second GetWallet returned %v, %v", again, err)
	}
}

func TestGetWalletWithoutProfileUsesDefault(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{DefaultCurrency: "CHF"})

	wallet, err := env.service.GetWallet(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if wallet.Currency != "CHF" {
		t.Errorf("Currency = %s, want CHF", wallet.Currency)
	}
}

func TestGetWalletConcurrentFirstAccess(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleTenant, "EUR")

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wallet, err := env.service.GetWallet(context.Background(), user.UserId)
			if err != nil {
				t.Errorf("GetWallet failed: %v", err)
				return
			}
			ids[i] = wallet.Id
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent first access produced different wallets: %v", ids)
		}
	}
}

func TestListTransactionsPaging(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleTenant, "EUR")
	for i := 0; i < 3; i++ {
		env.fund(t, user.UserId, 10)
	}
	ctx := context.Background()

	page, err := env.service.ListTransactions(ctx, user.UserId, 0, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if page.Limit != defaultPageSize || page.Total != 3 || len(page.Transactions) != 3 {
		t.Errorf("unexpected page %+v", page)
	}

	page, err = env.service.ListTransactions(ctx, user.UserId, 1000, 2)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if page.Limit != maxPageSize || len(page.Transactions) != 1 {
		t.Errorf("expected capped limit and one row, got limit=%d rows=%d", page.Limit, len(page.Transactions))
	}

	if _, err := env.service.ListTransactions(ctx, user.UserId, 10, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative offset, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	user := env.profile(t, models.RoleLandlord, "EUR")
	on := true

	wallet, err := env.service.UpdateSettings(context.Background(), user.UserId, &on, nil)
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !wallet.AutoPayout || wallet.InstantPayout {
		t.Errorf("unexpected flags auto=%v instant=%v", wallet.AutoPayout, wallet.InstantPayout)
	}
}

func TestRoleChecks(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	ctx := context.Background()

	if _, err := env.service.ReleaseDeposit(ctx, tenant, "dep", nil, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("tenant release: expected ErrForbidden, got %v", err)
	}
	if _, err := env.service.LockDeposit(ctx, tenant, tenancy.Id, decimal.NewFromInt(5)); !errors.Is(err, ErrForbidden) {
		t.Errorf("tenant lock: expected ErrForbidden, got %v", err)
	}
	if _, err := env.service.CreateMoneyRequest(ctx, landlord, tenancy.Id, decimal.NewFromInt(5), "x", models.CategoryOther); !errors.Is(err, ErrForbidden) {
		t.Errorf("landlord create request: expected ErrForbidden, got %v", err)
	}
	if _, err := env.service.DecideMoneyRequest(ctx, tenant, "req", models.DecisionApprove, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("tenant decide: expected ErrForbidden, got %v", err)
	}
	if _, err := env.service.PayRent(ctx, landlord, tenancy.Id); !errors.Is(err, ErrForbidden) {
		t.Errorf("landlord pay rent: expected ErrForbidden, got %v", err)
	}
	if _, err := env.service.ListMoneyRequests(ctx, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous list: expected ErrForbidden, got %v", err)
	}
}

func TestPayRent(t *testing.T) {
	env := setupTestService(t, models.WalletConfig{})
	landlord, tenant, tenancy := env.tenancy(t)
	env.fund(t, tenant.UserId, 1000)

	result, err := env.service.PayRent(context.Background(), tenant, tenancy.Id)
	if err != nil {
		t.Fatalf("PayRent failed: %v", err)
	}
	if result.Debit.Type != models.TxRentPaid || result.Credit.Type != models.TxRentReceived {
		t.Errorf("unexpected legs %s / %s", result.Debit.Type, result.Credit.Type)
	}
	env.assertBalance(t, tenant.UserId, 100)
	env.assertBalance(t, landlord.UserId, 900)
}

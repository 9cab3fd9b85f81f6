package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetOrCreateWallet_CreatesEmptyWallet(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet, err := service.GetOrCreateWallet(ctx, "user1", "EUR")
	if err != nil {
		t.Fatalf("GetOrCreateWallet failed: %v", err)
	}

	if !wallet.Balance.IsZero() {
		t.Errorf("Expected zero balance, got %s", wallet.Balance.String())
	}
	if wallet.Currency != "EUR" {
		t.Errorf("Expected currency EUR, got %s", wallet.Currency)
	}

	again, err := service.GetOrCreateWallet(ctx, "user1", "USD")
	if err != nil {
		t.Fatalf("Second GetOrCreateWallet failed: %v", err)
	}
	if again.Id != wallet.Id {
		t.Errorf("Expected the same wallet %s, got %s", wallet.Id, again.Id)
	}
	if again.Currency != "EUR" {
		t.Errorf("Existing wallet currency must not change, got %s", again.Currency)
	}
}

func TestGetOrCreateWallet_ConcurrentCallsCreateOneWallet(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	const callers = 16

	ids := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wallet, err := service.GetOrCreateWallet(ctx, "racer", "EUR")
			errs[i] = err
			if err == nil {
				ids[i] = wallet.Id
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Caller %d failed: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Errorf("Caller %d got wallet %s, expected %s", i, ids[i], ids[0])
		}
	}

	wallets, err := service.ListWallets(ctx)
	if err != nil {
		t.Fatalf("ListWallets failed: %v", err)
	}
	if len(wallets) != 1 {
		t.Errorf("Expected exactly one wallet row, got %d", len(wallets))
	}
}

func TestGetWalletByUserId_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetWalletByUserId(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestUpdateWalletSettings_OnlyTouchesProvidedFlags(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	fund(t, service, "user1", 0)

	on := true
	wallet, err := service.UpdateWalletSettings(ctx, "user1", &on, nil)
	if err != nil {
		t.Fatalf("UpdateWalletSettings failed: %v", err)
	}
	if !wallet.AutoPayout || wallet.InstantPayout {
		t.Errorf("Expected auto_payout only, got auto=%v instant=%v", wallet.AutoPayout, wallet.InstantPayout)
	}

	_, err = service.UpdateWalletSettings(ctx, "user1", nil, &on)
	if err != nil {
		t.Fatalf("UpdateWalletSettings failed: %v", err)
	}
	stored := balanceOf(t, service, "user1")
	if !stored.AutoPayout || !stored.InstantPayout {
		t.Errorf("Expected both flags persisted, got auto=%v instant=%v", stored.AutoPayout, stored.InstantPayout)
	}
}

func TestSetExternalCustomerId(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := fund(t, service, "user1", 0)

	if err := service.SetExternalCustomerId(ctx, wallet.Id, "cus_123"); err != nil {
		t.Fatalf("SetExternalCustomerId failed: %v", err)
	}
	if got := balanceOf(t, service, "user1").ExternalCustomerId; got != "cus_123" {
		t.Errorf("Expected customer cus_123, got %q", got)
	}

	if err := service.SetExternalCustomerId(ctx, "missing", "cus_1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown wallet, got: %v", err)
	}
}

func TestListTransactions_Pagination(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := fund(t, service, "user1", 10)
	for i := 0; i < 4; i++ {
		fund(t, service, "user1", 10)
	}

	count, err := service.CountTransactions(ctx, wallet.Id)
	if err != nil {
		t.Fatalf("CountTransactions failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("Expected 5 transactions, got %d", count)
	}

	page, err := service.ListTransactions(ctx, wallet.Id, 2, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page))
	}

	rest, err := service.ListTransactions(ctx, wallet.Id, 10, 2)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(rest) != 3 {
		t.Errorf("Expected remaining 3, got %d", len(rest))
	}

	seen := map[string]bool{}
	for _, tx := range append(page, rest...) {
		if seen[tx.Id] {
			t.Errorf("Transaction %s returned twice", tx.Id)
		}
		seen[tx.Id] = true
	}
}

func TestReconcileWallet(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := fund(t, service, "user1", 100)
	fund(t, service, "user1", 50)

	result, err := service.ReconcileWallet(ctx, wallet.Id)
	if err != nil {
		t.Fatalf("ReconcileWallet failed: %v", err)
	}
	if !result.Matches() {
		t.Errorf("Expected balance to reconcile, got balance=%s calculated=%s", result.Balance, result.Calculated)
	}
	if !result.Calculated.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected calculated 150, got %s", result.Calculated.String())
	}

	// Drift the balance behind the ledger's back
	if _, err := service.db.ExecContext(ctx, `UPDATE wallets SET balance = '10' WHERE id = ?`, wallet.Id); err != nil {
		t.Fatalf("Failed to drift balance: %v", err)
	}
	result, err = service.ReconcileWallet(ctx, wallet.Id)
	if err != nil {
		t.Fatalf("ReconcileWallet failed: %v", err)
	}
	if result.Matches() {
		t.Errorf("Expected mismatch after drift")
	}
}

package formance

import (
	"math/big"
	"testing"
	"time"

	"property-wallet-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func testMirror() *Mirror {
	return &Mirror{ledger: "test", precision: map[string]int32{"EUR": 2, "JPY": 0}}
}

func TestFormanceAsset(t *testing.T) {
	m := testMirror()
	tests := []struct {
		currency string
		want     string
	}{
		{"EUR", "EUR/2"},
		{"JPY", "JPY/0"},
		{"CHF", "CHF/2"}, // default precision
	}
	for _, tt := range tests {
		if got := m.formanceAsset(tt.currency); got != tt.want {
			t.Errorf("formanceAsset(%q) = %q, want %q", tt.currency, got, tt.want)
		}
	}
}

func TestBigIntToDecimal(t *testing.T) {
	result := bigIntToDecimal(big.NewInt(12345), 2)
	if !result.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("expected 123.45, got %s", result.String())
	}

	result = bigIntToDecimal(nil, 2)
	if !result.IsZero() {
		t.Errorf("expected 0, got %s", result.String())
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"EUR/2": {Input: big.NewInt(1000), Output: big.NewInt(250)},
	}
	if got := volumeBalance(vols, "EUR/2"); got.Int64() != 750 {
		t.Errorf("expected 750, got %s", got)
	}
	if got := volumeBalance(vols, "USD/2"); got != nil {
		t.Errorf("expected nil for missing asset, got %s", got)
	}
}

func TestIsConflictError(t *testing.T) {
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
}

func TestPostingForCredit(t *testing.T) {
	m := testMirror()
	record := &models.WalletTransaction{
		Id:        "tx1",
		WalletId:  "w1",
		UserId:    "u1",
		Type:      models.TxDeposit,
		Amount:    decimal.RequireFromString("500.5"),
		Currency:  "EUR",
		Status:    models.TxStatusCompleted,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	postTx, ok := m.postingFor(record)
	if !ok {
		t.Fatal("expected a posting")
	}
	if *postTx.Reference != "tx1" {
		t.Errorf("Reference = %q", *postTx.Reference)
	}
	if postTx.Script.Plain != numscriptCredit {
		t.Error("expected credit script")
	}
	if got := postTx.Script.Vars["amount"]; got != "50050" {
		t.Errorf("amount = %q, want 50050", got)
	}
	if postTx.Timestamp == nil || !postTx.Timestamp.Equal(record.CreatedAt) {
		t.Errorf("unexpected timestamp %v", postTx.Timestamp)
	}
}

func TestPostingForDebitAndReversal(t *testing.T) {
	m := testMirror()
	record := &models.WalletTransaction{
		Id:       "tx2",
		WalletId: "w1",
		Type:     models.TxPayout,
		Amount:   decimal.RequireFromString("-40"),
		Currency: "EUR",
		Status:   models.TxStatusPending,
	}

	postTx, ok := m.postingFor(record)
	if !ok || postTx.Script.Plain != numscriptDebit {
		t.Fatal("expected debit script")
	}
	if postTx.Script.Vars["platform"] != "payout" || postTx.Script.Vars["amount"] != "4000" {
		t.Errorf("unexpected vars %v", postTx.Script.Vars)
	}

	record.Status = models.TxStatusFailed
	postTx, ok = m.postingFor(record)
	if !ok || postTx.Script.Plain != numscriptReversal {
		t.Fatal("expected reversal script for failed debit")
	}
	if *postTx.Reference != "tx2-reversal" {
		t.Errorf("Reference = %q", *postTx.Reference)
	}
}

func TestPostingForSkipped(t *testing.T) {
	m := testMirror()
	tests := []models.WalletTransaction{
		{Id: "a", Amount: decimal.Zero, Currency: "EUR", Status: models.TxStatusCompleted},
		{Id: "b", Amount: decimal.NewFromInt(5), Currency: "EUR", Status: models.TxStatusCancelled},
		{Id: "c", Amount: decimal.NewFromInt(5), Currency: "EUR", Status: models.TxStatusFailed},
	}
	for _, record := range tests {
		if _, ok := m.postingFor(&record); ok {
			t.Errorf("expected %s to be skipped", record.Id)
		}
	}
}

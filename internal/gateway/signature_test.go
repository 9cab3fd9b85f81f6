package gateway

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "whsec_test"
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		header  string
		secret  string
		wantErr bool
	}{
		{"valid", Sign(payload, secret, now), secret, false},
		{"valid within tolerance", Sign(payload, secret, now.Add(-2*time.Minute)), secret, false},
		{"wrong secret", Sign(payload, "other", now), secret, true},
		{"too old", Sign(payload, secret, now.Add(-10*time.Minute)), secret, true},
		{"future", Sign(payload, secret, now.Add(10*time.Minute)), secret, true},
		{"empty header", "", secret, true},
		{"missing signature", "t=1700000000", secret, true},
		{"malformed timestamp", "t=abc,v1=deadbeef", secret, true},
		{"no secret configured", Sign(payload, secret, now), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifySignature(payload, tt.header, tt.secret, 5*time.Minute, now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSignature) {
					t.Fatalf("expected ErrInvalidSignature, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := Sign([]byte(`{"amount":100}`), "s", now)

	err := verifySignature([]byte(`{"amount":900}`), header, "s", time.Minute, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureAcceptsAnyListedSignature(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Unix(1_700_000_000, 0)
	valid := Sign(payload, "s", now)

	// Rolled secrets produce several v1 entries
	header := "t=1700000000,v1=0000," + strings.TrimPrefix(valid, "t=1700000000,")
	if err := verifySignature(payload, header, "s", time.Minute, now); err != nil {
		t.Fatalf("expected a match among signatures, got %v", err)
	}
}

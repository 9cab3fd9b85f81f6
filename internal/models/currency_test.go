package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	currencies := Currencies{"EUR": 2, "JPY": 0}
	tests := []struct {
		amount  string
		code    string
		want    int64
		wantErr bool
	}{
		{"500", "EUR", 50000, false},
		{"12.34", "eur", 1234, false},
		{"1.005", "EUR", 0, true},
		{"150", "JPY", 150, false},
		{"1.5", "JPY", 0, true},
	}
	for _, tt := range tests {
		got, err := currencies.ToMinorUnits(decimal.RequireFromString(tt.amount), tt.code)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ToMinorUnits(%s, %s) expected error", tt.amount, tt.code)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ToMinorUnits(%s, %s) = %d, %v; want %d", tt.amount, tt.code, got, err, tt.want)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	currencies := DefaultCurrencies()
	if got := currencies.FromMinorUnits(50000, "EUR"); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("FromMinorUnits = %s, want 500", got)
	}
}

func TestSupports(t *testing.T) {
	currencies := DefaultCurrencies()
	if !currencies.Supports("eur") {
		t.Error("expected EUR to be supported case-insensitively")
	}
	if currencies.Supports("XYZ") {
		t.Error("XYZ should not be supported")
	}
	if got := currencies.Codes(); len(got) != 4 || got[0] != "CHF" {
		t.Errorf("Codes() = %v", got)
	}
}

package common

import (
	"testing"

	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	currencies := models.Currencies{"EUR": 2, "JPY": 0}

	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "EUR", "0.00 EUR"},
		{"1250", "EUR", "1,250.00 EUR"},
		{"-75.5", "EUR", "-75.50 EUR"},
		{"1234567.891", "EUR", "1,234,567.89 EUR"},
		{"999", "JPY", "999 JPY"},
		{"1000", "JPY", "1,000 JPY"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.amount), tt.currency, currencies)
		if got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies maps ISO 4217 codes to their minor-unit exponent
type Currencies map[string]int32

// DefaultCurrencies is used when no currency file is present
func DefaultCurrencies() Currencies {
	return Currencies{"EUR": 2, "USD": 2, "GBP": 2, "CHF": 2}
}

func (c Currencies) Supports(code string) bool {
	_, ok := c[strings.ToUpper(code)]
	return ok
}

// Precision returns the exponent for code, or 2 when unknown
func (c Currencies) Precision(code string) int32 {
	if p, ok := c[strings.ToUpper(code)]; ok {
		return p
	}
	return 2
}

// ToMinorUnits converts amount into an integer count of minor units.
// Amounts with more decimals than the currency allows are rejected.
func (c Currencies) ToMinorUnits(amount decimal.Decimal, code string) (int64, error) {
	shifted := amount.Shift(c.Precision(code))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimals for %s", amount.String(), c.Precision(code), code)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", amount.String())
	}
	return shifted.IntPart(), nil
}

func (c Currencies) FromMinorUnits(units int64, code string) decimal.Decimal {
	return decimal.New(units, -c.Precision(code))
}

// Codes returns the supported codes in sorted order
func (c Currencies) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

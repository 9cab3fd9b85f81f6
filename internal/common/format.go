/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"fmt"
	"strings"
	"time"

	"property-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

const reportWidth = 72

// PrintHeader prints a title between two rules
func PrintHeader(title string) {
	fmt.Println("\n" + strings.Repeat("=", reportWidth))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", reportWidth))
}

// PrintFooter closes a report
func PrintFooter(message string) {
	fmt.Println("\n" + strings.Repeat("=", reportWidth))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", reportWidth) + "\n")
}

// BoxPrefix returns the tree prefix for a list item
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "├  "
}

// BoxDetailPrefix returns the prefix for lines nested under a list item
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatMoney renders an amount at the currency's precision, e.g. "1,250.00 EUR"
func FormatMoney(amount decimal.Decimal, currency string, currencies models.Currencies) string {
	fixed := amount.StringFixed(currencies.Precision(currency))

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, fraction, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	if fraction != "" {
		return fmt.Sprintf("%s%s.%s %s", sign, grouped.String(), fraction, currency)
	}
	return fmt.Sprintf("%s%s %s", sign, grouped.String(), currency)
}

// FormatTransaction renders one history line for the CLI reports
func FormatTransaction(tx models.WalletTransaction, currencies models.Currencies) string {
	return fmt.Sprintf("%s  %-24s %18s  %-9s %s",
		tx.CreatedAt.Format(time.DateTime),
		tx.Type,
		FormatMoney(tx.Amount, tx.Currency, currencies),
		tx.Status,
		tx.Description)
}

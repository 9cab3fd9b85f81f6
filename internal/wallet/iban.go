package wallet

import (
	"fmt"
	"regexp"
	"strings"
)

var ibanFormat = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)

// normalizeIban strips separators and uppercases the account number
func normalizeIban(iban string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(iban)))
}

// validateIban checks the shape and the ISO 13616 mod-97 checksum
func validateIban(iban string) error {
	if !ibanFormat.MatchString(iban) {
		return fmt.Errorf("%w: malformed IBAN", ErrValidation)
	}
	if !passesMod97(iban) {
		return fmt.Errorf("%w: IBAN checksum mismatch", ErrValidation)
	}
	return nil
}

// passesMod97 moves the country code and check digits to the end, maps
// letters to 10..35 and requires the resulting number to be 1 mod 97.
func passesMod97(iban string) bool {
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			remainder = (remainder*100 + int(c-'A') + 10) % 97
		default:
			return false
		}
	}
	return remainder == 1
}

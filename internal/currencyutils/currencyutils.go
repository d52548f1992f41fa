// Package currencyutils converts between textual amounts and decimal values.
package currencyutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RupeeSymbol prefixes amounts in human-readable output.
const RupeeSymbol = "₹"

var errEmptyAmount = errors.New("empty amount")

// ParseAmount converts a captured amount such as "1,500.00" or "3,200" into a
// decimal. Commas are thousands separators and are dropped; anything else that
// is not a plain decimal number is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	clean := StripThousandsSeparators(amountStr)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, errEmptyAmount)
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StripThousandsSeparators removes grouping commas and surrounding whitespace.
func StripThousandsSeparators(amountStr string) string {
	return strings.TrimSpace(strings.ReplaceAll(amountStr, ",", ""))
}

// FormatAmount renders amount with two decimals and comma thousands grouping,
// prefixed by symbol, e.g. "₹15,250.50".
func FormatAmount(amount decimal.Decimal, symbol string) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + symbol + grouped.String() + "." + frac
}

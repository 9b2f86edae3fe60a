package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal accepts common user-formatted amount strings like:
// - "20,000"
// - "USD 20,000"
// - "-1,234.50"
// - "$ 950"
//
// Keep digits, '.', and a leading '-' only.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	s = strings.ReplaceAll(s, ",", "")

	neg := false
	if strings.HasSuffix(s, "-") {
		// Trailing-minus accounting style.
		neg = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}

	// Strip everything except digits and '.'. Drops currency markers
	// regardless of where they appear; a '-' ahead of the first digit
	// ("-20,000", "USD -20,000") still reads as a sign.
	var b strings.Builder
	b.Grow(len(s) + 1)
	dots := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '.' {
			dots++
			b.WriteRune(r)
		} else if r == '-' && b.Len() == 0 && dots == 0 {
			neg = true
		}
	}
	clean := b.String()
	if clean == "" || clean == "." || dots > 1 {
		return decimal.Zero, fmt.Errorf("invalid amount: %q", raw)
	}
	if neg {
		clean = "-" + clean
	}

	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %q", raw)
	}
	return val, nil
}

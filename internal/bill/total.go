package bill

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SanitizePrice converts a freeform price string into a decimal. Every rune
// that is not an ASCII digit, '.', or '-' is stripped ("Rs 12.00" and
// "$12.00" both become 12). Anything that still fails to parse contributes
// zero; the function never fails.
func SanitizePrice(raw string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ComputeTotal sums the sanitized prices of items in order and formats the
// result with exactly two fraction digits, rounding half away from zero.
// Negative prices are summed as-is so discount lines subtract. An empty list
// totals "0.00".
func ComputeTotal(items []LineItem) string {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(SanitizePrice(item.Price))
	}
	return sum.StringFixed(2)
}

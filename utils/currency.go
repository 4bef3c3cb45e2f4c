package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency memformat nominal ke format "15.000 đ"
// Example: 1250000 -> "1.250.000 đ"
func FormatCurrency(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	integerPart := amount.Abs().Round(0).StringFixed(0)

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := strings.Join(groups, ".") + " đ"
	if neg {
		out = "-" + out
	}
	return out
}

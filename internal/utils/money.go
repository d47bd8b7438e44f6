package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of minor-unit digits every amount is kept to
const CentPlaces = 2

// RoundUpCents converts f to a decimal using its exact binary value and
// rounds away from zero to whole cents. 12.3400000001 becomes 12.35.
func RoundUpCents(f float64) decimal.Decimal {
	exact := new(big.Float).SetFloat64(f).Text('f', 80)
	return decimal.RequireFromString(exact).RoundUp(CentPlaces)
}

// RandomAmount draws uniformly from [min, max] and rounds up to cents.
// The result never falls outside the bounds when both are whole cents.
func RandomAmount(rng *Random, min, max decimal.Decimal) decimal.Decimal {
	if !min.LessThan(max) {
		return min.RoundUp(CentPlaces)
	}
	lo, _ := min.Float64()
	hi, _ := max.Float64()
	amount := RoundUpCents(rng.Float64Range(lo, hi))
	if amount.GreaterThan(max) {
		return max
	}
	if amount.LessThan(min) {
		return min
	}
	return amount
}

// FormatAmount renders a value with exactly two decimals, e.g. "969.25"
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}

// FormatMoney renders a value with a symbol and thousands separators,
// e.g. "$1,234.50" or "-$3.00"
func FormatMoney(d decimal.Decimal, symbol string) string {
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(CentPlaces)

	whole, frac, _ := strings.Cut(fixed, ".")
	result := symbol + formatWithSeparator(whole, ",") + "." + frac
	if negative {
		result = "-" + result
	}
	return result
}

// formatWithSeparator adds thousands separators to a string of digits
func formatWithSeparator(digits string, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}

	var result strings.Builder
	startOffset := len(digits) % 3
	if startOffset == 0 {
		startOffset = 3
	}

	result.WriteString(digits[:startOffset])
	for i := startOffset; i < len(digits); i += 3 {
		result.WriteString(sep)
		result.WriteString(digits[i : i+3])
	}

	return result.String()
}

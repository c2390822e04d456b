// Package format renders amounts for human-readable output.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := groupThousands(d.Abs().StringFixed(2))
	if d.IsNegative() && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := groupThousands(d.Abs().StringFixed(2))
	if d.IsNegative() && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Decimal returns the shortest exact decimal form of amount, e.g. 0.0021 stays
// "0.0021" rather than being rounded to cents.
func Decimal(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// Percent renders a 0-100 value with two decimals and a percent sign.
func Percent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2) + "%"
}

func groupThousands(fixed string) string {
	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

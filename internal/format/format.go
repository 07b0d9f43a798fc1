package format

import (
	"github.com/shopspring/decimal"
)

// USD formats an amount as dollars with two decimals and no grouping.
// Example: USD(decimal.RequireFromString("1279.5")) => "$1279.50"
func USD(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

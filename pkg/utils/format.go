// Package utils provides shared utility functions.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols maps ISO codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// CurrencySymbol returns the symbol for an ISO currency code, or the code
// followed by a space when unknown.
func CurrencySymbol(currency string) string {
	code := strings.ToUpper(currency)
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	if code == "" {
		return "$"
	}
	return code + " "
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatMoney formats an amount with thousands separators and two decimals,
// e.g. -$1,234.50.
func FormatMoney(amount float64, currency string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	str := d.StringFixed(2)
	parts := strings.SplitN(str, ".", 2)
	result := CurrencySymbol(currency) + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPnL formats P&L with an explicit sign.
func FormatPnL(pnl float64, currency string) string {
	formatted := FormatMoney(pnl, currency)
	if decimal.NewFromFloat(pnl).Round(2).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with two decimals.
func FormatPercent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2) + "%"
}

// FormatRatio formats a ratio such as risk-reward or profit factor.
func FormatRatio(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// groupThousands inserts commas every three digits.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Package money rounds and formats decimal amounts by ISO 4217 minor units.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const defaultMinorUnits = 2

// minorUnits lists currencies whose exponent differs from two.
var minorUnits = map[string]int32{
	"BHD": 3,
	"BIF": 0,
	"CLP": 0,
	"DJF": 0,
	"GNF": 0,
	"IQD": 3,
	"ISK": 0,
	"JOD": 3,
	"JPY": 0,
	"KMF": 0,
	"KRW": 0,
	"KWD": 3,
	"LYD": 3,
	"OMR": 3,
	"PYG": 0,
	"RWF": 0,
	"TND": 3,
	"UGX": 0,
	"VND": 0,
	"VUV": 0,
	"XAF": 0,
	"XOF": 0,
	"XPF": 0,
}

var hundred = decimal.NewFromInt(100)

// Precision returns the number of minor-unit digits for currency.
func Precision(currency string) int32 {
	if p, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return p
	}

	return defaultMinorUnits
}

// Round rounds half away from zero to the currency precision.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(Precision(currency))
}

// Format renders amount with exactly the currency precision.
func Format(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(Precision(currency))
}

// Percent returns amount * percent / 100, unrounded.
func Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

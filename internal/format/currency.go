// Package format renders amounts for display.
package format

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Currency formats v as Colombian pesos, "$ 1.234.567", with the given
// number of fraction digits separated by a comma.
func Currency(v float64, fractionDigits int) string {
	if fractionDigits < 0 {
		fractionDigits = 0
	}
	pattern := "#.###,"
	if fractionDigits > 0 {
		pattern += strings.Repeat("#", fractionDigits)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	return sign + "$ " + humanize.FormatFloat(pattern, v)
}

// Amount formats a transaction amount with its sign: income positive,
// expense negative.
func Amount(v float64, income bool) string {
	if income {
		return "+" + Currency(v, 0)
	}
	return Currency(-v, 0)
}

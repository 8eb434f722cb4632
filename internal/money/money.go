// Package money formats rand amounts for display.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders v as a rand amount with thousands separators, e.g. "R1,234.50".
func Format(v float64) string {
	if v < 0 {
		return "-" + Format(-v)
	}
	return printer.Sprintf("R%.2f", math.Round(v*100)/100)
}

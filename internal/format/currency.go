// Package format renders monetary amounts for user-facing step text.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Euro formats an amount as a whole-euro figure with thousands separators,
// e.g. 415000 → "€415,000".
func Euro(amount float64) string {
	return printer.Sprintf("€%v", number.Decimal(math.Round(amount), number.MaxFractionDigits(0)))
}

// EuroMonthly formats a monthly contribution, e.g. "€1,000/month".
func EuroMonthly(amount float64) string {
	return Euro(amount) + "/month"
}

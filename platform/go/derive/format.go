package derive

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders whole currency units with thousands separators, e.g. "$2,500".
func FormatAmount(amount int64) string {
	return printer.Sprintf("$%d", amount)
}

// FormatRent renders "$2,500/month", or "N/A" when the property has no active contract.
func FormatRent(amount int64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return FormatAmount(amount) + "/month"
}

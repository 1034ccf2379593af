package catalog

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"NGN": "₦",
	"JPY": "¥",
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders amount with its currency symbol and two decimals,
// e.g. "$10.00". Unknown currencies fall back to the ISO code.
func FormatPrice(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return printer.Sprintf("%.2f", amount)
	}
	iso := unit.String()
	if symbol, ok := currencySymbols[iso]; ok {
		return symbol + printer.Sprintf("%.2f", amount)
	}
	return iso + " " + printer.Sprintf("%.2f", amount)
}

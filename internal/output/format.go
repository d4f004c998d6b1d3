package output

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"RUB": "₽",
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a fare with thousands separators and the currency
// symbol, e.g. "₹4,200" or "₹3,100.50". Unknown currencies are suffixed.
func FormatAmount(value float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	var amount string
	if value == math.Trunc(value) {
		amount = amountPrinter.Sprintf("%d", int64(value))
	} else {
		amount = amountPrinter.Sprintf("%.2f", value)
	}

	if sym, ok := currencySymbols[currency]; ok {
		if strings.HasPrefix(amount, "-") {
			return "-" + sym + amount[1:]
		}
		return sym + amount
	}
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}

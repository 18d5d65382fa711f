package report

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money renders whole roubles with space-grouped thousands: 28000 -> "28 000₽".
func Money(amount int64) string {
	return strings.ReplaceAll(printer.Sprintf("%d", amount), ",", " ") + "₽"
}

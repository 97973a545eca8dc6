package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/brightsupport/invoice-engine/calendar"
)

var auPrinter = message.NewPrinter(language.MustParse("en-AU"))

// FormatCurrency renders an amount as Australian dollars, e.g. "$1,234.56".
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + "$" + auPrinter.Sprintf("%.2f", rounded.InexactFloat64())
}

// FormatQuantity renders hours or km without trailing zeros ("8", "27.5").
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// FormatDates joins dates in the short dd/mm/yy form.
func FormatDates(dates []calendar.Date) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(calendar.ShortLayout)
	}
	return strings.Join(parts, ", ")
}

// FormatTravelDates renders the travel log as "dd/mm/yy: Nkm" segments.
func FormatTravelDates(days []TravelDay) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%s: %skm", d.Date.Format(calendar.ShortLayout), FormatQuantity(d.Km))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

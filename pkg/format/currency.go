// Package format renders amounts for people: grouped digits, locale decimal
// separators and currency symbols.
package format

import (
	"math"

	"github.com/iwvelando/dream-calculator/pkg/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Language resolves a configured language name such as "ru" into a tag.
// Anything unrecognized falls back to English.
func Language(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ru":
		return language.Russian
	default:
		return language.English
	}
}

// Number returns amount with two decimals and locale grouping, e.g. "1,234.56".
func Number(tag language.Tag, amount float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", amount)
}

// Money returns amount prefixed with the currency symbol, e.g. "-$1,234.56".
func Money(tag language.Tag, code string, amount float64) string {
	formatted := currency.Symbol(code) + Number(tag, math.Abs(amount))
	if amount < 0 {
		return "-" + formatted
	}
	return formatted
}

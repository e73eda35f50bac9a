package numerals

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ToLatin maps Persian (U+06F0..U+06F9) and Arabic-Indic (U+0660..U+0669)
// digits to their ASCII counterparts. Everything else is left alone.
func ToLatin(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}

// ToPersian maps ASCII digits to Persian digits.
func ToPersian(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return '۰' + (r - '0')
		}
		return r
	}, s)
}

// NormalizeDecimal prepares user-typed numeric text for parsing: digits are
// mapped to ASCII and the Persian decimal separator becomes '.'. Thousands
// separators, Persian '٬' and Latin ',', are dropped, so "1,000" is 1000.
func NormalizeDecimal(s string) string {
	s = ToLatin(strings.TrimSpace(s))
	return strings.NewReplacer("٫", ".", "٬", "", ",", "").Replace(s)
}

var faPrinter = message.NewPrinter(language.Persian)

// FormatAmount renders a money amount for display in the fa-IR locale,
// rounded to a whole number.
func FormatAmount(d decimal.Decimal) string {
	return faPrinter.Sprint(number.Decimal(d.Round(0).IntPart()))
}

// FormatQuantity renders a quantity or rate with up to two fraction digits.
func FormatQuantity(d decimal.Decimal) string {
	return faPrinter.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

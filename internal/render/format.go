package render

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// maxExactDollars bounds amounts that round-trip through int64 exactly.
const maxExactDollars = 1 << 53

// FormatCurrency renders whole US dollars with grouping separators,
// e.g. "$999,999". Cents are rounded half away from zero.
func FormatCurrency(v float64) string {
	if math.Abs(v) < maxExactDollars {
		n := int64(math.Round(v))
		if n < 0 {
			return usd.Sprintf("-$%d", -n)
		}
		return usd.Sprintf("$%d", n)
	}
	if v < 0 {
		return usd.Sprintf("-$%.0f", -v)
	}
	return usd.Sprintf("$%.0f", v)
}

// FormatCompact renders millions as "$1M" or "$1.5M" and anything smaller
// as whole dollars.
func FormatCompact(v float64) string {
	if v < 1_000_000 {
		return FormatCurrency(v)
	}
	m := v / 1_000_000
	prec := 1
	if m == math.Trunc(m) {
		prec = 0
	}
	return "$" + strconv.FormatFloat(m, 'f', prec, 64) + "M"
}

// DefaultWrapWidth is the character budget of one label line on a card.
const DefaultWrapWidth = 30

// WrapLabel breaks s into lines greedily: words accumulate until the next
// one, with its trailing space, would push the line past width characters.
// A single word longer than width gets a line of its own. Blank input
// yields no lines.
func WrapLabel(s string, width int) []string {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	var (
		lines []string
		line  strings.Builder
		n     int
	)
	for _, word := range strings.Fields(s) {
		w := utf8.RuneCountInString(word)
		if n > 0 && n+1+w+1 > width {
			lines = append(lines, line.String())
			line.Reset()
			n = 0
		}
		if n > 0 {
			line.WriteByte(' ')
			n++
		}
		line.WriteString(word)
		n += w
	}
	if n > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

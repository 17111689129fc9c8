package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders a currency value the way the salon displays it,
// e.g. "R$ 1.234,56". Storage and arithmetic never go through this.
func FormatBRL(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v.IsNegative() && !v.Round(2).IsZero() {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

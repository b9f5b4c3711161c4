package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a monetary value with exactly two decimals and
// thousands separators, preserving the sign: -1234567.8 → "-1,234,567.80".
func FormatAmount(v float64) string {
	fixed := decimal.NewFromFloat(v).StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(ch)
	}
	sb.WriteByte('.')
	sb.WriteString(fracPart)

	return sb.String()
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

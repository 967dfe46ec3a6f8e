package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a numeric string that may use either the US grouping
// convention ("1,234.56") or the European one ("1.234,56"). When both '.'
// and ',' appear, the rightmost separator is the decimal point. A lone
// separator followed by exactly three digits is ambiguous; the currency's
// grouping convention decides, with the US reading as the tie-break for
// currencies that follow it.
func ParseAmount(s string, def Definition) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("ParseAmount: empty input")
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	s = strings.ReplaceAll(s, " ", "")

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var normalized string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		if lastDot > lastComma {
			normalized = strings.ReplaceAll(s, ",", "")
		} else {
			normalized = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
	case lastComma >= 0:
		normalized = resolveLoneSeparator(s, ',', !def.EuropeanGrouping)
	case lastDot >= 0:
		normalized = resolveLoneSeparator(s, '.', def.EuropeanGrouping)
	default:
		normalized = s
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParseAmount: %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// resolveLoneSeparator normalizes a string containing only one kind of
// separator. groupingHint is true when the currency's convention treats sep
// as a thousands separator.
func resolveLoneSeparator(s string, sep byte, groupingHint bool) string {
	sepStr := string(sep)
	if strings.Count(s, sepStr) > 1 {
		// Repeated separators can only be grouping.
		return dropSep(s, sepStr)
	}
	idx := strings.IndexByte(s, sep)
	trailing := len(s) - idx - 1
	if trailing == 3 && groupingHint {
		return dropSep(s, sepStr)
	}
	return strings.Replace(s, sepStr, ".", 1)
}

func dropSep(s, sep string) string {
	return strings.ReplaceAll(s, sep, "")
}

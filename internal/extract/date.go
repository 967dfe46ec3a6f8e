package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/language"
)

// Date patterns are tried in order; the first valid match wins. Patterns
// with a 4-digit year carry a higher confidence than 2-digit-year ones.
var (
	isoDateRe     = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	monthNameRe   = regexp.MustCompile(`\b([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	dayMonthRe    = regexp.MustCompile(`\b(\d{1,2})\.?\s+([A-Za-z]{3,9})\.?,?\s+(\d{4})\b`)
	shortYearRe   = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{2})\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// extractDate tries the locale-ordered date patterns against the text. The
// resolved language decides day/month precedence for ambiguous numeric
// dates.
func (e *Extractor) extractDate(text string, lang language.Code) domain.Field[time.Time] {
	dayFirst := lang != language.English
	maxYear := e.now().Year() + 1

	if d, ok := firstValid(isoDateRe, text, maxYear, func(m []string) (int, time.Month, int, bool) {
		y, mo, da := atoi(m[1]), atoi(m[2]), atoi(m[3])
		return y, time.Month(mo), da, true
	}); ok {
		return domain.Field[time.Time]{Value: d, Confidence: 0.95}
	}

	if d, ok := firstValid(numericDateRe, text, maxYear, func(m []string) (int, time.Month, int, bool) {
		a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		mo, da := resolveDayMonth(a, b, dayFirst)
		return y, mo, da, true
	}); ok {
		return domain.Field[time.Time]{Value: d, Confidence: 0.9}
	}

	if d, ok := firstValid(monthNameRe, text, maxYear, func(m []string) (int, time.Month, int, bool) {
		mo, ok := parseMonthName(m[1])
		return atoi(m[3]), mo, atoi(m[2]), ok
	}); ok {
		return domain.Field[time.Time]{Value: d, Confidence: 0.9}
	}

	if d, ok := firstValid(dayMonthRe, text, maxYear, func(m []string) (int, time.Month, int, bool) {
		mo, ok := parseMonthName(m[2])
		return atoi(m[3]), mo, atoi(m[1]), ok
	}); ok {
		return domain.Field[time.Time]{Value: d, Confidence: 0.9}
	}

	if d, ok := firstValid(shortYearRe, text, maxYear, func(m []string) (int, time.Month, int, bool) {
		a, b, y := atoi(m[1]), atoi(m[2]), 2000+atoi(m[3])
		mo, da := resolveDayMonth(a, b, dayFirst)
		return y, mo, da, true
	}); ok {
		return domain.Field[time.Time]{Value: d, Confidence: 0.6}
	}

	return domain.Field[time.Time]{}
}

// firstValid returns the first regex match that decodes into a real
// calendar date within the accepted year range.
func firstValid(re *regexp.Regexp, text string, maxYear int, decode func([]string) (int, time.Month, int, bool)) (time.Time, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		year, month, day, ok := decode(m)
		if !ok {
			continue
		}
		if year < 2000 || year > maxYear || month < time.January || month > time.December {
			continue
		}
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes out-of-range days; reject those.
		if d.Year() != year || d.Month() != month || d.Day() != day {
			continue
		}
		return d, true
	}
	return time.Time{}, false
}

// resolveDayMonth orders an ambiguous numeric pair. The locale preference
// applies first; an impossible month flips the reading.
func resolveDayMonth(a, b int, dayFirst bool) (time.Month, int) {
	if dayFirst {
		if b > 12 && a <= 12 {
			return time.Month(a), b
		}
		return time.Month(b), a
	}
	if a > 12 && b <= 12 {
		return time.Month(b), a
	}
	return time.Month(a), b
}

func parseMonthName(s string) (time.Month, bool) {
	s = strings.ToLower(s)
	if len(s) > 3 {
		s = s[:3]
	}
	m, ok := monthNames[s]
	return m, ok
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

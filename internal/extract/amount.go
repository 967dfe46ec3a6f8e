package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/currency"
	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// numberRe matches monetary number tokens in either grouping convention,
// e.g. "4.50", "1,234.56", "1.234,56", "1200".
var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// amountLabelRe marks totals written out as "Total: 1200" so the fallback
// can accept the integer that follows the label.
var amountLabelRe = regexp.MustCompile(`(?i)\b(?:total|subtotal|amount|sum|balance|due)\b[:\s]*`)

// extractAmount locates the transaction amount. The number adjacent to a
// detected currency marker wins; otherwise the largest plausible monetary
// number in the text is taken at a reduced confidence. This adjacency-first
// policy is a documented heuristic, not guaranteed-correct parsing.
func (e *Extractor) extractAmount(text string, marker currency.Match) domain.Field[decimal.Decimal] {
	def, ok := e.registry.Lookup(marker.Code)
	if !ok {
		def, _ = e.registry.Lookup(e.registry.Default())
	}

	spans := numberRe.FindAllStringIndex(text, -1)

	if !marker.Defaulted && marker.AdjacentToNumber {
		for _, span := range spans {
			if !adjacentSpans(span[0], span[1], marker.Start, marker.End, text) {
				continue
			}
			if amt, ok := e.plausible(text[span[0]:span[1]], def); ok {
				return domain.Field[decimal.Decimal]{Value: amt, Confidence: 0.9}
			}
		}
	}

	// Fallback: largest plausible monetary number anywhere in the text.
	// Bare integers are skipped here unless they follow a total label:
	// without a marker or label they are more likely dates, quantities or
	// reference numbers than totals.
	labeled := labeledStarts(text, spans)
	best := decimal.Zero
	found := false
	for _, span := range spans {
		token := text[span[0]:span[1]]
		if !strings.ContainsAny(token, ".,") && !labeled[span[0]] {
			continue
		}
		amt, ok := e.plausible(token, def)
		if !ok {
			continue
		}
		if !found || amt.GreaterThan(best) {
			best = amt
			found = true
		}
	}
	if found {
		return domain.Field[decimal.Decimal]{Value: best, Confidence: 0.5}
	}
	return domain.Field[decimal.Decimal]{Value: decimal.Zero, Confidence: 0}
}

// labeledStarts collects the start offsets of number spans that directly
// follow a total label, allowing a currency symbol in between.
func labeledStarts(text string, spans [][]int) map[int]bool {
	out := make(map[int]bool)
	for _, lm := range amountLabelRe.FindAllStringIndex(text, -1) {
		for _, span := range spans {
			if span[0] < lm[1] {
				continue
			}
			if span[0]-lm[1] <= 3 {
				out[span[0]] = true
			}
			break
		}
	}
	return out
}

// plausible parses a number token under the currency's grouping convention
// and checks it against the configured monetary range.
func (e *Extractor) plausible(token string, def currency.Definition) (decimal.Decimal, bool) {
	amt, err := currency.ParseAmount(token, def)
	if err != nil || amt.IsNegative() {
		return decimal.Zero, false
	}
	f, _ := amt.Float64()
	if f < e.minAmount || f > e.maxAmount {
		return decimal.Zero, false
	}
	return amt, true
}

// adjacentSpans reports whether a number span touches the currency marker
// span, allowing a single space between them.
func adjacentSpans(numStart, numEnd, markStart, markEnd int, text string) bool {
	gapAfter := numStart - markEnd
	if gapAfter == 0 || (gapAfter == 1 && text[markEnd] == ' ') {
		return true
	}
	gapBefore := markStart - numEnd
	return gapBefore == 0 || (gapBefore == 1 && text[numEnd] == ' ')
}

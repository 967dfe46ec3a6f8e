package extract

import (
	"strings"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/language"
)

// classify infers the spend category by counting keyword hits against the
// vendor name and the full text. The highest hit count wins; ties keep the
// earlier category in the fixed priority order, and no hits at all defaults
// to Other with zero confidence.
//
// Brand-name keywords live in the English table, so for non-English receipts
// the English set is consulted alongside the resolved language's set.
func (e *Extractor) classify(vendor, text string, lang language.Code) domain.Field[domain.Category] {
	vendorLower := strings.ToLower(vendor)
	textLower := strings.ToLower(text)

	best := domain.CategoryOther
	bestHits := 0
	for _, cat := range domain.Categories() {
		hits := 0
		for _, kw := range e.categoryKeywords(cat, lang) {
			if strings.Contains(vendorLower, kw) {
				hits++
			}
			if strings.Contains(textLower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return domain.Field[domain.Category]{Value: domain.CategoryOther, Confidence: 0}
	}
	conf := float64(bestHits) * 0.25
	if conf > 1 {
		conf = 1
	}
	return domain.Field[domain.Category]{Value: best, Confidence: conf}
}

func (e *Extractor) categoryKeywords(cat domain.Category, lang language.Code) []string {
	byLang := e.keywords[cat]
	if byLang == nil {
		return nil
	}
	kws := byLang[lang]
	if lang != language.English {
		kws = append(append([]string(nil), kws...), byLang[language.English]...)
	}
	out := kws[:0:0]
	for _, kw := range kws {
		out = append(out, strings.ToLower(kw))
	}
	return out
}

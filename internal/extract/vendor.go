package extract

import (
	"strings"
	"unicode"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// Corporate suffixes stripped from the end of a vendor name.
var vendorSuffixes = map[string]bool{
	"inc": true, "llc": true, "corp": true, "ltd": true, "co": true, "company": true,
}

// extractVendor picks the most business-name-like line among the first few
// lines of the receipt. The confidence is the winning line's signal strength.
func (e *Extractor) extractVendor(text string) domain.Field[string] {
	var best domain.Field[string]

	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > e.vendorWindow {
			break
		}
		name, score := vendorCandidate(line)
		if score > best.Confidence {
			best = domain.Field[string]{Value: name, Confidence: score}
		}
	}
	return best
}

// vendorCandidate extracts the leading name-like token run from a line and
// scores it on business-name signals: letter content, capitalization, and
// how numeric-heavy the rest of the line is.
func vendorCandidate(line string) (string, float64) {
	tokens := strings.Fields(line)
	var name []string
	for _, tok := range tokens {
		if !nameLike(tok) {
			break
		}
		name = append(name, tok)
	}
	if len(name) == 0 {
		return "", 0
	}

	// Drop a trailing corporate suffix ("Acme Inc." -> "Acme").
	if len(name) > 1 {
		last := strings.ToLower(strings.TrimRight(name[len(name)-1], "."))
		if vendorSuffixes[last] {
			name = name[:len(name)-1]
		}
	}
	candidate := strings.Join(name, " ")

	letterShare := runeShare(candidate, unicode.IsLetter)
	capScore := capitalization(name)
	digitShare := runeShare(line, unicode.IsDigit)

	score := (0.6*letterShare + 0.4*capScore) * (1 - digitShare)
	if score < 0 {
		score = 0
	}
	return candidate, score
}

// nameLike reports whether a token could be part of a business name: it must
// contain a letter and not be dominated by digits.
func nameLike(tok string) bool {
	letters, digits := 0, 0
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters > 0 && digits <= letters
}

// capitalization scores how title-cased or upper-cased the name tokens are.
func capitalization(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	capped := 0
	for _, tok := range tokens {
		r := []rune(tok)[0]
		if unicode.IsUpper(r) {
			capped++
		}
	}
	return float64(capped) / float64(len(tokens))
}

// runeShare is the fraction of runes in s satisfying pred, counting only
// letters and digits in the denominator alongside matches.
func runeShare(s string, pred func(rune) bool) float64 {
	match, total := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			total++
			if pred(r) {
				match++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(match) / float64(total)
}

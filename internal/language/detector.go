// Package language classifies the dominant language of a text blob from a
// small closed set using stop-word frequency counting. It is deliberately a
// deterministic heuristic rather than a statistical model.
package language

import (
	"strings"
	"unicode"
)

// Code identifies a supported language.
type Code string

const (
	English Code = "en"
	Spanish Code = "es"
	French  Code = "fr"
	German  Code = "de"
)

// Profile is the stop-word list for one language. The slice order passed to
// NewDetector is the fixed priority order used to break score ties.
type Profile struct {
	Code      Code
	StopWords []string
}

// Detector scores text against per-language stop-word lists. Immutable and
// safe for concurrent use.
type Detector struct {
	profiles  []scoredProfile
	fallback  Code
	minTokens int
}

type scoredProfile struct {
	code  Code
	words map[string]struct{}
}

// NewDetector builds a detector. The first profile is the fallback returned
// for short or unscorable input; minTokens is the minimum token count below
// which detection is skipped entirely.
func NewDetector(profiles []Profile, minTokens int) *Detector {
	d := &Detector{minTokens: minTokens, fallback: English}
	if len(profiles) > 0 {
		d.fallback = profiles[0].Code
	}
	for _, p := range profiles {
		sp := scoredProfile{code: p.Code, words: make(map[string]struct{}, len(p.StopWords))}
		for _, w := range p.StopWords {
			sp.words[strings.ToLower(w)] = struct{}{}
		}
		d.profiles = append(d.profiles, sp)
	}
	return d
}

// Detect returns the dominant language of text. It never fails: short input
// and zero scores both degrade to the fallback language.
func (d *Detector) Detect(text string) Code {
	tokens := Tokenize(text)
	if len(tokens) < d.minTokens {
		return d.fallback
	}

	best := d.fallback
	bestScore := 0
	for _, p := range d.profiles {
		score := 0
		for _, tok := range tokens {
			if _, ok := p.words[tok]; ok {
				score++
			}
		}
		// Strictly greater keeps the earlier (higher-priority) language on
		// ties.
		if score > bestScore {
			best = p.code
			bestScore = score
		}
	}
	return best
}

// Tokenize lower-cases text and splits it on anything that is not a letter.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

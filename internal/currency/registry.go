// Package currency detects currency markers in receipt text, parses amounts
// under locale-specific digit groupings, and converts between currencies
// against an externally supplied rate table.
package currency

import (
	"fmt"
	"sort"
	"strings"
)

// Code is an ISO 4217 currency code, e.g. "USD".
type Code string

// Definition describes one supported currency: its canonical symbol, the
// alternate spellings accepted during detection, the number of fractional
// digits, and the digit-grouping convention used when parsing amounts.
type Definition struct {
	Code     Code
	Symbol   string
	Aliases  []string
	Exponent int32
	// EuropeanGrouping selects "1.234,56" parsing over the US "1,234.56"
	// convention when a lone separator is ambiguous.
	EuropeanGrouping bool
}

// Registry holds the supported-currency set. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	defs        map[Code]Definition
	defaultCode Code
	markers     []marker
}

// marker is one detectable token (symbol, alias or ISO code) bound to a code.
type marker struct {
	token    string
	code     Code
	isSymbol bool
}

// NewRegistry builds a registry from currency definitions. defaultCode is
// returned by Detect when no marker is found and must itself be defined.
func NewRegistry(defs []Definition, defaultCode Code) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("NewRegistry: no currency definitions")
	}
	r := &Registry{
		defs:        make(map[Code]Definition, len(defs)),
		defaultCode: defaultCode,
	}
	for _, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("NewRegistry: definition with empty code")
		}
		if _, dup := r.defs[d.Code]; dup {
			return nil, fmt.Errorf("NewRegistry: duplicate definition for %s", d.Code)
		}
		r.defs[d.Code] = d
		if d.Symbol != "" {
			// Alphabetic symbols like "kr" need word boundaries so they do
			// not match inside ordinary words.
			r.markers = append(r.markers, marker{token: d.Symbol, code: d.Code, isSymbol: !isLetters(d.Symbol)})
		}
		for _, a := range d.Aliases {
			if a == "" {
				continue
			}
			r.markers = append(r.markers, marker{token: a, code: d.Code, isSymbol: !isLetters(a)})
		}
		r.markers = append(r.markers, marker{token: string(d.Code), code: d.Code, isSymbol: false})
	}
	if _, ok := r.defs[defaultCode]; !ok {
		return nil, fmt.Errorf("NewRegistry: default currency %s is not defined", defaultCode)
	}
	// Longer tokens first so "C$" is tried before "$".
	sort.SliceStable(r.markers, func(i, j int) bool {
		return len(r.markers[i].token) > len(r.markers[j].token)
	})
	return r, nil
}

// Lookup returns the definition for a code.
func (r *Registry) Lookup(c Code) (Definition, bool) {
	d, ok := r.defs[c]
	return d, ok
}

// Supported reports whether a code belongs to the supported set.
func (r *Registry) Supported(c Code) bool {
	_, ok := r.defs[c]
	return ok
}

// Default returns the configured fallback currency.
func (r *Registry) Default() Code {
	return r.defaultCode
}

// Codes returns the supported codes in lexicographic order.
func (r *Registry) Codes() []Code {
	out := make([]Code, 0, len(r.defs))
	for c := range r.defs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return len(s) > 0
}

// Match is the result of scanning text for a currency marker.
type Match struct {
	Code  Code
	Start int // byte offset of the matched token, -1 when defaulted
	End   int
	// Defaulted is true when no marker was found and the registry default
	// was returned instead.
	Defaulted bool
	// AdjacentToNumber is true when the matched token touches a digit
	// (at most one space in between), which marks it as an amount marker
	// rather than a free-floating mention.
	AdjacentToNumber bool
}

// Detect scans text for the best currency marker. Symbols win over ISO
// codes, markers adjacent to a number win over free-floating ones, and
// longer tokens win over shorter ones; the earliest occurrence breaks any
// remaining tie. The registry default is returned when nothing matches.
func (r *Registry) Detect(text string) Match {
	best := Match{Code: r.defaultCode, Start: -1, End: -1, Defaulted: true}
	bestRank := [3]int{-1, -1, -1} // adjacency, symbol, token length

	for _, m := range r.markers {
		from := 0
		for {
			i := indexToken(text, m.token, !m.isSymbol, from)
			if i < 0 {
				break
			}
			end := i + len(m.token)
			adj := touchesDigit(text, i, end)
			rank := [3]int{b2i(adj), b2i(m.isSymbol), len(m.token)}
			if better(rank, best.Start, i, bestRank) {
				best = Match{Code: m.code, Start: i, End: end, AdjacentToNumber: adj}
				bestRank = rank
			}
			from = end
		}
	}
	return best
}

// indexToken finds token at or after from, case-insensitively. Word tokens
// (ISO codes, textual aliases) must not be embedded in a longer word.
func indexToken(text, token string, wordBoundary bool, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(token) <= len(text); i++ {
		if !strings.EqualFold(text[i:i+len(token)], token) {
			continue
		}
		if wordBoundary && !isBoundary(text, i, i+len(token)) {
			continue
		}
		return i
	}
	return -1
}

func isBoundary(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func touchesDigit(text string, start, end int) bool {
	i := start - 1
	if i >= 0 && text[i] == ' ' {
		i--
	}
	if i >= 0 && text[i] >= '0' && text[i] <= '9' {
		return true
	}
	j := end
	if j < len(text) && text[j] == ' ' {
		j++
	}
	return j < len(text) && text[j] >= '0' && text[j] <= '9'
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// better orders candidate matches by (adjacency, symbol, length) and prefers
// the earliest position among equals.
func better(rank [3]int, bestStart, start int, bestRank [3]int) bool {
	for k := 0; k < 3; k++ {
		if rank[k] != bestRank[k] {
			return rank[k] > bestRank[k]
		}
	}
	return bestStart == -1 || start < bestStart
}

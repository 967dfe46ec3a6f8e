package search

import (
	"regexp"
	"sort"
	"strings"
)

var wordRe = regexp.MustCompile(`\b[A-Za-z]{3,}\b`)

// Common words excluded from keyword extraction.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "who": true, "did": true,
	"she": true, "use": true, "way": true, "will": true, "with": true,
}

// Keywords extracts the distinct searchable words from text: words of at
// least three letters minus the stop-word set, lower-cased and sorted for
// determinism. Collaborators use it to build search indexes.
func Keywords(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if !stopWords[w] {
			seen[w] = true
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Package search filters and ranks record collections. Structured filters
// are conjunctive; keywords are OR-combined; ranking either follows a
// relevance score or delegates to the sort engine.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/sorting"
)

// SortKey selects the result ordering. SortByRelevance ranks by matched
// keywords; every other key maps onto the sort engine.
type SortKey int

const (
	SortByRelevance SortKey = iota
	SortByVendor
	SortByDate
	SortByAmount
	SortByCategory
	SortByConfidence
)

// Query describes one search. Nil / empty fields mean "no constraint"; all
// supplied structured filters must hold, and when Keywords is non-empty at
// least one keyword must match.
type Query struct {
	Keywords       []string
	VendorContains string
	Category       *domain.Category
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time

	SortKey   SortKey
	Direction sorting.Direction
}

// Search filters records against the query and returns them in the
// requested order together with the match count. The input is treated as a
// read-only snapshot.
func Search(records []domain.Record, q Query) ([]domain.Record, int) {
	type scored struct {
		rec  domain.Record
		hits int
	}

	matched := make([]scored, 0, len(records))
	for _, rec := range records {
		if !passesFilters(rec, q) {
			continue
		}
		hits := keywordHits(rec, q.Keywords)
		if len(q.Keywords) > 0 && hits == 0 {
			continue
		}
		matched = append(matched, scored{rec: rec, hits: hits})
	}

	if q.SortKey == SortByRelevance {
		// Distinct-keyword count desc, then overall confidence desc, then
		// upload time desc.
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if a.hits != b.hits {
				return a.hits > b.hits
			}
			if a.rec.OverallConfidence != b.rec.OverallConfidence {
				return a.rec.OverallConfidence > b.rec.OverallConfidence
			}
			return a.rec.UploadedAt.After(b.rec.UploadedAt)
		})
		out := make([]domain.Record, len(matched))
		for i, s := range matched {
			out[i] = s.rec
		}
		return out, len(out)
	}

	out := make([]domain.Record, len(matched))
	for i, s := range matched {
		out[i] = s.rec
	}
	out = sorting.Sort(out, sortKeyToEngine(q.SortKey), q.Direction)
	return out, len(out)
}

// passesFilters applies the conjunctive structured filters.
func passesFilters(rec domain.Record, q Query) bool {
	if q.VendorContains != "" &&
		!strings.Contains(strings.ToLower(rec.Vendor.Value), strings.ToLower(q.VendorContains)) {
		return false
	}
	if q.Category != nil && rec.Category.Value != *q.Category {
		return false
	}
	if q.MinAmount != nil && rec.Amount.Value.LessThan(*q.MinAmount) {
		return false
	}
	if q.MaxAmount != nil && rec.Amount.Value.GreaterThan(*q.MaxAmount) {
		return false
	}
	if q.StartDate != nil && rec.TransactionDate.Value.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && rec.TransactionDate.Value.After(*q.EndDate) {
		return false
	}
	return true
}

// keywordHits counts the distinct keywords occurring in the record's raw
// text or vendor name, case-insensitively.
func keywordHits(rec domain.Record, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	raw := strings.ToLower(rec.RawText)
	vendor := strings.ToLower(rec.Vendor.Value)

	hits := 0
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if strings.Contains(raw, k) || strings.Contains(vendor, k) {
			hits++
		}
	}
	return hits
}

func sortKeyToEngine(k SortKey) sorting.Key {
	switch k {
	case SortByVendor:
		return sorting.KeyVendor
	case SortByDate:
		return sorting.KeyDate
	case SortByAmount:
		return sorting.KeyAmount
	case SortByCategory:
		return sorting.KeyCategory
	case SortByConfidence:
		return sorting.KeyConfidence
	}
	return sorting.KeyDate
}

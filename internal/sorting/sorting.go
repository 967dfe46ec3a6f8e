// Package sorting is the generic sort engine over record collections. All
// sorts are stable in both directions: records equal on the requested key
// keep their input order, which the search engine relies on when chaining a
// sort after its relevance pre-ordering.
package sorting

import (
	"sort"
	"strings"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// Key selects the record attribute to sort on.
type Key int

const (
	KeyVendor Key = iota
	KeyDate
	KeyAmount
	KeyCategory
	KeyConfidence
)

// Direction selects the sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sort returns a new ordering of records by the given key and direction.
// The input slice is not modified. Descending order is produced by
// inverting the key comparison only, never by reversing the result, so
// equal-key runs keep their input order either way.
func Sort(records []domain.Record, key Key, dir Direction) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], key)
		if dir == Descending {
			c = -c
		}
		return c < 0
	})
	return out
}

// compare orders two records on a single key: negative when a sorts before
// b ascending, zero when equal.
func compare(a, b domain.Record, key Key) int {
	switch key {
	case KeyVendor:
		return strings.Compare(strings.ToLower(a.Vendor.Value), strings.ToLower(b.Vendor.Value))
	case KeyDate:
		return a.TransactionDate.Value.Compare(b.TransactionDate.Value)
	case KeyAmount:
		return a.Amount.Value.Cmp(b.Amount.Value)
	case KeyCategory:
		return int(a.Category.Value) - int(b.Category.Value)
	case KeyConfidence:
		switch {
		case a.OverallConfidence < b.OverallConfidence:
			return -1
		case a.OverallConfidence > b.OverallConfidence:
			return 1
		}
		return 0
	}
	return 0
}

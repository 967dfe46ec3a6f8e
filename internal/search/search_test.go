package search

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/sorting"
)

func day(d int) time.Time {
	return time.Date(2023, 6, d, 0, 0, 0, 0, time.UTC)
}

func fixtures() []domain.Record {
	return []domain.Record{
		{
			ID:                "coffee",
			Vendor:            domain.Field[string]{Value: "Starbucks"},
			TransactionDate:   domain.Field[time.Time]{Value: day(1)},
			Amount:            domain.Field[decimal.Decimal]{Value: decimal.RequireFromString("4.50")},
			Category:          domain.Field[domain.Category]{Value: domain.CategoryDining},
			RawText:           "STARBUCKS latte grande",
			UploadedAt:        day(10),
			OverallConfidence: 0.9,
		},
		{
			ID:                "grocery",
			Vendor:            domain.Field[string]{Value: "Whole Foods"},
			TransactionDate:   domain.Field[time.Time]{Value: day(5)},
			Amount:            domain.Field[decimal.Decimal]{Value: decimal.RequireFromString("82.10")},
			Category:          domain.Field[domain.Category]{Value: domain.CategoryGrocery},
			RawText:           "WHOLE FOODS market produce latte oat milk",
			UploadedAt:        day(11),
			OverallConfidence: 0.7,
		},
		{
			ID:                "power",
			Vendor:            domain.Field[string]{Value: "City Power"},
			TransactionDate:   domain.Field[time.Time]{Value: day(20)},
			Amount:            domain.Field[decimal.Decimal]{Value: decimal.RequireFromString("120.00")},
			Category:          domain.Field[domain.Category]{Value: domain.CategoryUtilities},
			RawText:           "CITY POWER electric bill june",
			UploadedAt:        day(12),
			OverallConfidence: 0.5,
		},
	}
}

func resultIDs(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSearch_FiltersAreConjunctive(t *testing.T) {
	records := fixtures()
	cat := domain.CategoryGrocery
	min := decimal.RequireFromString("50.00")
	from := day(2)

	got, n := Search(records, Query{
		Category:  &cat,
		MinAmount: &min,
		StartDate: &from,
		SortKey:   SortByDate,
	})
	require.Equal(t, 1, n)
	assert.Equal(t, []string{"grocery"}, resultIDs(got))

	// Dropping one constraint can only grow the result set.
	wider, wn := Search(records, Query{
		MinAmount: &min,
		StartDate: &from,
		SortKey:   SortByDate,
	})
	assert.GreaterOrEqual(t, wn, n)
	assert.Equal(t, []string{"grocery", "power"}, resultIDs(wider))
}

func TestSearch_VendorContainsIsCaseInsensitive(t *testing.T) {
	got, n := Search(fixtures(), Query{VendorContains: "star", SortKey: SortByDate})
	require.Equal(t, 1, n)
	assert.Equal(t, "coffee", got[0].ID)
}

func TestSearch_AmountAndDateBoundsAreInclusive(t *testing.T) {
	min := decimal.RequireFromString("4.50")
	max := decimal.RequireFromString("4.50")
	start := day(1)
	end := day(1)

	_, n := Search(fixtures(), Query{
		MinAmount: &min, MaxAmount: &max,
		StartDate: &start, EndDate: &end,
		SortKey: SortByDate,
	})
	assert.Equal(t, 1, n)
}

func TestSearch_KeywordsAreORCombined(t *testing.T) {
	got, n := Search(fixtures(), Query{
		Keywords: []string{"electric", "produce"},
		SortKey:  SortByDate,
	})
	require.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"grocery", "power"}, resultIDs(got))
}

func TestSearch_KeywordMatchesVendorToo(t *testing.T) {
	_, n := Search(fixtures(), Query{Keywords: []string{"whole"}})
	assert.Equal(t, 1, n)
}

func TestSearch_RelevanceOrdering(t *testing.T) {
	// "latte" hits coffee and grocery, "produce" only grocery: grocery has
	// two distinct hits and ranks first despite its lower confidence.
	got, n := Search(fixtures(), Query{
		Keywords: []string{"latte", "produce"},
		SortKey:  SortByRelevance,
	})
	require.Equal(t, 2, n)
	assert.Equal(t, []string{"grocery", "coffee"}, resultIDs(got))
}

func TestSearch_RelevanceTieBreaksOnConfidence(t *testing.T) {
	// One hit each; coffee's higher overall confidence puts it first.
	got, n := Search(fixtures(), Query{
		Keywords: []string{"latte"},
		SortKey:  SortByRelevance,
	})
	require.Equal(t, 2, n)
	assert.Equal(t, []string{"coffee", "grocery"}, resultIDs(got))
}

func TestSearch_NoKeywordsRelevanceFallsBackToConfidence(t *testing.T) {
	got, n := Search(fixtures(), Query{SortKey: SortByRelevance})
	require.Equal(t, 3, n)
	assert.Equal(t, []string{"coffee", "grocery", "power"}, resultIDs(got))
}

func TestSearch_DelegatesToSortEngine(t *testing.T) {
	got, _ := Search(fixtures(), Query{
		SortKey:   SortByAmount,
		Direction: sorting.Descending,
	})
	assert.Equal(t, []string{"power", "grocery", "coffee"}, resultIDs(got))
}

func TestSearch_EmptyQueryMatchesEverything(t *testing.T) {
	_, n := Search(fixtures(), Query{SortKey: SortByDate})
	assert.Equal(t, 3, n)
}

func TestSearch_DuplicateKeywordsCountOnce(t *testing.T) {
	// Duplicated keyword must not inflate the hit count past a two-hit rival.
	got, n := Search(fixtures(), Query{
		Keywords: []string{"latte", "LATTE", "produce"},
		SortKey:  SortByRelevance,
	})
	require.Equal(t, 2, n)
	assert.Equal(t, []string{"grocery", "coffee"}, resultIDs(got))
}

func TestKeywords(t *testing.T) {
	got := Keywords("The quick brown fox and the lazy dog will nap")
	assert.Equal(t, []string{"brown", "dog", "fox", "lazy", "nap", "quick"}, got)
}

func TestKeywords_Empty(t *testing.T) {
	assert.Nil(t, Keywords(""))
	assert.Empty(t, Keywords("a an to"))
}

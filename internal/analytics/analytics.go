// Package analytics computes summary statistics, grouped breakdowns and
// time-series trends over record collections. Every function is pure: the
// input snapshot is never mutated and empty input yields zero values, not
// errors.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/currency"
	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// unknownVendor groups records whose vendor could not be extracted.
const unknownVendor = "Unknown"

// Summary aggregates a record set in a single base currency. Records whose
// currency cannot be converted are left out of the totals and surfaced
// through Excluded.
type Summary struct {
	BaseCurrency     currency.Code       `json:"base_currency"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	TransactionCount int                 `json:"transaction_count"`
	AverageAmount    decimal.Decimal     `json:"average_amount"`
	Excluded         int                 `json:"excluded"`
	RateSource       currency.Provenance `json:"-"`
}

// Summarize converts every record's amount to the base currency and totals
// them. The rate-table provenance of the conversions is carried through so
// callers can warn when the fallback table served.
func Summarize(records []domain.Record, base currency.Code, conv *currency.Converter, live *currency.RateTable) Summary {
	s := Summary{
		BaseCurrency:     base,
		TransactionCount: len(records),
		RateSource:       conv.TableProvenance(live),
	}

	included := 0
	for _, rec := range records {
		converted, _, err := conv.Convert(rec.Amount.Value, rec.Currency.Value, base, live)
		if err != nil {
			s.Excluded++
			continue
		}
		s.TotalAmount = s.TotalAmount.Add(converted)
		included++
	}
	if included > 0 {
		s.AverageAmount = s.TotalAmount.Div(decimal.NewFromInt(int64(included))).RoundBank(2)
	}
	return s
}

// VendorTotal is one row of the top-vendors ranking.
type VendorTotal struct {
	Vendor      string          `json:"vendor"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

// TopVendors ranks vendors by total raw spend, descending, ties broken
// alphabetically. n <= 0 returns the full ranking.
func TopVendors(records []domain.Record, n int) []VendorTotal {
	byVendor := make(map[string]*VendorTotal)
	for _, rec := range records {
		name := rec.Vendor.Value
		if strings.TrimSpace(name) == "" {
			name = unknownVendor
		}
		vt, ok := byVendor[name]
		if !ok {
			vt = &VendorTotal{Vendor: name, TotalAmount: decimal.Zero}
			byVendor[name] = vt
		}
		vt.TotalAmount = vt.TotalAmount.Add(rec.Amount.Value)
		vt.Count++
	}

	out := make([]VendorTotal, 0, len(byVendor))
	for _, vt := range byVendor {
		out = append(out, *vt)
	}
	sort.Slice(out, func(i, j int) bool {
		c := out[i].TotalAmount.Cmp(out[j].TotalAmount)
		if c != 0 {
			return c > 0
		}
		return out[i].Vendor < out[j].Vendor
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// CategoryStat is one category's share of the spend.
type CategoryStat struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Percentage  float64         `json:"percentage"`
	Count       int             `json:"count"`
}

// CategoryBreakdown maps each category present in the input to its total
// raw spend and its percentage of the overall total.
func CategoryBreakdown(records []domain.Record) map[domain.Category]CategoryStat {
	out := make(map[domain.Category]CategoryStat)
	total := decimal.Zero
	for _, rec := range records {
		stat := out[rec.Category.Value]
		stat.TotalAmount = stat.TotalAmount.Add(rec.Amount.Value)
		stat.Count++
		out[rec.Category.Value] = stat
		total = total.Add(rec.Amount.Value)
	}
	if total.IsPositive() {
		totalF, _ := total.Float64()
		for cat, stat := range out {
			amountF, _ := stat.TotalAmount.Float64()
			stat.Percentage = amountF / totalF * 100
			out[cat] = stat
		}
	}
	return out
}

// Stats are the basic distribution statistics over raw record amounts.
type Stats struct {
	Count  int             `json:"count"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	StdDev float64         `json:"std_dev"`
}

// BasicStats computes min, max, mean, median and sample standard deviation
// over the record amounts. Empty input yields the zero value.
func BasicStats(records []domain.Record) Stats {
	if len(records) == 0 {
		return Stats{}
	}
	amounts := make([]decimal.Decimal, len(records))
	total := decimal.Zero
	for i, rec := range records {
		amounts[i] = rec.Amount.Value
		total = total.Add(rec.Amount.Value)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })

	n := len(amounts)
	stats := Stats{
		Count: n,
		Min:   amounts[0],
		Max:   amounts[n-1],
		Mean:  total.Div(decimal.NewFromInt(int64(n))).RoundBank(2),
	}
	if n%2 == 1 {
		stats.Median = amounts[n/2]
	} else {
		stats.Median = amounts[n/2-1].Add(amounts[n/2]).Div(decimal.NewFromInt(2))
	}
	if n > 1 {
		meanF, _ := total.Float64()
		meanF /= float64(n)
		var ss float64
		for _, a := range amounts {
			f, _ := a.Float64()
			ss += (f - meanF) * (f - meanF)
		}
		stats.StdDev = math.Sqrt(ss / float64(n-1))
	}
	return stats
}

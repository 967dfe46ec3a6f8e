package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// MonthBucket is one calendar month of the spending trend.
type MonthBucket struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`

	// MovingAverage is the mean total over the trailing window ending at
	// this bucket, nil until windowSize buckets exist.
	MovingAverage *decimal.Decimal `json:"moving_average,omitempty"`
}

// MonthlyTrend buckets records by calendar month of their transaction date
// and attaches a trailing moving average. The series is contiguous from the
// earliest to the latest month: months without records appear with a zero
// total. Records with no extracted date are skipped.
func MonthlyTrend(records []domain.Record, windowSize int) []MonthBucket {
	type ym struct {
		year  int
		month time.Month
	}

	totals := make(map[ym]*MonthBucket)
	var minKey, maxKey ym
	seen := false
	for _, rec := range records {
		d := rec.TransactionDate.Value
		if d.IsZero() {
			continue
		}
		key := ym{d.Year(), d.Month()}
		b, ok := totals[key]
		if !ok {
			b = &MonthBucket{Year: key.year, Month: key.month, TotalAmount: decimal.Zero}
			totals[key] = b
		}
		b.TotalAmount = b.TotalAmount.Add(rec.Amount.Value)
		b.Count++

		if !seen || before(key.year, key.month, minKey.year, minKey.month) {
			minKey = key
		}
		if !seen || before(maxKey.year, maxKey.month, key.year, key.month) {
			maxKey = key
		}
		seen = true
	}
	if !seen {
		return nil
	}

	var out []MonthBucket
	for y, m := minKey.year, minKey.month; !before(maxKey.year, maxKey.month, y, m); y, m = nextMonth(y, m) {
		if b, ok := totals[ym{y, m}]; ok {
			out = append(out, *b)
		} else {
			out = append(out, MonthBucket{Year: y, Month: m, TotalAmount: decimal.Zero})
		}
	}

	if windowSize > 0 {
		for i := range out {
			if i+1 < windowSize {
				continue
			}
			sum := decimal.Zero
			for j := i - windowSize + 1; j <= i; j++ {
				sum = sum.Add(out[j].TotalAmount)
			}
			avg := sum.Div(decimal.NewFromInt(int64(windowSize))).RoundBank(2)
			out[i].MovingAverage = &avg
		}
	}
	return out
}

func before(y1 int, m1 time.Month, y2 int, m2 time.Month) bool {
	return y1 < y2 || (y1 == y2 && m1 < m2)
}

func nextMonth(y int, m time.Month) (int, time.Month) {
	if m == time.December {
		return y + 1, time.January
	}
	return y, m + 1
}

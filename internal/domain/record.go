// Package domain holds the structured receipt record produced by extraction
// and consumed by the search, sort and aggregation engines.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-tracker/internal/currency"
)

// Field is one extracted attribute plus the extractor's confidence in it,
// in [0,1]. A correction pins the confidence to 1.
type Field[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
}

// AuditNote records one human correction applied to a record.
type AuditNote struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

// Record is the durable structured representation of one processed receipt.
// ID and RawText never change after creation; field values change only
// through ApplyCorrection.
type Record struct {
	ID              string                 `json:"id"`
	Vendor          Field[string]          `json:"vendor"`
	TransactionDate Field[time.Time]       `json:"transaction_date"`
	Amount          Field[decimal.Decimal] `json:"amount"`
	Currency        Field[currency.Code]   `json:"currency"`
	Category        Field[Category]        `json:"category"`

	RawText           string      `json:"raw_text"`
	UploadedAt        time.Time   `json:"uploaded_at"`
	OverallConfidence float64     `json:"overall_confidence"`
	Audit             []AuditNote `json:"audit,omitempty"`
}

// OverallConfidence is the mean of the five field confidences.
func overallConfidence(r Record) float64 {
	sum := r.Vendor.Confidence +
		r.TransactionDate.Confidence +
		r.Amount.Confidence +
		r.Currency.Confidence +
		r.Category.Confidence
	return sum / 5
}

// Finalize recomputes the overall confidence from the per-field scores.
// The extractor calls it once after all fields are populated.
func (r *Record) Finalize() {
	r.OverallConfidence = overallConfidence(*r)
}

// FieldUpdates carries the replacement values for a correction. Nil fields
// are left untouched.
type FieldUpdates struct {
	Vendor          *string
	TransactionDate *time.Time
	Amount          *decimal.Decimal
	Currency        *currency.Code
	Category        *Category
}

func (u FieldUpdates) empty() bool {
	return u.Vendor == nil && u.TransactionDate == nil && u.Amount == nil &&
		u.Currency == nil && u.Category == nil
}

// ApplyCorrection returns a copy of rec with the supplied field values
// replaced and marked human-verified (confidence 1.0), an audit note
// appended, and the overall confidence recomputed. The input record is not
// mutated; its id and raw text carry over unchanged.
func ApplyCorrection(rec Record, updates FieldUpdates, reg *currency.Registry) (Record, error) {
	if updates.empty() {
		return Record{}, fmt.Errorf("ApplyCorrection: no field updates supplied")
	}

	out := rec
	out.Audit = append([]AuditNote(nil), rec.Audit...)

	var corrected []string
	if updates.Vendor != nil {
		out.Vendor = Field[string]{Value: *updates.Vendor, Confidence: 1}
		corrected = append(corrected, "vendor")
	}
	if updates.TransactionDate != nil {
		out.TransactionDate = Field[time.Time]{Value: *updates.TransactionDate, Confidence: 1}
		corrected = append(corrected, "transaction_date")
	}
	if updates.Amount != nil {
		if updates.Amount.IsNegative() {
			return Record{}, fmt.Errorf("ApplyCorrection: amount must be non-negative, got %s", updates.Amount)
		}
		out.Amount = Field[decimal.Decimal]{Value: *updates.Amount, Confidence: 1}
		corrected = append(corrected, "amount")
	}
	if updates.Currency != nil {
		if reg == nil || !reg.Supported(*updates.Currency) {
			return Record{}, fmt.Errorf("ApplyCorrection: currency %s is not in the supported set", *updates.Currency)
		}
		out.Currency = Field[currency.Code]{Value: *updates.Currency, Confidence: 1}
		corrected = append(corrected, "currency")
	}
	if updates.Category != nil {
		out.Category = Field[Category]{Value: *updates.Category, Confidence: 1}
		corrected = append(corrected, "category")
	}

	out.Audit = append(out.Audit, AuditNote{
		At:   time.Now().UTC(),
		Note: "corrected: " + strings.Join(corrected, ", "),
	})
	out.OverallConfidence = overallConfidence(out)
	return out, nil
}

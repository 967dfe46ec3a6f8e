// Package extract turns raw OCR text into a structured receipt record with
// per-field confidence scores. Extraction degrades instead of failing: every
// field has a safe default, and the only hard error is ErrEmptyDocument for
// input below the minimum length.
package extract

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-tracker/internal/config"
	"github.com/dvloznov/receipt-tracker/internal/currency"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/language"
)

// ErrEmptyDocument is returned when the input text is too short to carry any
// extractable field.
var ErrEmptyDocument = errors.New("document text below minimum length")

// Extractor is the field-extraction pipeline. Immutable after construction
// and safe for concurrent use.
type Extractor struct {
	registry *currency.Registry
	detector *language.Detector
	keywords map[domain.Category]map[language.Code][]string

	vendorWindow int
	minDocLen    int
	minAmount    float64
	maxAmount    float64

	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// New builds an extractor from the engine configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Extractor, error) {
	reg, err := cfg.CurrencyRegistry()
	if err != nil {
		return nil, err
	}
	keywords, err := cfg.CategoryKeywords()
	if err != nil {
		return nil, err
	}
	return &Extractor{
		registry:     reg,
		detector:     cfg.LanguageDetector(),
		keywords:     keywords,
		vendorWindow: cfg.VendorLineWindow,
		minDocLen:    cfg.MinDocumentLength,
		minAmount:    cfg.MinPlausibleAmount,
		maxAmount:    cfg.MaxPlausibleAmount,
		log:          log,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

// Extract produces an unsaved record from raw receipt text. An explicit
// language hint wins over detection; pass the zero value to detect.
func (e *Extractor) Extract(rawText string, hint language.Code) (domain.Record, error) {
	trimmed := strings.TrimSpace(rawText)
	if utf8.RuneCountInString(trimmed) < e.minDocLen {
		return domain.Record{}, ErrEmptyDocument
	}

	lang := hint
	if lang == "" {
		lang = e.detector.Detect(rawText)
	}

	vendor := e.extractVendor(rawText)

	curMatch := e.registry.Detect(rawText)
	cur := domain.Field[currency.Code]{Value: curMatch.Code, Confidence: currencyConfidence(curMatch)}

	amount := e.extractAmount(rawText, curMatch)
	date := e.extractDate(rawText, lang)
	category := e.classify(vendor.Value, rawText, lang)

	rec := domain.Record{
		ID:              e.newID(),
		Vendor:          vendor,
		TransactionDate: date,
		Amount:          amount,
		Currency:        cur,
		Category:        category,
		RawText:         rawText,
		UploadedAt:      e.now().UTC(),
	}
	rec.Finalize()

	e.log.Debug().
		Str("record_id", rec.ID).
		Str("language", string(lang)).
		Str("vendor", rec.Vendor.Value).
		Str("currency", string(rec.Currency.Value)).
		Str("amount", rec.Amount.Value.String()).
		Str("category", rec.Category.Value.String()).
		Float64("overall_confidence", rec.OverallConfidence).
		Msg("extracted record")

	return rec, nil
}

// currencyConfidence scores how the currency was established: a marker next
// to a number is near-certain, a free-floating marker less so, and the
// configured default weakest of all.
func currencyConfidence(m currency.Match) float64 {
	switch {
	case m.Defaulted:
		return 0.2
	case m.AdjacentToNumber:
		return 0.95
	default:
		return 0.7
	}
}

package currency

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateTable is an immutable snapshot of exchange rates relative to a base
// currency, stamped with its fetch time. The base itself always has an
// implicit rate of 1.
type RateTable struct {
	Base      Code
	Rates     map[Code]float64
	FetchedAt time.Time
}

// rate returns the table rate for a code, with the implicit base rate.
func (t RateTable) rate(c Code) (float64, bool) {
	if c == t.Base {
		return 1, true
	}
	r, ok := t.Rates[c]
	return r, ok && r > 0
}

// Provenance reports which rate table served a conversion.
type Provenance int

const (
	// RateSourceLive means the caller-supplied table was fresh and used.
	RateSourceLive Provenance = iota
	// RateSourceFallback means the built-in default table was used because
	// the live table was absent or stale.
	RateSourceFallback
)

func (p Provenance) String() string {
	if p == RateSourceFallback {
		return "fallback"
	}
	return "live"
}

// UnsupportedCurrencyError is returned when a conversion involves a code
// absent from both the registry and the selected rate table.
type UnsupportedCurrencyError struct {
	Code Code
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency: %s", e.Code)
}

// Converter converts amounts between currencies. A stale or missing live
// table silently degrades to the fallback table; the degradation is visible
// only through the returned provenance.
type Converter struct {
	registry *Registry
	fallback RateTable
	validity time.Duration
	now      func() time.Time
}

// NewConverter builds a converter around a registry and a fallback table.
// validity bounds how old a live table may be before it is considered stale.
func NewConverter(reg *Registry, fallback RateTable, validity time.Duration) *Converter {
	return &Converter{
		registry: reg,
		fallback: fallback,
		validity: validity,
		now:      time.Now,
	}
}

// TableProvenance reports which table a conversion would use right now,
// without converting anything.
func (c *Converter) TableProvenance(live *RateTable) Provenance {
	_, prov := c.pickTable(live)
	return prov
}

// Convert converts amount from one currency to another through the rate
// table, rounding half-to-even to the target currency's fractional digits.
func (c *Converter) Convert(amount decimal.Decimal, from, to Code, live *RateTable) (decimal.Decimal, Provenance, error) {
	table, prov := c.pickTable(live)

	toDef, ok := c.registry.Lookup(to)
	if !ok {
		return decimal.Zero, prov, &UnsupportedCurrencyError{Code: to}
	}
	if _, ok := c.registry.Lookup(from); !ok {
		return decimal.Zero, prov, &UnsupportedCurrencyError{Code: from}
	}

	if from == to {
		return amount.RoundBank(toDef.Exponent), prov, nil
	}

	fromRate, ok := table.rate(from)
	if !ok {
		return decimal.Zero, prov, &UnsupportedCurrencyError{Code: from}
	}
	toRate, ok := table.rate(to)
	if !ok {
		return decimal.Zero, prov, &UnsupportedCurrencyError{Code: to}
	}

	converted := amount.
		Mul(decimal.NewFromFloat(toRate)).
		Div(decimal.NewFromFloat(fromRate))
	return converted.RoundBank(toDef.Exponent), prov, nil
}

// pickTable chooses between the live and fallback tables.
func (c *Converter) pickTable(live *RateTable) (RateTable, Provenance) {
	if live == nil {
		return c.fallback, RateSourceFallback
	}
	if c.validity > 0 && c.now().Sub(live.FetchedAt) > c.validity {
		return c.fallback, RateSourceFallback
	}
	return *live, RateSourceLive
}

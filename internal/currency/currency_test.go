package currency

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Definition{
		{Code: "USD", Symbol: "$", Aliases: []string{"US$"}, Exponent: 2},
		{Code: "EUR", Symbol: "€", Exponent: 2, EuropeanGrouping: true},
		{Code: "GBP", Symbol: "£", Exponent: 2},
		{Code: "JPY", Symbol: "¥", Exponent: 0},
		{Code: "CAD", Symbol: "C$", Exponent: 2},
		{Code: "CHF", Aliases: []string{"Fr."}, Exponent: 2, EuropeanGrouping: true},
		{Code: "SEK", Symbol: "kr", Exponent: 2, EuropeanGrouping: true},
	}, "USD")
	require.NoError(t, err)
	return reg
}

func TestRegistry_Detect(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name          string
		text          string
		want          Code
		wantDefaulted bool
		wantAdjacent  bool
	}{
		{
			name:         "euro suffix",
			text:         "Total: 12,50€",
			want:         "EUR",
			wantAdjacent: true,
		},
		{
			name:         "yen prefix",
			text:         "Total: ¥1,200",
			want:         "JPY",
			wantAdjacent: true,
		},
		{
			name:         "dollar with space",
			text:         "TOTAL $ 42.00",
			want:         "USD",
			wantAdjacent: true,
		},
		{
			name:         "longest token wins over dollar",
			text:         "C$ 20.00",
			want:         "CAD",
			wantAdjacent: true,
		},
		{
			name: "iso code on word boundary",
			text: "All prices in CHF today",
			want: "CHF",
		},
		{
			name:         "adjacent symbol beats free-floating code",
			text:         "Receipt (EUR account) total 12,50£",
			want:         "GBP",
			wantAdjacent: true,
		},
		{
			name:          "no marker falls back to default",
			text:          "corner shop cash sale",
			want:          "USD",
			wantDefaulted: true,
		},
		{
			name: "code not embedded in word",
			text: "HEURISTIC text with eur inside words only: EUR",
			want: "EUR",
		},
		{
			name:          "alphabetic symbol not embedded in word",
			text:          "KROGER\nMILK 3.99\nTOTAL 45.20",
			want:          "USD",
			wantDefaulted: true,
		},
		{
			name:         "alphabetic symbol on word boundary",
			text:         "Belopp 120 kr",
			want:         "SEK",
			wantAdjacent: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := reg.Detect(tt.text)
			assert.Equal(t, tt.want, m.Code)
			assert.Equal(t, tt.wantDefaulted, m.Defaulted)
			assert.Equal(t, tt.wantAdjacent, m.AdjacentToNumber)
		})
	}
}

func TestParseAmount(t *testing.T) {
	reg := testRegistry(t)
	usd, _ := reg.Lookup("USD")
	eur, _ := reg.Lookup("EUR")
	jpy, _ := reg.Lookup("JPY")

	tests := []struct {
		name string
		in   string
		def  Definition
		want string
	}{
		{name: "us grouping with cents", in: "1,234.56", def: usd, want: "1234.56"},
		{name: "european grouping with cents", in: "1.234,56", def: eur, want: "1234.56"},
		{name: "comma decimal", in: "12,50", def: eur, want: "12.5"},
		{name: "comma decimal under us currency", in: "12,50", def: usd, want: "12.5"},
		{name: "ambiguous comma resolves by us convention", in: "1,234", def: usd, want: "1234"},
		{name: "ambiguous dot resolves by european convention", in: "1.234", def: eur, want: "1234"},
		{name: "yen grouping", in: "1,200", def: jpy, want: "1200"},
		{name: "repeated separators are grouping", in: "1.234.567", def: usd, want: "1234567"},
		{name: "plain decimal", in: "4.50", def: usd, want: "4.5"},
		{name: "negative", in: "-42.10", def: usd, want: "-42.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.def)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}

	_, err := ParseAmount("", usd)
	assert.Error(t, err)
	_, err = ParseAmount("abc", usd)
	assert.Error(t, err)
}

func testTable(fetched time.Time) RateTable {
	return RateTable{
		Base: "USD",
		Rates: map[Code]float64{
			"EUR": 0.85,
			"GBP": 0.73,
			"JPY": 110.0,
		},
		FetchedAt: fetched,
	}
}

func TestConverter_Convert(t *testing.T) {
	reg := testRegistry(t)
	conv := NewConverter(reg, testTable(time.Time{}), time.Hour)

	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	conv.now = func() time.Time { return now }

	live := testTable(now.Add(-10 * time.Minute))

	t.Run("cross rate via base", func(t *testing.T) {
		got, prov, err := conv.Convert(decimal.NewFromInt(100), "USD", "EUR", &live)
		require.NoError(t, err)
		assert.Equal(t, RateSourceLive, prov)
		assert.True(t, got.Equal(decimal.NewFromInt(85)), "got %s", got)
	})

	t.Run("target precision respected", func(t *testing.T) {
		got, _, err := conv.Convert(decimal.NewFromInt(100), "USD", "JPY", &live)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(11000)), "got %s", got)
		assert.Zero(t, got.Exponent())
	})

	t.Run("round half to even", func(t *testing.T) {
		// 2.345 USD -> USD keeps the amount but rounds to 2 digits.
		got, _, err := conv.Convert(decimal.RequireFromString("2.345"), "USD", "USD", &live)
		require.NoError(t, err)
		assert.Equal(t, "2.34", got.StringFixed(2))

		got, _, err = conv.Convert(decimal.RequireFromString("2.355"), "USD", "USD", &live)
		require.NoError(t, err)
		assert.Equal(t, "2.36", got.StringFixed(2))
	})

	t.Run("stale table falls back silently", func(t *testing.T) {
		stale := testTable(now.Add(-2 * time.Hour))
		_, prov, err := conv.Convert(decimal.NewFromInt(10), "USD", "EUR", &stale)
		require.NoError(t, err)
		assert.Equal(t, RateSourceFallback, prov)
	})

	t.Run("missing table falls back silently", func(t *testing.T) {
		_, prov, err := conv.Convert(decimal.NewFromInt(10), "USD", "EUR", nil)
		require.NoError(t, err)
		assert.Equal(t, RateSourceFallback, prov)
	})

	t.Run("unsupported code", func(t *testing.T) {
		_, _, err := conv.Convert(decimal.NewFromInt(10), "USD", "XXX", &live)
		var unsupported *UnsupportedCurrencyError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, Code("XXX"), unsupported.Code)
	})

	t.Run("code absent from rate table", func(t *testing.T) {
		// CAD is registered but the table has no rate for it.
		_, _, err := conv.Convert(decimal.NewFromInt(10), "CAD", "EUR", &live)
		var unsupported *UnsupportedCurrencyError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, Code("CAD"), unsupported.Code)
	})
}

func TestConverter_TableProvenance(t *testing.T) {
	reg := testRegistry(t)
	conv := NewConverter(reg, testTable(time.Time{}), time.Hour)

	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	conv.now = func() time.Time { return now }

	fresh := testTable(now.Add(-10 * time.Minute))
	stale := testTable(now.Add(-2 * time.Hour))

	assert.Equal(t, RateSourceLive, conv.TableProvenance(&fresh))
	assert.Equal(t, RateSourceFallback, conv.TableProvenance(&stale))
	assert.Equal(t, RateSourceFallback, conv.TableProvenance(nil))
}

func TestConverter_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	conv := NewConverter(reg, testTable(time.Time{}), 0)

	pairs := [][2]Code{{"USD", "EUR"}, {"EUR", "GBP"}, {"USD", "JPY"}, {"GBP", "JPY"}}
	start := decimal.RequireFromString("123.45")

	for _, pair := range pairs {
		from, to := pair[0], pair[1]
		there, _, err := conv.Convert(start, from, to, nil)
		require.NoError(t, err)
		back, _, err := conv.Convert(there, to, from, nil)
		require.NoError(t, err)

		// Round-trip must land within one unit of the source precision.
		def, ok := reg.Lookup(from)
		require.True(t, ok)
		unit := decimal.New(1, -def.Exponent)
		diff := back.Sub(start).Abs()
		assert.True(t, diff.LessThanOrEqual(unit),
			"%s -> %s -> %s drifted by %s", from, to, from, diff)
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(nil, "USD")
	assert.Error(t, err)

	_, err = NewRegistry([]Definition{{Code: "USD", Symbol: "$"}}, "EUR")
	assert.Error(t, err, "default must be defined")

	_, err = NewRegistry([]Definition{
		{Code: "USD", Symbol: "$"},
		{Code: "USD", Symbol: "$"},
	}, "USD")
	assert.Error(t, err, "duplicate codes rejected")
}

func TestUnsupportedCurrencyError_Message(t *testing.T) {
	err := error(&UnsupportedCurrencyError{Code: "ZZZ"})
	assert.Equal(t, "unsupported currency: ZZZ", err.Error())
	assert.True(t, errors.As(err, new(*UnsupportedCurrencyError)))
}

// Package config provides the immutable engine configuration: the supported
// currency registry, language stop-word lists, category keyword tables and
// extraction tunables. Defaults are embedded; individual settings can be
// overridden through RECEIPTS_* environment variables.
package config

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/dvloznov/receipt-tracker/internal/currency"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/language"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// envPrefix namespaces the environment variable overrides, e.g.
// RECEIPTS_DEFAULT_CURRENCY=EUR.
const envPrefix = "RECEIPTS_"

// Config is the process-wide engine configuration. It is loaded once and
// treated as immutable afterwards.
type Config struct {
	DefaultCurrency    string  `koanf:"default_currency"`
	VendorLineWindow   int     `koanf:"vendor_line_window"`
	MinLanguageTokens  int     `koanf:"min_language_tokens"`
	MinDocumentLength  int     `koanf:"min_document_length"`
	MinPlausibleAmount float64 `koanf:"min_plausible_amount"`
	MaxPlausibleAmount float64 `koanf:"max_plausible_amount"`

	RateValidity time.Duration `koanf:"rate_validity"`
	RateTable    RateTable     `koanf:"rate_table"`

	Currencies []Currency     `koanf:"currencies"`
	Languages  []Language     `koanf:"languages"`
	Categories []CategoryRule `koanf:"categories"`
}

// RateTable is the configured fallback exchange-rate snapshot.
type RateTable struct {
	Base  string             `koanf:"base"`
	Rates map[string]float64 `koanf:"rates"`
}

// Currency is one supported-currency entry.
type Currency struct {
	Code             string   `koanf:"code"`
	Symbol           string   `koanf:"symbol"`
	Aliases          []string `koanf:"aliases"`
	Exponent         int32    `koanf:"exponent"`
	EuropeanGrouping bool     `koanf:"european_grouping"`
}

// Language is one stop-word profile.
type Language struct {
	Code      string   `koanf:"code"`
	StopWords []string `koanf:"stop_words"`
}

// CategoryRule maps a category name to its per-language trigger keywords.
type CategoryRule struct {
	Name     string              `koanf:"name"`
	Keywords map[string][]string `koanf:"keywords"`
}

// Load reads the embedded defaults and applies RECEIPTS_* environment
// overrides on top.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config.Load: parse embedded defaults: %w", err)
	}

	// Environment variables override scalar settings only; the currency,
	// language and category tables are config-file territory.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config.Load: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultCurrency == "" {
		return fmt.Errorf("default_currency is required")
	}
	if c.VendorLineWindow <= 0 {
		return fmt.Errorf("vendor_line_window must be positive, got %d", c.VendorLineWindow)
	}
	if len(c.Currencies) == 0 {
		return fmt.Errorf("at least one currency must be defined")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language must be defined")
	}
	if c.RateTable.Base == "" {
		return fmt.Errorf("rate_table.base is required")
	}
	for _, rule := range c.Categories {
		if _, err := domain.ParseCategory(rule.Name); err != nil {
			return err
		}
	}
	return nil
}

// CurrencyRegistry builds the immutable currency registry.
func (c *Config) CurrencyRegistry() (*currency.Registry, error) {
	defs := make([]currency.Definition, 0, len(c.Currencies))
	for _, cc := range c.Currencies {
		defs = append(defs, currency.Definition{
			Code:             currency.Code(cc.Code),
			Symbol:           cc.Symbol,
			Aliases:          cc.Aliases,
			Exponent:         cc.Exponent,
			EuropeanGrouping: cc.EuropeanGrouping,
		})
	}
	return currency.NewRegistry(defs, currency.Code(c.DefaultCurrency))
}

// FallbackRateTable returns the configured fallback table. Its fetch time is
// zero: it is never considered fresh, only usable as a last resort.
func (c *Config) FallbackRateTable() currency.RateTable {
	rates := make(map[currency.Code]float64, len(c.RateTable.Rates))
	for code, rate := range c.RateTable.Rates {
		rates[currency.Code(code)] = rate
	}
	return currency.RateTable{
		Base:  currency.Code(c.RateTable.Base),
		Rates: rates,
	}
}

// Converter wires the registry, fallback table and validity window together.
func (c *Config) Converter() (*currency.Converter, error) {
	reg, err := c.CurrencyRegistry()
	if err != nil {
		return nil, err
	}
	return currency.NewConverter(reg, c.FallbackRateTable(), c.RateValidity), nil
}

// LanguageDetector builds the stop-word language detector.
func (c *Config) LanguageDetector() *language.Detector {
	profiles := make([]language.Profile, 0, len(c.Languages))
	for _, l := range c.Languages {
		profiles = append(profiles, language.Profile{
			Code:      language.Code(l.Code),
			StopWords: l.StopWords,
		})
	}
	return language.NewDetector(profiles, c.MinLanguageTokens)
}

// CategoryKeywords returns the Category -> Language -> keywords table.
func (c *Config) CategoryKeywords() (map[domain.Category]map[language.Code][]string, error) {
	table := make(map[domain.Category]map[language.Code][]string, len(c.Categories))
	for _, rule := range c.Categories {
		cat, err := domain.ParseCategory(rule.Name)
		if err != nil {
			return nil, fmt.Errorf("CategoryKeywords: %w", err)
		}
		byLang := make(map[language.Code][]string, len(rule.Keywords))
		for lang, words := range rule.Keywords {
			byLang[language.Code(lang)] = words
		}
		table[cat] = byLang
	}
	return table, nil
}

// Command receipts is a thin CLI around the extraction-and-analytics
// engine: it extracts a record from raw receipt text and runs searches and
// aggregations over a JSON records file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/receipt-tracker/internal/analytics"
	"github.com/dvloznov/receipt-tracker/internal/config"
	"github.com/dvloznov/receipt-tracker/internal/currency"
	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/extract"
	"github.com/dvloznov/receipt-tracker/internal/language"
	"github.com/dvloznov/receipt-tracker/internal/logger"
	"github.com/dvloznov/receipt-tracker/internal/search"
	"github.com/dvloznov/receipt-tracker/internal/sorting"
	"github.com/dvloznov/receipt-tracker/internal/store/inmemory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "receipts",
		Short:         "Extract structured records from receipt text and analyze spend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newExtractCmd(),
		newSearchCmd(),
		newSummaryCmd(),
		newTopVendorsCmd(),
		newTrendCmd(),
		newStatsCmd(),
	)
	return root
}

func newExtractCmd() *cobra.Command {
	var langHint string

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract a structured record from receipt text (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			text, err := readInput(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ex, err := extract.New(cfg, logger.ForComponent(log, "extract"))
			if err != nil {
				return err
			}

			rec, err := ex.Extract(text, language.Code(langHint))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&langHint, "lang", "", "language hint (en, es, fr, de); detected when empty")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		recordsPath string
		keywords    []string
		vendor      string
		category    string
		minAmount   string
		maxAmount   string
		from        string
		to          string
		sortKey     string
		desc        bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a records file with keywords and structured filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}

			q := search.Query{
				Keywords:       keywords,
				VendorContains: vendor,
			}
			if category != "" {
				cat, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				q.Category = &cat
			}
			if q.MinAmount, err = parseAmountFlag(minAmount); err != nil {
				return err
			}
			if q.MaxAmount, err = parseAmountFlag(maxAmount); err != nil {
				return err
			}
			if q.StartDate, err = parseDateFlag(from); err != nil {
				return err
			}
			if q.EndDate, err = parseDateFlag(to); err != nil {
				return err
			}
			if q.SortKey, err = parseSortKey(sortKey); err != nil {
				return err
			}
			if desc {
				q.Direction = sorting.Descending
			}

			results, count := search.Search(records, q)
			fmt.Fprintf(cmd.OutOrStdout(), "%d match(es)\n", count)
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&recordsPath, "records", "", "path to JSON records file (required)")
	cmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "keyword to match (repeatable, OR-combined)")
	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor substring filter")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().StringVar(&minAmount, "min-amount", "", "minimum amount")
	cmd.Flags().StringVar(&maxAmount, "max-amount", "", "maximum amount")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sortKey, "sort", "relevance", "sort key: relevance, vendor, date, amount, category, confidence")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.MarkFlagRequired("records")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var (
		recordsPath string
		base        string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total, count and average over a records file in one currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			conv, err := cfg.Converter()
			if err != nil {
				return err
			}
			if base == "" {
				base = cfg.DefaultCurrency
			}

			s := analytics.Summarize(records, currency.Code(base), conv, nil)
			if s.Excluded > 0 {
				log := logger.New()
				log.Warn().Int("excluded", s.Excluded).Msg("records excluded from total: currency not convertible")
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().StringVar(&recordsPath, "records", "", "path to JSON records file (required)")
	cmd.Flags().StringVar(&base, "base", "", "base currency (default from config)")
	cmd.MarkFlagRequired("records")
	return cmd
}

func newTopVendorsCmd() *cobra.Command {
	var (
		recordsPath string
		n           int
	)

	cmd := &cobra.Command{
		Use:   "top-vendors",
		Short: "Rank vendors by total spend",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analytics.TopVendors(records, n))
		},
	}
	cmd.Flags().StringVar(&recordsPath, "records", "", "path to JSON records file (required)")
	cmd.Flags().IntVarP(&n, "limit", "n", 10, "number of vendors to show")
	cmd.MarkFlagRequired("records")
	return cmd
}

func newTrendCmd() *cobra.Command {
	var (
		recordsPath string
		window      int
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Monthly spending trend with a moving average",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analytics.MonthlyTrend(records, window))
		},
	}
	cmd.Flags().StringVar(&recordsPath, "records", "", "path to JSON records file (required)")
	cmd.Flags().IntVar(&window, "window", 3, "moving-average window in months")
	cmd.MarkFlagRequired("records")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var recordsPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Basic distribution statistics over record amounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd.Context(), recordsPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analytics.BasicStats(records))
		},
	}
	cmd.Flags().StringVar(&recordsPath, "records", "", "path to JSON records file (required)")
	cmd.MarkFlagRequired("records")
	return cmd
}

// loadRecords reads a JSON records file through the in-memory store, so the
// engines operate on the same kind of snapshot the service layer hands out.
func loadRecords(ctx context.Context, path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadRecords: %w", err)
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("loadRecords: parse %s: %w", path, err)
	}

	st := inmemory.NewStore()
	for _, rec := range records {
		if err := st.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("loadRecords: %w", err)
		}
	}
	return st.Snapshot(ctx)
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmountFlag(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return &d, nil
}

func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

func parseSortKey(s string) (search.SortKey, error) {
	switch s {
	case "relevance", "":
		return search.SortByRelevance, nil
	case "vendor":
		return search.SortByVendor, nil
	case "date":
		return search.SortByDate, nil
	case "amount":
		return search.SortByAmount, nil
	case "category":
		return search.SortByCategory, nil
	case "confidence":
		return search.SortByConfidence, nil
	}
	return 0, fmt.Errorf("unknown sort key %q", s)
}

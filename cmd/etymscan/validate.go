package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etymscan/etymscan/internal/config"
	"github.com/etymscan/etymscan/internal/database"
	"github.com/etymscan/etymscan/internal/fetcher"
	"github.com/etymscan/etymscan/internal/language"
	"github.com/etymscan/etymscan/internal/log"
	"github.com/etymscan/etymscan/internal/report"
	"github.com/etymscan/etymscan/internal/validator"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [search-url]",
		Short: "Cross-validate records against a reference dictionary",
		Long: `Validate looks each local record up in a reference dictionary's search
endpoint and classifies the result.

It tries the record's numeric key first. A key that renders as a primary
entry confirms the record outright; a key that renders only as a
cross-reference is noted. When the key is absent or inconclusive, the
record's headword is searched and its attestations matched by language
and spelling. Every record ends in exactly one match status.

Input comes from a CSV file (--input) or from the record database built
by a previous crawl (--db).

Examples:
  # Validate a CSV of records against the reference dictionary
  etymscan validate --input records.csv "https://example.org/dict_query.py"

  # Validate records from a crawl database, write a Markdown report
  etymscan validate --db ~/.local/share/etymscan --markdown -o report.md "https://example.org/dict_query.py"

  # Exact language names only (no substring matching)
  etymscan validate --strict --input records.csv "https://example.org/dict_query.py"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidateCmd,
	}

	// Input flags
	cmd.Flags().StringP("input", "i", "",
		"CSV file of records to validate (mutually exclusive with --db)")
	cmd.Flags().String("db", "",
		"Record database directory from a previous crawl")
	cmd.Flags().String("languages", "",
		"YAML file replacing the built-in language mapping table")

	// Lookup behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each search request")
	cmd.Flags().IntP("attempts", "a", config.DefaultMaxAttempts,
		"Retry attempts per search")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Minimum spacing between requests")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Parallel query limit")
	cmd.Flags().Bool("strict", false,
		"Disable flexible substring language matching")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildValidateConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.SearchURL == "" {
		return errors.New("no search URL provided (pass it as an argument or set validate.search_url in .etymscan)")
	}
	if cfg.InputFile == "" && cfg.DBDir == "" {
		return errors.New("no input provided (use --input for a CSV file or --db for a crawl database)")
	}
	if cfg.InputFile != "" && cfg.DBDir != "" {
		return errors.New("--input and --db are mutually exclusive")
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runValidate(ctx, cfg, logger)
}

// buildValidateConfig creates a Config from the config file and flags.
func buildValidateConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var err error

	if cfg.InputFile, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if flags.Changed("db") {
		if cfg.DBDir, err = flags.GetString("db"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("languages") {
		if cfg.LanguageFile, err = flags.GetString("languages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("attempts") {
		if cfg.MaxAttempts, err = flags.GetInt("attempts"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("strict") {
		if cfg.StrictLanguage, err = flags.GetBool("strict"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.SearchURL = args[0]
	}

	return cfg, nil
}

// runValidate executes the validation.
func runValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	queries, err := loadQueries(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("no records to validate")
	}

	mapper := language.DefaultMapper()
	if cfg.LanguageFile != "" {
		mapper, err = language.LoadMapper(cfg.LanguageFile)
		if err != nil {
			return err
		}
	}

	f := fetcher.New(
		fetcher.WithAttemptTimeout(cfg.Timeout),
		fetcher.WithMaxAttempts(cfg.MaxAttempts),
		fetcher.WithBackoffBase(cfg.BackoffBase),
		fetcher.WithRequestDelay(cfg.RequestDelay),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	)

	v, err := validator.New(f, mapper, cfg.SearchURL,
		validator.WithStrictLanguage(cfg.StrictLanguage),
		validator.WithValidatorLogger(logger),
	)
	if err != nil {
		return err
	}

	runner := validator.NewRunner(v,
		validator.WithConcurrency(cfg.Concurrency),
		validator.WithRunnerLogger(logger),
	)

	fmt.Printf("Validating %d records (concurrency: %d)...\n", len(queries), cfg.Concurrency)
	startTime := time.Now()

	results, err := runner.Run(ctx, queries)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("validation failed: %w", err)
	}
	interrupted := errors.Is(err, context.Canceled)

	elapsed := time.Since(startTime)
	if interrupted {
		fmt.Printf("Validation interrupted after %s\n\n", elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("Validation completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	summary := validator.Summarize(results)
	fmt.Printf("Matched %d of %d records (%.1f%%)\n", summary.Matched, summary.Total, summary.MatchRate)
	if failed := runner.Failed(); len(failed) > 0 {
		fmt.Printf("%d queries failed and were skipped\n", len(failed))
	}

	return outputValidationReport(cfg, report.NewValidation(results, runner.Failed()))
}

// loadQueries reads validation input from the CSV file or the record
// database.
func loadQueries(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]validator.Query, error) {
	if cfg.InputFile != "" {
		f, err := os.Open(cfg.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		return validator.LoadQueriesCSV(f)
	}

	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	queries, err := db.Queries(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded records from database", "dir", cfg.DBDir, "count", len(queries))
	return queries, nil
}

// outputValidationReport writes the validation report in the requested
// format. CSV is the default.
func outputValidationReport(cfg *config.Config, v *report.Validation) error {
	output, closer, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closer()

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewCSVWriter(output)
	}

	_, err = w.WriteValidation(v)
	return err
}

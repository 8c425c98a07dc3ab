package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/etymscan/etymscan/internal/checkpoint"
	"github.com/etymscan/etymscan/internal/config"
	"github.com/etymscan/etymscan/internal/crawler"
	"github.com/etymscan/etymscan/internal/database"
	"github.com/etymscan/etymscan/internal/fetcher"
	"github.com/etymscan/etymscan/internal/log"
	"github.com/etymscan/etymscan/internal/record"
	"github.com/etymscan/etymscan/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [listing-url]",
		Short: "Crawl a paged lexicographic database into structured records",
		Long: `Crawl walks a paged listing, extracts every record on each page, and
expands sub-entries depth-first by following their expansion links.

Progress is checkpointed after every page, so an interrupted or
budget-limited run resumes from where it stopped. Records already seen
(by content fingerprint) are marked as duplicates and never re-expanded.

Examples:
  # Crawl from the first listing page, default budget
  etymscan crawl "https://example.org/query.py?off=_&first=1"

  # Resume with a larger per-run page budget and persist to SQLite
  etymscan crawl --pages 200 --db ~/.local/share/etymscan "https://example.org/query.py?off=_&first=1"

  # Write a Markdown summary instead of CSV
  etymscan crawl --markdown -o report.md "https://example.org/query.py?off=_&first=1"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each fetch attempt")
	cmd.Flags().IntP("attempts", "a", config.DefaultMaxAttempts,
		"Retry attempts per URL")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Minimum spacing between requests")
	cmd.Flags().Duration("depth-delay", config.DefaultDepthDelay,
		"Extra delay per sub-entry recursion level")

	// Crawl behavior flags
	cmd.Flags().IntP("pages", "p", config.DefaultPageBudget,
		"Maximum listing pages per run (crawl resumes from checkpoint)")
	cmd.Flags().Int("page-size", config.DefaultPageSize,
		"Records per listing page")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum sub-entry expansion depth")
	cmd.Flags().String("checkpoint", "",
		"Checkpoint file path (default: XDG data directory)")

	// Storage flags
	cmd.Flags().String("db", "",
		"Directory for the SQLite record store (records are persisted after every page)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.StartURL == "" {
		return errors.New("no listing URL provided (pass it as an argument or set crawl.start_url in .etymscan)")
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Interrupting a crawl is routine; the checkpoint makes it cheap.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildCrawlConfig creates a Config from the config file and flags.
// Precedence, weakest first: defaults, config file, flags the user set.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var err error

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
	if flags.Changed("depth-delay") {
		if cfg.DepthDelay, err = flags.GetDuration("depth-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pages") {
		if cfg.PageBudget, err = flags.GetInt("pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-size") {
		if cfg.PageSize, err = flags.GetInt("page-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("checkpoint") {
		if cfg.CheckpointFile, err = flags.GetString("checkpoint"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db") {
		if cfg.DBDir, err = flags.GetString("db"); err != nil {
			return nil, err
		}
	}
	cfg.SaveToDB = cfg.DBDir != ""

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
		cfg.StartURL = args[0]
	}
	if cfg.CheckpointFile == "" {
		cfg.CheckpointFile = config.DefaultCheckpointFile()
	}

	return cfg, nil
}

// applyConfigFile loads the optional .etymscan file onto cfg.
// An explicitly specified file must exist; the searched default
// locations may not.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}

	if path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
		return nil
	}

	path, err = config.FindConfigFile()
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	return nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	f := fetcher.New(
		fetcher.WithAttemptTimeout(cfg.Timeout),
		fetcher.WithMaxAttempts(cfg.MaxAttempts),
		fetcher.WithBackoffBase(cfg.BackoffBase),
		fetcher.WithRequestDelay(cfg.RequestDelay),
		fetcher.WithDepthDelay(cfg.DepthDelay),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	)

	if dir := filepath.Dir(cfg.CheckpointFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}
	store := checkpoint.NewStore(cfg.CheckpointFile)

	opts := []crawler.Option{
		crawler.WithCheckpoint(store),
		crawler.WithLogger(logger),
		crawler.WithPageBudget(cfg.PageBudget),
		crawler.WithPageSize(cfg.PageSize),
		crawler.WithMaxDepth(cfg.MaxDepth),
	}

	// Persist the document snapshot after every page so a crash loses
	// at most one page of work.
	var db *database.RecordDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		opts = append(opts, crawler.WithPageHook(func(doc *record.Document) error {
			return db.SaveDocument(ctx, doc)
		}))
	}

	c := crawler.New(f, opts...)

	fmt.Printf("Crawling %s...\n", cfg.StartURL)
	startTime := time.Now()

	doc, err := c.Crawl(ctx, cfg.StartURL)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl failed: %w", err)
	}
	interrupted := errors.Is(err, context.Canceled)

	elapsed := time.Since(startTime)
	if interrupted {
		fmt.Printf("Crawl interrupted after %s; progress checkpointed\n\n", elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	if db != nil && doc != nil {
		if err := db.SaveDocument(ctx, doc); err != nil {
			logger.Error("failed to save records", "error", err)
		}
	}

	if doc != nil {
		if err := outputCrawlReport(cfg, doc); err != nil {
			return fmt.Errorf("report failed: %w", err)
		}
	}
	return nil
}

// outputCrawlReport writes the crawl document in the requested format.
// CSV is the default: the flat record table is the artifact the
// validate command and downstream analysis consume.
func outputCrawlReport(cfg *config.Config, doc *record.Document) error {
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

	if _, err := w.WriteDocument(doc); err != nil {
		return err
	}

	// The CSV record table has no room for failures; write them as a
	// sidecar next to the report file.
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile != "" && len(doc.Failed) > 0 {
		failedPath := cfg.ReportFile + ".failed.csv"
		ff, err := os.OpenFile(failedPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", failedPath, err)
		}
		defer ff.Close()
		if err := report.WriteFailedRequests(ff, doc.Failed); err != nil {
			return err
		}
	}
	return nil
}

// openReportOutput opens the report destination: the given file, or
// stdout when path is empty. The returned closer is always safe to call.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

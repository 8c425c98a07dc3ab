package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The network-facing defaults are
// deliberately conservative: the reference endpoints are slow academic
// CGI services that must not be hammered.
const (
	// DefaultTimeout bounds each individual fetch attempt. The source
	// renders entries through a CGI pipeline that regularly takes tens
	// of seconds under load, so a short timeout would misclassify slow
	// pages as failures.
	DefaultTimeout = 45 * time.Second

	// DefaultMaxAttempts is the retry limit per URL.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase scales the exponential retry backoff.
	DefaultBackoffBase = 2 * time.Second

	// DefaultRequestDelay is the minimum spacing between any two
	// requests. 800ms keeps a full crawl overnight-sized without
	// stressing the endpoint.
	DefaultRequestDelay = 800 * time.Millisecond

	// DefaultDepthDelay is the extra politeness delay per recursion
	// depth level on sub-entry fetches.
	DefaultDepthDelay = 100 * time.Millisecond

	// DefaultPageBudget bounds listing pages per run. The crawl
	// resumes from checkpoint, so a bounded run is a segment, not a
	// truncation.
	DefaultPageBudget = 50

	// DefaultPageSize is the number of records per listing page.
	DefaultPageSize = 20

	// DefaultMaxDepth bounds sub-entry expansion as a backstop against
	// records that never produce a dedup fingerprint.
	DefaultMaxDepth = 10

	// DefaultConcurrency is the validator's parallel query limit.
	// Requests are still spaced by the shared limiter; this only caps
	// in-flight retry loops.
	DefaultConcurrency = 4

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies etymscan in HTTP requests, so
	// operators can spot scanner traffic in their logs.
	DefaultUserAgent = "etymscan/1.0 (+https://github.com/etymscan/etymscan)"

	// AppName is the application name used for XDG directory paths.
	AppName = "etymscan"
)

// Config holds all configuration options for etymscan.
// It is populated from the optional config file and CLI flags, then
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested
// structs (e.g., CrawlConfig, ValidateConfig) for simplicity. The
// number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// StartURL is the paged listing the crawl starts from.
	StartURL string

	// SearchURL is the reference dictionary's search endpoint used by
	// the validator.
	SearchURL string

	// InputFile is a CSV of local records to validate. When empty the
	// validator reads its input from the record database.
	InputFile string

	// Timeout bounds each individual fetch attempt.
	Timeout time.Duration

	// MaxAttempts is the retry limit per URL.
	MaxAttempts int

	// BackoffBase scales the exponential retry backoff.
	BackoffBase time.Duration

	// RequestDelay is the minimum spacing between any two requests
	// issued by the process.
	RequestDelay time.Duration

	// DepthDelay is the extra delay per recursion depth level.
	DepthDelay time.Duration

	// PageBudget limits listing pages per crawl run.
	PageBudget int

	// PageSize is the number of records per listing page.
	PageSize int

	// MaxDepth bounds sub-entry expansion.
	MaxDepth int

	// Concurrency is the validator's parallel query limit.
	Concurrency int

	// StrictLanguage disables the flexible substring tier of language
	// matching.
	StrictLanguage bool

	// LanguageFile is an optional YAML file replacing the built-in
	// language mapping table.
	LanguageFile string

	// CheckpointFile is where crawl progress is persisted. Empty means
	// the default location under the XDG data directory.
	CheckpointFile string

	// DBDir is the directory for the SQLite record store. When set,
	// crawled records are persisted there.
	DBDir string

	// SaveToDB indicates whether to persist crawled records.
	// Automatically true when DBDir is configured.
	SaveToDB bool

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report goes to stdout.
	ReportFile string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is an explicit config file location. When empty,
	// the tool searches the working directory then the home directory.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		MaxAttempts:  DefaultMaxAttempts,
		BackoffBase:  DefaultBackoffBase,
		RequestDelay: DefaultRequestDelay,
		DepthDelay:   DefaultDepthDelay,
		PageBudget:   DefaultPageBudget,
		PageSize:     DefaultPageSize,
		MaxDepth:     DefaultMaxDepth,
		Concurrency:  DefaultConcurrency,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for etymscan.
// On Linux: ~/.local/share/etymscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for etymscan.
// On Linux: ~/.config/etymscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultCheckpointFile returns the default checkpoint location under
// the XDG data directory.
func DefaultCheckpointFile() string {
	return filepath.Join(XDGDataDir(), "checkpoint.json")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.RequestDelay < 0 || c.DepthDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.PageBudget <= 0 {
		return ErrInvalidPageBudget
	}
	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

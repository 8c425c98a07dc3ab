package config

import "errors"

var (
	// ErrInvalidTimeout means the timeout is zero or negative.
	ErrInvalidTimeout = errors.New("config: timeout must be positive")

	// ErrInvalidMaxAttempts means the retry limit is zero or negative.
	ErrInvalidMaxAttempts = errors.New("config: max attempts must be positive")

	// ErrInvalidRequestDelay means a request delay is negative.
	ErrInvalidRequestDelay = errors.New("config: request delay must not be negative")

	// ErrInvalidPageBudget means the per-run page budget is zero or
	// negative.
	ErrInvalidPageBudget = errors.New("config: page budget must be positive")

	// ErrInvalidPageSize means the listing page size is zero or
	// negative.
	ErrInvalidPageSize = errors.New("config: page size must be positive")

	// ErrInvalidConcurrency means the validator concurrency is zero or
	// negative.
	ErrInvalidConcurrency = errors.New("config: concurrency must be positive")

	// ErrInvalidMaxBodySize means the body size limit is negative.
	ErrInvalidMaxBodySize = errors.New("config: max body size must not be negative")

	// ErrConflictingReportFormats means both JSON and Markdown report
	// formats were requested.
	ErrConflictingReportFormats = errors.New("config: JSON and Markdown report formats are mutually exclusive")

	// ErrConfigNotFound means no config file exists at the searched
	// locations. Callers treat this as "use defaults", not a failure.
	ErrConfigNotFound = errors.New("config: config file not found")
)

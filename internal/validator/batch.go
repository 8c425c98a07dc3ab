package validator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/etymscan/etymscan/internal/language"
)

// FailedQuery is one entry in the failed-query log: a query abandoned
// after its fetches exhausted every retry.
type FailedQuery struct {
	// LocalID identifies the record whose validation failed.
	LocalID string `json:"local_id"`

	// Error is the terminal error text.
	Error string `json:"error"`

	// Timestamp is when the query was abandoned.
	Timestamp time.Time `json:"timestamp"`
}

// Runner validates query batches with bounded parallelism.
//
// Design decision: Parallel validation is safe where parallel crawling
// is not, because queries are independent and the shared fetcher's
// limiter still spaces individual requests against the endpoint. The
// concurrency limit caps retry pile-ups, not request rate.
type Runner struct {
	// validator resolves individual queries.
	validator *Validator

	// concurrency is the maximum number of in-flight queries.
	concurrency int

	// logger receives batch progress events.
	logger *slog.Logger

	// failed collects abandoned queries.
	failed []FailedQuery
	mu     sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets the maximum number of in-flight queries.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunnerLogger sets the batch progress logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner around a Validator.
func NewRunner(v *Validator, opts ...RunnerOption) *Runner {
	r := &Runner{
		validator:   v,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates every query and returns the results in input order.
// A query whose fetches fail is logged and skipped, never fatal to the
// batch; only cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, queries []Query) ([]MatchResult, error) {
	r.logger.Info("starting validation batch",
		"queries", len(queries),
		"concurrency", r.concurrency)

	results := make([]MatchResult, len(queries))
	done := make([]bool, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := r.validator.Validate(ctx, q)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.recordFailure(q, err)
				return nil
			}
			results[i] = res
			done[i] = true
			return nil
		})
	}

	err := g.Wait()

	out := make([]MatchResult, 0, len(queries))
	for i := range results {
		if done[i] {
			out = append(out, results[i])
		}
	}

	r.logger.Info("validation batch finished",
		"results", len(out),
		"failed", len(r.Failed()))
	return out, err
}

// recordFailure appends to the failed-query log.
func (r *Runner) recordFailure(q Query, err error) {
	r.logger.Warn("query abandoned", "id", q.LocalID, "error", err)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, FailedQuery{
		LocalID:   q.LocalID,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// Failed returns a copy of the failed-query log.
func (r *Runner) Failed() []FailedQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FailedQuery, len(r.failed))
	copy(out, r.failed)
	return out
}

// Summary aggregates a batch's results per status.
type Summary struct {
	// Total is the number of results summarized.
	Total int `json:"total"`

	// Counts holds the per-status tallies.
	Counts map[language.Status]int `json:"counts"`

	// Matched counts results whose status confirms the local record.
	Matched int `json:"matched"`

	// MatchRate is Matched over Total as a percentage.
	MatchRate float64 `json:"match_rate"`
}

// Summarize tallies results per status and computes the match rate.
// Key-confirmed and headword-confirms-key count as matches; a new key
// is a finding, not a confirmation.
func Summarize(results []MatchResult) Summary {
	s := Summary{
		Total:  len(results),
		Counts: make(map[language.Status]int),
	}
	for _, r := range results {
		s.Counts[r.Status]++
		if r.Status == language.StatusKeyConfirmed || r.Status == language.StatusHeadwordConfirmsKey {
			s.Matched++
		}
	}
	if s.Total > 0 {
		s.MatchRate = float64(s.Matched) / float64(s.Total) * 100
	}
	return s
}

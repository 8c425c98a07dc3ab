package report

import (
	"io"
	"time"

	"github.com/etymscan/etymscan/internal/record"
	"github.com/etymscan/etymscan/internal/validator"
)

// Validation bundles everything one validation run produced: the
// per-record results, the aggregate summary, and the failed-query log.
type Validation struct {
	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Summary is the per-status aggregate.
	Summary validator.Summary `json:"summary"`

	// Results holds one row per validated record, in input order.
	Results []validator.MatchResult `json:"results"`

	// Failed holds the queries abandoned after exhausted retries.
	Failed []validator.FailedQuery `json:"failed_queries,omitempty"`
}

// NewValidation assembles a Validation report from a batch run.
func NewValidation(results []validator.MatchResult, failed []validator.FailedQuery) *Validation {
	return &Validation{
		GeneratedAt: time.Now(),
		Summary:     validator.Summarize(results),
		Results:     results,
		Failed:      failed,
	}
}

// Writer renders reports in one output format.
//
// Design decision: We use an interface so the CLI can write to files,
// stdout, or several destinations at once with the same API.
type Writer interface {
	// WriteDocument outputs a crawl document.
	// Returns the number of bytes written and any error encountered.
	WriteDocument(doc *record.Document) (int, error)

	// WriteValidation outputs a validation report.
	WriteValidation(v *Validation) (int, error)
}

// MultiWriter writes to several Writers in order.
//
// Design decision: A separate type rather than io.MultiWriter because
// the Writer interface carries reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteDocument outputs the document to all configured Writers.
// It stops on the first error encountered.
func (m *MultiWriter) WriteDocument(doc *record.Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDocument(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteValidation outputs the validation report to all configured Writers.
func (m *MultiWriter) WriteValidation(v *Validation) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteValidation(v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

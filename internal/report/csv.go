package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/etymscan/etymscan/internal/record"
)

// CSVWriter outputs reports as comma-separated tables, for spreadsheet
// review and re-import as validator input.
//
// Documents are flattened: the record tree is walked depth-first and
// every record becomes one row carrying its provenance columns.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// WriteDocument outputs the flattened record tree.
func (w *CSVWriter) WriteDocument(doc *record.Document) (int, error) {
	counter := &countingWriter{inner: w.output}
	cw := csv.NewWriter(counter)

	header := []string{"page", "ordinal", "depth", "url", "fingerprint", "duplicate", "fields"}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	var writeTree func(records []*record.Record) error
	writeTree = func(records []*record.Record) error {
		for _, r := range records {
			row := []string{
				strconv.Itoa(r.Page),
				strconv.Itoa(r.Ordinal),
				strconv.Itoa(r.Depth),
				r.URL,
				r.Fingerprint,
				strconv.FormatBool(r.Duplicate),
				renderFields(r.Fields),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
			if err := writeTree(r.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeTree(doc.Records); err != nil {
		return counter.n, err
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// WriteValidation outputs the match-result table. The failed-query log
// has its own shape and goes through WriteFailedQueries.
func (w *CSVWriter) WriteValidation(v *Validation) (int, error) {
	counter := &countingWriter{inner: w.output}
	cw := csv.NewWriter(counter)

	header := []string{"local_id", "method", "status", "external_key_found", "evidence"}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	for _, r := range v.Results {
		row := []string{
			r.LocalID,
			string(r.Method),
			string(r.Status),
			r.ExternalKeyFound,
			r.Evidence,
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// WriteFailedRequests writes the crawl's failed-request log as CSV.
func WriteFailedRequests(output io.Writer, failed []record.FailedRequest) error {
	cw := csv.NewWriter(output)

	if err := cw.Write([]string{"url", "kind", "attempts", "timestamp"}); err != nil {
		return err
	}
	for _, f := range failed {
		row := []string{
			f.URL,
			string(f.Kind),
			strconv.Itoa(f.Attempts),
			f.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// renderFields folds a field list into one cell.
func renderFields(fields []record.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+"="+f.Value)
	}
	return strings.Join(parts, "; ")
}

// countingWriter tracks bytes written through it.
type countingWriter struct {
	inner io.Writer
	n     int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.inner.Write(p)
	c.n += n
	return n, err
}

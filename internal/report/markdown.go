package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/etymscan/etymscan/internal/language"
	"github.com/etymscan/etymscan/internal/record"
)

// MarkdownWriter outputs human-readable summaries, for documentation
// and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown output
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteDocument outputs the crawl metadata and the failed-request log.
// The record tree itself stays in the JSON output; markdown carries the
// overview a reader scans first.
func (w *MarkdownWriter) WriteDocument(doc *record.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + doc.Metadata.StartURL + "`"},
			{"Pages Processed", strconv.Itoa(doc.Metadata.PagesProcessed)},
			{"Total Records", strconv.Itoa(doc.Metadata.TotalRecords)},
			{"Unique Entries", strconv.Itoa(doc.Metadata.UniqueEntries)},
			{"Started", doc.Metadata.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Completed", doc.Metadata.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	if len(doc.Failed) > 0 {
		md.H2("Failed Requests")
		md.PlainText("")

		rows := make([][]string, 0, len(doc.Failed))
		for _, f := range doc.Failed {
			rows = append(rows, []string{"`" + f.URL + "`", string(f.Kind), strconv.Itoa(f.Attempts)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Kind", "Attempts"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteValidation outputs the per-status breakdown and the match rate.
func (w *MarkdownWriter) WriteValidation(v *Validation) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Validation Report")
	md.PlainText("")

	rows := make([][]string, 0, len(v.Summary.Counts)+1)
	for _, status := range language.AllStatuses() {
		if count, ok := v.Summary.Counts[status]; ok {
			rows = append(rows, []string{string(status), strconv.Itoa(count)})
		}
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(v.Summary.Total) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	md.PlainText(fmt.Sprintf("Match rate: **%.1f%%** (%d of %d records confirmed).",
		v.Summary.MatchRate, v.Summary.Matched, v.Summary.Total))
	md.PlainText("")

	if len(v.Failed) > 0 {
		md.H2("Failed Queries")
		md.PlainText("")

		failedRows := make([][]string, 0, len(v.Failed))
		for _, f := range v.Failed {
			failedRows = append(failedRows, []string{f.LocalID, f.Error})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Record", "Error"},
			Rows:   failedRows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

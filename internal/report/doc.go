// Package report renders crawl documents and validation results.
//
// Three formats are supported: JSON for tool integration, CSV for
// spreadsheet review of tabular results, and Markdown for human-readable
// summaries. A MultiWriter fans one report out to several destinations.
package report

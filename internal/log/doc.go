// Package log provides slog construction helpers for etymscan.
//
// The crawler and validator routinely log fragments of fetched HTML
// (entry text, match evidence, failed responses). A single dictionary
// entry can run to tens of kilobytes, so the handlers here truncate
// oversized string attributes before they reach the underlying
// text or JSON handler.
package log

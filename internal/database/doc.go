// Package database provides SQLite-backed storage for crawled records.
//
// The record tree is stored flat: one row per record with a parent
// reference, so the hierarchy survives while rows stay queryable. The
// store doubles as validator input since every root record carries the
// fields a validation query needs.
package database

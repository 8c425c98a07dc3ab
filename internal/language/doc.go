// Package language maps source-side language abbreviations onto
// canonical language names and variant sets, and classifies validation
// evidence into a fixed taxonomy of match statuses.
//
// The built-in table covers the Burrow & Emeneau Dravidian abbreviations
// (frontmatter §52 of the printed dictionary) but can be replaced
// entirely from a YAML file, so the matcher itself stays
// database-agnostic.
package language

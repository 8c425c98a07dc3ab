package record

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Field is a single name/value pair extracted from a source page.
// Order matters: the fingerprint is derived from the first
// identity-bearing field, so fields must be kept in page order.
type Field struct {
	// Name is the field label, normalized by stripping trailing
	// colons and surrounding whitespace.
	Name string `json:"name"`

	// Value is the field content as rendered on the page.
	Value string `json:"value"`
}

// Record is one logical dictionary entry extracted from a page.
// Records form a tree: each expandable sub-entry becomes a child.
//
// Design decision: We keep fields as an ordered slice instead of a map
// because:
//  1. The fingerprint depends on canonical field order
//  2. Output should mirror the order the source presents fields in
//  3. Field names are not guaranteed unique across databases
type Record struct {
	// URL is the query URL this record was fetched from. The same
	// logical entry can be reached through several distinct URLs, so
	// URL is provenance only and never identity.
	URL string `json:"url,omitempty"`

	// Depth is the recursion depth; 0 for records on a listing page.
	Depth int `json:"depth"`

	// Page is the listing page number the root of this tree came from.
	Page int `json:"page,omitempty"`

	// Ordinal is the record's position within its listing page (1-based).
	Ordinal int `json:"ordinal,omitempty"`

	// Fields holds the extracted name/value pairs in page order.
	Fields []Field `json:"fields"`

	// Fingerprint is the content identity hash, empty when no
	// identity-bearing field exists.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Duplicate marks a record whose fingerprint was already seen.
	// Such records are kept as child references to preserve the tree
	// structure but are never expanded.
	Duplicate bool `json:"duplicate,omitempty"`

	// Children are the expanded sub-entries discovered on this record.
	Children []*Record `json:"children,omitempty"`
}

// Get returns the value of the first field with the given name
// (case-insensitive) and whether it was present.
func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Empty reports whether the record carries no fields and no children.
// An empty record is valid output for a malformed or blank page.
func (r *Record) Empty() bool {
	return len(r.Fields) == 0 && len(r.Children) == 0
}

// freeTextFields are field names whose values vary independently of
// lexical identity and therefore never contribute to the fingerprint.
// Names are compared after normalization (lowercase, trimmed).
var freeTextFields = map[string]bool{
	"meaning":  true,
	"gloss":    true,
	"notes":    true,
	"comments": true,
}

// isIdentityField reports whether a field may contribute to the
// fingerprint. Free-text fields and external-id fields (the "number in
// ..." cross-reference keys) are excluded: two pages describing the same
// entry can disagree on both.
func isIdentityField(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if freeTextFields[n] {
		return false
	}
	return !strings.HasPrefix(n, "number in")
}

// Fingerprint computes the content identity hash for a field list.
// It scans fields in order and hashes "name:value" of the first
// non-empty identity-bearing field, typically the proto-language plus
// word form pair that heads every entry.
//
// The second return value is false when no qualifying field exists.
// Such a record can never be deduplicated and is always treated as new.
//
// Design decision: Identity is content-based, not URL-based. The source
// hierarchy exposes the same logical entry through distinct query URLs
// reached from different parents, so URL-keyed dedup would never
// terminate. The first identity-bearing field is the minimal content
// that reliably identifies an entry across every page referencing it.
func Fingerprint(fields []Field) (string, bool) {
	for _, f := range fields {
		if !isIdentityField(f.Name) {
			continue
		}
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		content := strings.TrimSpace(f.Name) + ":" + value
		sum := sha256.Sum256([]byte(content))
		return hex.EncodeToString(sum[:]), true
	}
	return "", false
}

// Stamp computes and stores the record's fingerprint.
// It returns the fingerprint and whether one could be derived.
func (r *Record) Stamp() (string, bool) {
	fp, ok := Fingerprint(r.Fields)
	if ok {
		r.Fingerprint = fp
	}
	return fp, ok
}

package language

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes one canonical language: the abbreviations that denote
// it in the source database and the variant names the reference
// dictionary may render it under.
type Entry struct {
	// Canonical is the standardized language name.
	Canonical string `yaml:"canonical"`

	// Abbreviations are the source-side short forms (e.g. "Go.").
	Abbreviations []string `yaml:"abbreviations,omitempty"`

	// Variants are alternative renderings considered the same
	// language (regional dialects, collector attributions).
	Variants []string `yaml:"variants,omitempty"`
}

// flexibleFloor is the minimum length of the shorter name for the
// flexible substring rule. Shorter fragments match too much: a
// two-character abbreviation would be contained in nearly everything.
// The floor is a heuristic carried over from the source material; do
// not change it without new evidence.
const flexibleFloor = 4

// Mapper answers "do these two differently-spelled language names
// denote the same language?" using a three-step policy: exact canonical
// match, variant-set membership, and (when not strict) bounded
// substring containment.
type Mapper struct {
	// byAbbrev maps normalized abbreviation to canonical name.
	byAbbrev map[string]string

	// variantOf maps every normalized variant (and canonical) name to
	// its canonical name. Many-to-one: a name belonging to two
	// canonical languages is a configuration error.
	variantOf map[string]string
}

// NewMapper builds a Mapper from entries, enforcing the many-to-one
// variant invariant.
func NewMapper(entries []Entry) (*Mapper, error) {
	m := &Mapper{
		byAbbrev:  make(map[string]string),
		variantOf: make(map[string]string),
	}

	for _, e := range entries {
		canonical := strings.TrimSpace(e.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("language entry with empty canonical name")
		}

		for _, abbrev := range e.Abbreviations {
			key := normalizeName(abbrev)
			if key == "" {
				continue
			}
			if prev, dup := m.byAbbrev[key]; dup && prev != canonical {
				return nil, fmt.Errorf("abbreviation %q maps to both %q and %q", abbrev, prev, canonical)
			}
			m.byAbbrev[key] = canonical
		}

		names := append([]string{canonical}, e.Variants...)
		for _, name := range names {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			if prev, dup := m.variantOf[key]; dup && prev != canonical {
				return nil, fmt.Errorf("variant %q belongs to both %q and %q", name, prev, canonical)
			}
			m.variantOf[key] = canonical
		}
	}
	return m, nil
}

// LoadEntries reads the entries of a YAML language table.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided table path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read language table: %w", err)
	}

	var file struct {
		Languages []Entry `yaml:"languages"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse language table %s: %w", path, err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("language table %s defines no languages", path)
	}
	return file.Languages, nil
}

// LoadMapper reads a YAML language table. The file replaces the
// built-in table entirely rather than merging, so a custom table's
// behavior never depends on defaults the user cannot see.
func LoadMapper(path string) (*Mapper, error) {
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	return NewMapper(entries)
}

// DefaultMapper returns the built-in Burrow & Emeneau table.
func DefaultMapper() *Mapper {
	m, err := NewMapper(builtinEntries)
	if err != nil {
		// The built-in table is validated by tests; reaching this
		// means the binary itself is broken.
		panic(fmt.Sprintf("built-in language table invalid: %v", err))
	}
	return m
}

// Canonical maps an abbreviation to its canonical name. Unknown
// abbreviations are returned unchanged: the source may already use a
// full language name where the table expects a short form.
func (m *Mapper) Canonical(abbrev string) string {
	if canonical, ok := m.byAbbrev[normalizeName(abbrev)]; ok {
		return canonical
	}
	return strings.TrimSpace(abbrev)
}

// SameLanguage reports whether a source abbreviation and an external
// name denote the same language.
//
// The policy is ordered:
//  1. Exact: the normalized external name equals the canonical name
//     mapped from the abbreviation.
//  2. Variant: both names resolve into the same variant set.
//  3. Flexible (only when strict is false): one name contains the
//     other and the shorter has at least flexibleFloor characters.
func (m *Mapper) SameLanguage(sourceAbbrev, externalName string, strict bool) bool {
	canonical := m.Canonical(sourceAbbrev)
	canonKey := normalizeName(canonical)
	extKey := normalizeName(externalName)

	if canonKey == "" || extKey == "" {
		return false
	}

	// Exact.
	if canonKey == extKey {
		return true
	}

	// Variant: both names belong to the same canonical language.
	if base, ok := m.variantOf[canonKey]; ok {
		if extBase, ok := m.variantOf[extKey]; ok && base == extBase {
			return true
		}
	}

	if strict {
		return false
	}

	// Flexible containment with the length floor.
	shorter, longer := canonKey, extKey
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	return len(shorter) >= flexibleFloor && strings.Contains(longer, shorter)
}

// normalizeName lowercases a name and collapses internal whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

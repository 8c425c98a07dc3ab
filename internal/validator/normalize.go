package validator

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// markStripper decomposes characters and drops combining marks, so
// "toṉṉai" and "tonnai" compare equal.
var markStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// reconstructionMarkers are notation characters that carry no lexical
// content: the reconstruction asterisk, morpheme hyphens, and
// parenthesized annotations.
var reconstructionMarkers = strings.NewReplacer(
	"*", "",
	"-", " ",
	"(", " ",
	")", " ",
)

// NormalizeHeadword canonicalizes a headword for lookup: notation
// markers removed, lowercased, diacritics folded, whitespace collapsed.
func NormalizeHeadword(headword string) string {
	base := strings.ToLower(strings.TrimSpace(reconstructionMarkers.Replace(headword)))
	folded, _, err := transform.String(markStripper, base)
	if err != nil {
		folded = base
	}
	return strings.Join(strings.Fields(folded), " ")
}

// cleanKey canonicalizes a numeric key. Tabular exports render keys as
// floats ("301.0") or with leading zeros ("045"); both mean the integer.
func cleanKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(key, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return key
}

package validator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/etymscan/etymscan/internal/fetcher"
	"github.com/etymscan/etymscan/internal/language"
)

// Method names the lookup tier that produced the decisive evidence.
type Method string

// Lookup methods.
const (
	// MethodKey: the numeric-key query decided the outcome.
	MethodKey Method = "key"

	// MethodHeadword: the headword fallback decided the outcome.
	MethodHeadword Method = "headword"
)

// Query is one local record submitted for validation.
type Query struct {
	// LocalID identifies the record in its source table.
	LocalID string

	// Headword is the local form, possibly carrying reconstruction
	// notation.
	Headword string

	// Language is the local record's language name or abbreviation.
	Language string

	// ExternalKey is the reference-dictionary key recorded locally,
	// empty when the record carries none.
	ExternalKey string
}

// MatchResult is the outcome of validating one query.
type MatchResult struct {
	// LocalID echoes the query's record id.
	LocalID string `json:"local_id"`

	// Method is the tier that produced the decisive evidence.
	Method Method `json:"method"`

	// Status is the classified outcome.
	Status language.Status `json:"status"`

	// ExternalKeyFound is the reference key the lookup surfaced,
	// empty when none did.
	ExternalKeyFound string `json:"external_key_found,omitempty"`

	// Evidence is the rendered text backing the status, retained for
	// audit even on a miss.
	Evidence string `json:"evidence,omitempty"`
}

// Validator resolves queries against the reference dictionary's search
// endpoint.
type Validator struct {
	// fetcher issues the search requests. It is shared with the
	// crawler so the endpoint-wide politeness delay holds.
	fetcher *fetcher.Fetcher

	// mapper decides language agreement.
	mapper *language.Mapper

	// searchURL is the parsed search endpoint.
	searchURL *url.URL

	// strict disables the flexible substring tier of language matching.
	strict bool

	// logger receives per-query progress events.
	logger *slog.Logger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrictLanguage restricts language agreement to exact and variant
// matches.
func WithStrictLanguage(strict bool) ValidatorOption {
	return func(v *Validator) { v.strict = strict }
}

// WithValidatorLogger sets the progress logger.
func WithValidatorLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) { v.logger = logger }
}

// New creates a Validator against the given search endpoint.
func New(f *fetcher.Fetcher, mapper *language.Mapper, searchURL string, opts ...ValidatorOption) (*Validator, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search URL: %w", err)
	}

	v := &Validator{
		fetcher:   f,
		mapper:    mapper,
		searchURL: u,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate resolves one query. Tier 1 looks the numeric key up and
// accepts only a primary rendering whose attestations agree with the
// query's language; tier 2 falls back to the normalized headword. The
// first conclusive tier wins, and tier 2 always runs when tier 1
// produced nothing primary.
func (v *Validator) Validate(ctx context.Context, q Query) (MatchResult, error) {
	res := MatchResult{LocalID: q.LocalID}
	localKey := cleanKey(q.ExternalKey)

	keyMatch := language.KeyMatchNone
	var evidence string

	if localKey != "" {
		entries, err := v.search(ctx, localKey)
		if err != nil {
			return MatchResult{}, fmt.Errorf("key query for record %s: %w", q.LocalID, err)
		}

		for _, e := range entries {
			if !strings.HasPrefix(e.Text, localKey) {
				continue
			}
			if isPrimaryRendering(e.Text, localKey) {
				if !v.keyLanguageAgrees(e, q.Language) {
					// Right key, wrong language. Tier 2 gets to
					// decide from the headword instead.
					evidence = e.Text
					continue
				}
				res.Method = MethodKey
				res.Status = language.Classify(language.KeyMatchPrimary, false, "", localKey)
				res.ExternalKeyFound = localKey
				res.Evidence = truncate(e.Text, glossLimit)
				return res, nil
			}
			// The key shows up, but only as a continuation or
			// cross-reference rendering.
			keyMatch = language.KeyMatchCrossRefOnly
			evidence = e.Text
		}
	}

	headwordFound := false
	foundKey := ""

	if headword := NormalizeHeadword(q.Headword); headword != "" {
		entries, err := v.search(ctx, headword)
		if err != nil {
			return MatchResult{}, fmt.Errorf("headword query for record %s: %w", q.LocalID, err)
		}

		if att, key, ok := v.matchAttestation(entries, q.Language, headword); ok {
			headwordFound = true
			foundKey = key
			evidence = att.Language + " " + strings.Join(att.Headwords, ", ")
			if att.Gloss != "" {
				evidence += " " + att.Gloss
			}
		}
	}

	res.Status = language.Classify(keyMatch, headwordFound, foundKey, localKey)
	res.Method = decisiveMethod(res.Status, headwordFound, localKey)
	res.ExternalKeyFound = foundKey
	res.Evidence = truncate(evidence, glossLimit)

	v.logger.Debug("query classified",
		"id", q.LocalID,
		"status", string(res.Status),
		"method", string(res.Method))
	return res, nil
}

// search runs one query against the endpoint and parses the results.
func (v *Validator) search(ctx context.Context, term string) ([]Entry, error) {
	u := *v.searchURL
	query := u.Query()
	query.Set("qs", term)
	u.RawQuery = query.Encode()

	body, err := v.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return parseResults(body)
}

// keyLanguageAgrees reports whether any attestation of a key entry is in
// the query's language. Queries without a language are taken at the
// key's word.
func (v *Validator) keyLanguageAgrees(e Entry, localLanguage string) bool {
	if localLanguage == "" {
		return true
	}
	for _, att := range e.Attestations {
		if v.mapper.SameLanguage(att.Language, localLanguage, v.strict) {
			return true
		}
	}
	return false
}

// matchAttestation finds the first attestation agreeing on language and
// headword, returning it with its entry's key.
func (v *Validator) matchAttestation(entries []Entry, localLanguage, normalizedHeadword string) (Attestation, string, bool) {
	for _, e := range entries {
		for _, att := range e.Attestations {
			if !v.mapper.SameLanguage(att.Language, localLanguage, v.strict) {
				continue
			}
			if !headwordMatches(att.Headwords, normalizedHeadword) {
				continue
			}
			return att, e.Key, true
		}
	}
	return Attestation{}, "", false
}

// headwordMatches reports whether any cited form equals or contains the
// local headword after normalization. Containment runs both ways:
// citations carry inflected or truncated variants of the lemma.
func headwordMatches(cited []string, normalized string) bool {
	for _, hw := range cited {
		candidate := NormalizeHeadword(hw)
		if candidate == "" {
			continue
		}
		if candidate == normalized ||
			strings.Contains(candidate, normalized) ||
			strings.Contains(normalized, candidate) {
			return true
		}
	}
	return false
}

// continuationMarkers introduce a cross-reference rendering of an
// entry, as in "301... see 305".
var continuationMarkers = []string{"see ", "cf."}

// isPrimaryRendering reports whether entry text beginning with the key
// is the entry itself rather than a cross-reference to it. Primary
// renderings carry substantive content after the key; cross-references
// render as a continuation pointing at another entry.
func isPrimaryRendering(text, key string) bool {
	rest := strings.TrimPrefix(text, key)
	if len(strings.TrimSpace(rest)) <= 5 {
		return false
	}

	lower := strings.ToLower(strings.TrimLeft(rest, " .…"))
	for _, marker := range continuationMarkers {
		if strings.HasPrefix(lower, marker) {
			return false
		}
	}
	return true
}

// decisiveMethod names the tier whose evidence fixed the status.
func decisiveMethod(status language.Status, headwordFound bool, localKey string) Method {
	switch status {
	case language.StatusKeyConfirmed, language.StatusKeyCrossRefOnly:
		return MethodKey
	case language.StatusNotFound:
		if !headwordFound && localKey != "" {
			return MethodKey
		}
		return MethodHeadword
	default:
		return MethodHeadword
	}
}

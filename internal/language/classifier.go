package language

// Status is the outcome of validating one local record against the
// reference dictionary. The set is closed: classification always
// resolves to exactly one of these values.
type Status string

// Match statuses, most specific first.
const (
	// StatusKeyConfirmed: the numeric-key lookup found the entry as a
	// primary rendering and the language agreed.
	StatusKeyConfirmed Status = "key-confirmed"

	// StatusHeadwordConfirmsKey: the headword lookup found an entry
	// whose numeric key equals the locally recorded one.
	StatusHeadwordConfirmsKey Status = "headword-confirms-key"

	// StatusHeadwordFoundNewKey: the headword lookup surfaced a
	// numeric key where none was recorded locally.
	StatusHeadwordFoundNewKey Status = "headword-found-new-key"

	// StatusHeadwordDisagreesKey: the headword lookup found an entry
	// whose numeric key differs from the locally recorded one.
	StatusHeadwordDisagreesKey Status = "headword-disagrees-key"

	// StatusKeyCrossRefOnly: the numeric key appears in the reference
	// dictionary only as a parenthetical cross-reference, never as a
	// primary entry.
	StatusKeyCrossRefOnly Status = "key-cross-reference-only"

	// StatusNotFound: nothing usable under either tier.
	StatusNotFound Status = "not-found"
)

// KeyMatch summarizes what the tier-1 numeric-key lookup produced.
type KeyMatch int

// Tier-1 outcomes.
const (
	// KeyMatchNone: the key produced nothing (or tier 1 never ran).
	KeyMatchNone KeyMatch = iota

	// KeyMatchCrossRefOnly: the key appeared only as a continuation
	// or "see N" cross-reference, not as a primary entry.
	KeyMatchCrossRefOnly

	// KeyMatchPrimary: a primary entry matched, confirmed by
	// language agreement.
	KeyMatchPrimary
)

// Classify assigns the final status from the evidence both tiers
// produced. The tie-break is ordered, most specific evidence first, and
// is total: every input combination resolves to exactly one status.
//
//   - foundKey is the numeric key surfaced by the headword hit, empty
//     when the hit carried none or there was no hit.
//   - localKey is the key previously recorded on the local record,
//     empty when absent.
//
// A keyless headword hit neither confirms nor contradicts a recorded
// key, so it ranks below a cross-reference sighting of that key; with
// no recorded key it degenerates to a (vacuous) confirmation.
func Classify(keyMatch KeyMatch, headwordFound bool, foundKey, localKey string) Status {
	if keyMatch == KeyMatchPrimary {
		return StatusKeyConfirmed
	}

	if headwordFound && foundKey != "" {
		switch {
		case foundKey == localKey:
			return StatusHeadwordConfirmsKey
		case localKey == "":
			return StatusHeadwordFoundNewKey
		default:
			return StatusHeadwordDisagreesKey
		}
	}

	if keyMatch == KeyMatchCrossRefOnly {
		return StatusKeyCrossRefOnly
	}

	if headwordFound {
		if localKey == "" {
			return StatusHeadwordConfirmsKey
		}
		return StatusHeadwordDisagreesKey
	}

	return StatusNotFound
}

// AllStatuses lists every status in tie-break order, for summary
// reporting.
func AllStatuses() []Status {
	return []Status{
		StatusKeyConfirmed,
		StatusHeadwordConfirmsKey,
		StatusHeadwordFoundNewKey,
		StatusHeadwordDisagreesKey,
		StatusKeyCrossRefOnly,
		StatusNotFound,
	}
}

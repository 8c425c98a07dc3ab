package language

import "testing"

// TestClassify tests the ordered tie-break.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		keyMatch      KeyMatch
		headwordFound bool
		foundKey      string
		localKey      string
		want          Status
	}{
		{"primary key hit wins outright", KeyMatchPrimary, false, "", "301", StatusKeyConfirmed},
		{"primary key hit outranks headword evidence", KeyMatchPrimary, true, "305", "301", StatusKeyConfirmed},
		{"headword confirms recorded key", KeyMatchNone, true, "301", "301", StatusHeadwordConfirmsKey},
		{"headword surfaces new key", KeyMatchNone, true, "305", "", StatusHeadwordFoundNewKey},
		{"headword disagrees with recorded key", KeyMatchNone, true, "305", "301", StatusHeadwordDisagreesKey},
		{"keyed headword outranks cross-reference", KeyMatchCrossRefOnly, true, "305", "301", StatusHeadwordDisagreesKey},
		{"cross-reference only", KeyMatchCrossRefOnly, false, "", "301", StatusKeyCrossRefOnly},
		{"cross-reference outranks keyless headword", KeyMatchCrossRefOnly, true, "", "301", StatusKeyCrossRefOnly},
		{"keyless headword with recorded key", KeyMatchNone, true, "", "301", StatusHeadwordDisagreesKey},
		{"keyless headword without recorded key", KeyMatchNone, true, "", "", StatusHeadwordConfirmsKey},
		{"nothing found", KeyMatchNone, false, "", "", StatusNotFound},
		{"nothing found with recorded key", KeyMatchNone, false, "", "301", StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.keyMatch, tt.headwordFound, tt.foundKey, tt.localKey)
			if got != tt.want {
				t.Errorf("Classify(%v, %v, %q, %q) = %s, want %s",
					tt.keyMatch, tt.headwordFound, tt.foundKey, tt.localKey, got, tt.want)
			}
		})
	}
}

// TestClassifyTotality exhaustively checks that every input
// combination yields exactly one defined status.
func TestClassifyTotality(t *testing.T) {
	t.Parallel()

	defined := make(map[Status]bool)
	for _, s := range AllStatuses() {
		defined[s] = true
	}

	keys := []string{"", "301", "305"}
	for _, keyMatch := range []KeyMatch{KeyMatchNone, KeyMatchCrossRefOnly, KeyMatchPrimary} {
		for _, headwordFound := range []bool{false, true} {
			for _, foundKey := range keys {
				for _, localKey := range keys {
					got := Classify(keyMatch, headwordFound, foundKey, localKey)
					if !defined[got] {
						t.Errorf("Classify(%v, %v, %q, %q) returned undefined status %q",
							keyMatch, headwordFound, foundKey, localKey, got)
					}
				}
			}
		}
	}
}

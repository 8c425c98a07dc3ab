// Package validator cross-checks local dictionary records against the
// reference dictionary's search endpoint.
//
// Each record is resolved in two tiers. Tier 1 queries the record's
// numeric key and accepts only a primary rendering of the entry, not a
// cross-reference sighting. Tier 2 falls back to an exact query on the
// normalized headword and matches language plus form inside the
// returned attestations. The combined evidence is classified into a
// fixed status set by the language package.
//
// A batch runner processes independent queries concurrently. All HTTP
// traffic flows through one shared fetcher, so the politeness contract
// against the remote endpoint holds regardless of parallelism.
package validator

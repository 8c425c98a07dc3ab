package record

import (
	"sort"
	"time"
)

// CrawlState is the process-wide traversal state. It is owned by the
// crawler, mutated after every page, and persisted by the checkpoint
// store so an interrupted crawl can resume without re-fetching.
type CrawlState struct {
	// StartURL identifies the job. A checkpoint written for a
	// different start URL must never be resumed against this one.
	StartURL string `json:"start_url"`

	// Page is the frontier position: the next listing page to fetch.
	Page int `json:"page"`

	// Seen holds the fingerprints of every unique entry encountered.
	Seen map[string]bool `json:"-"`

	// RecordCount is the number of root records materialized so far.
	RecordCount int `json:"record_count"`

	// StartedAt is when the crawl (or its first segment) began.
	StartedAt time.Time `json:"started_at"`
}

// NewCrawlState creates a fresh state for the given job.
func NewCrawlState(startURL string) *CrawlState {
	return &CrawlState{
		StartURL:  startURL,
		Page:      1,
		Seen:      make(map[string]bool),
		StartedAt: time.Now(),
	}
}

// IsSeen reports whether a fingerprint was already encountered.
// An empty fingerprint is never considered seen.
func (s *CrawlState) IsSeen(fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	return s.Seen[fingerprint]
}

// MarkSeen records a fingerprint in the shared seen set.
func (s *CrawlState) MarkSeen(fingerprint string) {
	if fingerprint == "" {
		return
	}
	if s.Seen == nil {
		s.Seen = make(map[string]bool)
	}
	s.Seen[fingerprint] = true
}

// SeenList returns the seen fingerprints in sorted order.
// Sorting keeps checkpoint files stable across runs with equal state.
func (s *CrawlState) SeenList() []string {
	list := make([]string, 0, len(s.Seen))
	for fp := range s.Seen {
		list = append(list, fp)
	}
	sort.Strings(list)
	return list
}

// FailureKind classifies why a fetch was abandoned.
type FailureKind string

// Failure kinds recorded in the failed-request log.
const (
	// FailureTimeout means every attempt exceeded the fetch timeout.
	FailureTimeout FailureKind = "timeout"

	// FailureHTTP means the server answered with a non-2xx status.
	FailureHTTP FailureKind = "http-error"

	// FailureNetwork covers connection and transport errors.
	FailureNetwork FailureKind = "network"
)

// FailedRequest is one entry in the failed-request log. Failed units
// are invisible in the output tree, so this log is the only account of
// them; together the two outputs cover every attempted unit.
type FailedRequest struct {
	// URL is the request that was abandoned.
	URL string `json:"url"`

	// Kind classifies the terminal error.
	Kind FailureKind `json:"kind"`

	// Attempts is how many tries were made before giving up.
	Attempts int `json:"attempts"`

	// Timestamp is when the request was abandoned.
	Timestamp time.Time `json:"timestamp"`
}

// Metadata summarizes a completed (or interrupted) crawl.
type Metadata struct {
	// StartURL is the job's starting point.
	StartURL string `json:"start_url"`

	// PagesProcessed is the number of listing pages fetched.
	PagesProcessed int `json:"pages_processed"`

	// TotalRecords is the number of root records in the document.
	TotalRecords int `json:"total_records"`

	// UniqueEntries is the size of the seen-fingerprint set.
	UniqueEntries int `json:"unique_entries"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the crawl finished or was interrupted.
	CompletedAt time.Time `json:"completed_at"`
}

// Document is the crawler's hierarchical output: the record trees plus
// a metadata block and the failed-request log.
type Document struct {
	Metadata Metadata        `json:"metadata"`
	Records  []*Record       `json:"records"`
	Failed   []FailedRequest `json:"failed_requests,omitempty"`
}

// Package crawler drives the traversal of a paged lexical database.
//
// The starting URL is a paged result listing. Each listing page holds a
// fixed number of records, and each record may carry expand markers
// pointing at sub-entry queries. The crawler walks pages in order and
// expands sub-entries depth-first, so one branch fully resolves before
// its sibling starts.
//
// Duplicate detection is content based: a record whose fingerprint was
// already seen is kept as a child reference but never expanded again.
// Progress is checkpointed after every listing page so an interrupted
// crawl can resume without re-fetching completed pages.
package crawler

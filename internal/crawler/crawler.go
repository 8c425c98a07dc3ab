package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/etymscan/etymscan/internal/checkpoint"
	"github.com/etymscan/etymscan/internal/extractor"
	"github.com/etymscan/etymscan/internal/fetcher"
	"github.com/etymscan/etymscan/internal/record"
)

// Crawler walks a paged result listing and expands sub-entries
// depth-first.
//
// Design decision: A single logical worker drives the whole traversal.
// The politeness delay and the depth-scaled backoff are defined against
// one ordered request stream; parallel fetches would break that contract
// without buying anything on a source this slow.
type Crawler struct {
	// fetcher issues all HTTP requests, including retries and delays.
	fetcher *fetcher.Fetcher

	// store persists the crawl state after every listing page.
	// Nil disables checkpointing.
	store *checkpoint.Store

	// logger receives progress events.
	logger *slog.Logger

	// pageBudget limits how many listing pages one run processes.
	// The traversal mechanism supports unbounded recursion, so the
	// budget is the always-available termination backstop.
	pageBudget int

	// pageSize is the number of records per listing page, used to
	// compute the paging offset parameter.
	pageSize int

	// maxDepth bounds sub-entry expansion. Content dedup normally
	// terminates branches first; the depth ceiling covers records
	// that never produce a fingerprint.
	maxDepth int

	// pageHook, when set, runs after each completed listing page with
	// the document so far. A hook error aborts the crawl.
	pageHook func(*record.Document) error
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithCheckpoint sets the checkpoint store.
func WithCheckpoint(store *checkpoint.Store) Option {
	return func(c *Crawler) { c.store = store }
}

// WithLogger sets the progress logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// WithPageBudget sets the maximum number of listing pages per run.
func WithPageBudget(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.pageBudget = n
		}
	}
}

// WithPageSize sets the records-per-page constant used for paging offsets.
func WithPageSize(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxDepth sets the sub-entry expansion ceiling.
func WithMaxDepth(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithPageHook sets a function invoked after every completed listing
// page with the document accumulated so far. Used to save partial
// results alongside the checkpoint.
func WithPageHook(hook func(*record.Document) error) Option {
	return func(c *Crawler) { c.pageHook = hook }
}

// New creates a Crawler using the given fetcher for all requests.
//
// Design decision: The fetcher is required, not constructed here,
// because the validator shares the same instance. The politeness delay
// is a contract with the remote endpoint as a whole and only holds when
// every request in the process flows through one limiter.
func New(f *fetcher.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:    f,
		logger:     slog.Default(),
		pageBudget: 50,
		pageSize:   20,
		maxDepth:   10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl walks the listing starting at startURL and returns the record
// tree document. When a checkpoint store is configured, an existing
// checkpoint for the same start URL resumes the crawl at its saved
// page; a checkpoint for a different start URL is a hard error.
//
// On context cancellation the document built so far is returned along
// with the context error, so the caller can still persist it.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*record.Document, error) {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	state, err := c.loadState(startURL)
	if err != nil {
		return nil, err
	}

	doc := &record.Document{
		Metadata: record.Metadata{
			StartURL:  startURL,
			StartedAt: state.StartedAt,
		},
	}

	pagesThisRun := 0
	exhausted := false
	for pagesThisRun < c.pageBudget {
		select {
		case <-ctx.Done():
			c.finish(doc, state)
			return doc, ctx.Err()
		default:
		}

		page := state.Page
		roots, err := c.crawlPage(ctx, base, page, state)
		if err != nil {
			var fetchErr *fetcher.FetchError
			if errors.As(err, &fetchErr) {
				// The page is logged in the failed-request log and
				// skipped; the rest of the listing is still reachable.
				c.logger.Warn("listing page abandoned",
					"page", page, "kind", string(fetchErr.Kind))
				state.Page = page + 1
				pagesThisRun++
				continue
			}
			c.finish(doc, state)
			return doc, err
		}

		if len(roots) == 0 {
			// An empty listing page means the result set is exhausted.
			c.logger.Info("listing exhausted", "page", page)
			exhausted = true
			break
		}

		doc.Records = append(doc.Records, roots...)
		state.Page = page + 1
		state.RecordCount += len(roots)
		pagesThisRun++

		c.logger.Info("page complete",
			"page", page,
			"records", len(roots),
			"unique", len(state.Seen))

		if err := c.saveProgress(doc, state); err != nil {
			c.finish(doc, state)
			return doc, err
		}
	}

	c.finish(doc, state)

	// A checkpoint outliving its job would poison the next run, but a
	// budget-bounded partial run must keep it for resume. Only listing
	// exhaustion is clean completion.
	if exhausted && c.store != nil {
		if err := c.store.Remove(); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// loadState loads the checkpoint for startURL or creates a fresh state.
// A checkpoint written for a different start URL is never reused.
func (c *Crawler) loadState(startURL string) (*record.CrawlState, error) {
	if c.store == nil {
		return record.NewCrawlState(startURL), nil
	}

	state, err := c.store.Load(startURL)
	switch {
	case err == nil:
		c.logger.Info("resuming from checkpoint",
			"page", state.Page,
			"records", state.RecordCount,
			"unique", len(state.Seen))
		return state, nil
	case errors.Is(err, checkpoint.ErrNotFound):
		return record.NewCrawlState(startURL), nil
	default:
		return nil, err
	}
}

// saveProgress writes the checkpoint and runs the page hook. It is
// called after every listing page so a crash loses at most the
// in-flight page.
func (c *Crawler) saveProgress(doc *record.Document, state *record.CrawlState) error {
	if c.store != nil {
		if err := c.store.Save(state); err != nil {
			return err
		}
	}
	if c.pageHook != nil {
		if err := c.pageHook(doc); err != nil {
			return fmt.Errorf("page hook failed: %w", err)
		}
	}
	return nil
}

// finish fills in the document metadata from the final state.
func (c *Crawler) finish(doc *record.Document, state *record.CrawlState) {
	doc.Metadata.PagesProcessed = state.Page - 1
	doc.Metadata.TotalRecords = state.RecordCount
	doc.Metadata.UniqueEntries = len(state.Seen)
	doc.Metadata.CompletedAt = time.Now()
	doc.Failed = c.fetcher.Failures().Entries()
}

// crawlPage fetches one listing page and expands every record on it.
func (c *Crawler) crawlPage(ctx context.Context, base *url.URL, page int, state *record.CrawlState) ([]*record.Record, error) {
	pageURL := listingURL(base, page, c.pageSize)

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	ext, err := extractor.New(pageURL)
	if err != nil {
		return nil, err
	}
	blocks, err := ext.Extract(body)
	if err != nil {
		return nil, err
	}

	// A block with no fields and no links is still a record: the source
	// renders placeholder rows, and skipping them would make a page of
	// them read as listing exhaustion. Exhaustion is the absence of
	// record elements altogether.
	roots := make([]*record.Record, 0, len(blocks))
	for i, block := range blocks {
		rec := c.materialize(ctx, block, pageURL, page, 0, state)
		rec.Ordinal = i + 1
		roots = append(roots, rec)
	}
	return roots, nil
}

// materialize turns an extracted block into a record and, unless the
// dedup gate closes, expands its children depth-first. Every record in
// the subtree carries the listing page it was reached from, so page-
// scoped persistence covers children as well as roots.
func (c *Crawler) materialize(ctx context.Context, block extractor.Block, pageURL string, page, depth int, state *record.CrawlState) *record.Record {
	rec := &record.Record{
		URL:    pageURL,
		Page:   page,
		Depth:  depth,
		Fields: block.Fields,
	}

	fp, ok := rec.Stamp()
	if ok && state.IsSeen(fp) {
		// Seen entries stay in the tree as references but are never
		// expanded a second time.
		rec.Duplicate = true
		return rec
	}
	state.MarkSeen(fp)

	if depth >= c.maxDepth {
		c.logger.Warn("expansion depth ceiling reached", "url", pageURL, "depth", depth)
		return rec
	}

	for _, link := range block.Links {
		select {
		case <-ctx.Done():
			return rec
		default:
		}

		children, err := c.expand(ctx, link, page, depth+1, state)
		if err != nil {
			var fetchErr *fetcher.FetchError
			if errors.As(err, &fetchErr) {
				// The branch is abandoned; the failed-request log is
				// its only trace.
				c.logger.Warn("branch abandoned",
					"url", link, "depth", depth+1, "kind", string(fetchErr.Kind))
				continue
			}
			c.logger.Warn("branch failed", "url", link, "error", err)
			continue
		}
		rec.Children = append(rec.Children, children...)
	}
	return rec
}

// expand fetches a sub-entry query URL and materializes every record it
// renders.
func (c *Crawler) expand(ctx context.Context, childURL string, page, depth int, state *record.CrawlState) ([]*record.Record, error) {
	body, err := c.fetcher.FetchAtDepth(ctx, childURL, depth)
	if err != nil {
		return nil, err
	}

	ext, err := extractor.New(childURL)
	if err != nil {
		return nil, err
	}
	blocks, err := ext.Extract(body)
	if err != nil {
		return nil, err
	}

	var records []*record.Record
	for _, block := range blocks {
		records = append(records, c.materialize(ctx, block, childURL, page, depth, state))
	}
	return records, nil
}

// listingURL builds the query URL for a listing page. The source pages
// its result set with a 1-based record offset parameter.
func listingURL(base *url.URL, page, pageSize int) string {
	u := *base
	q := u.Query()
	q.Set("first", strconv.Itoa(1+(page-1)*pageSize))
	u.RawQuery = q.Encode()
	return u.String()
}

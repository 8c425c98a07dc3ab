package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/etymscan/etymscan/internal/record"
)

// FetchError is returned when a URL could not be fetched after
// exhausting every retry. The same information is appended to the
// failed-request log, so callers may log and move on.
type FetchError struct {
	// URL is the request that failed.
	URL string

	// Kind classifies the terminal error.
	Kind record.FailureKind

	// Attempts is the number of tries made.
	Attempts int

	// cause is the error from the last attempt.
	cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts (%s): %v",
		e.URL, e.Attempts, e.Kind, e.cause)
}

// Unwrap returns the underlying error from the last attempt.
func (e *FetchError) Unwrap() error { return e.cause }

// FailureLog collects exhausted-retry failures. It is safe for
// concurrent use; the validator's batch runner appends from several
// goroutines.
type FailureLog struct {
	mu      sync.Mutex
	entries []record.FailedRequest
}

// Append adds a failure entry to the log.
func (l *FailureLog) Append(entry record.FailedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the logged failures in append order.
func (l *FailureLog) Entries() []record.FailedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]record.FailedRequest, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of logged failures.
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Fetcher issues HTTP GET requests with retries, backoff, and a global
// inter-request delay.
//
// Design decision: The politeness delay lives in the limiter, not in the
// callers, because the delay contract is defined against the remote
// endpoint as a whole. A per-caller delay would be violated the moment
// two validator workers fetch concurrently; one shared limiter cannot be.
type Fetcher struct {
	// client performs the actual requests.
	client *http.Client

	// limiter enforces the minimum spacing between any two requests
	// issued through this fetcher, across all goroutines.
	limiter *rate.Limiter

	// maxAttempts bounds the retry loop.
	maxAttempts int

	// backoffBase scales the exponential backoff: the wait before
	// retry n is 2^n * backoffBase.
	backoffBase time.Duration

	// attemptTimeout bounds each individual attempt.
	attemptTimeout time.Duration

	// depthDelay is the extra politeness delay added per recursion
	// depth level on child fetches.
	depthDelay time.Duration

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	// failures receives exhausted-retry entries.
	failures *FailureLog
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client, mainly for tests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithMaxAttempts sets the retry limit.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the exponential backoff base delay.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) { f.backoffBase = d }
}

// WithAttemptTimeout sets the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.attemptTimeout = d }
}

// WithRequestDelay sets the minimum spacing between requests.
// A zero delay disables the limiter, which is only sensible in tests.
func WithRequestDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithDepthDelay sets the extra delay applied per depth level.
func WithDepthDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.depthDelay = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxBodySize sets the response body read limit.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithFailureLog sets the log that receives exhausted-retry failures.
func WithFailureLog(log *FailureLog) Option {
	return func(f *Fetcher) { f.failures = log }
}

// New creates a Fetcher with conservative defaults: 3 attempts, 2 second
// backoff base, 45 second attempt timeout, 800ms between requests.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:         &http.Client{},
		limiter:        rate.NewLimiter(rate.Every(800*time.Millisecond), 1),
		maxAttempts:    3,
		backoffBase:    2 * time.Second,
		attemptTimeout: 45 * time.Second,
		depthDelay:     100 * time.Millisecond,
		userAgent:      "etymscan/1.0 (+https://github.com/etymscan/etymscan)",
		maxBodySize:    5 * 1024 * 1024,
		failures:       &FailureLog{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Failures returns the failed-request log.
func (f *Fetcher) Failures() *FailureLog { return f.failures }

// Fetch retrieves a URL at depth 0. See FetchAtDepth.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchAtDepth(ctx, url, 0)
}

// FetchAtDepth retrieves a URL, waiting out the politeness delay first.
// The delay grows with recursion depth so that deep expansion chains put
// less pressure on the server than top-level page turns.
//
// On success it returns the response body. On failure it returns a
// *FetchError after appending to the failed-request log; the caller is
// expected to record the branch as failed and continue.
func (f *Fetcher) FetchAtDepth(ctx context.Context, url string, depth int) (string, error) {
	// Depth-scaled extra delay comes first so the limiter reservation
	// below still guarantees the global minimum spacing afterwards.
	if extra := time.Duration(depth) * f.depthDelay; extra > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(extra):
		}
	}

	var lastErr error
	var lastKind record.FailureKind

	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2^n * base before attempt n.
			wait := f.backoffBase << attempt
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			// The run was cancelled, not the attempt. Surface the
			// cancellation instead of logging a spurious failure.
			return "", ctx.Err()
		}
		lastErr = err
		lastKind = classify(err)
	}

	f.failures.Append(record.FailedRequest{
		URL:       url,
		Kind:      lastKind,
		Attempts:  f.maxAttempts,
		Timestamp: time.Now(),
	})

	return "", &FetchError{
		URL:      url,
		Kind:     lastKind,
		Attempts: f.maxAttempts,
		cause:    lastErr,
	}
}

// httpStatusError reports a non-success HTTP response.
type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// attempt performs a single bounded request.
func (f *Fetcher) attempt(ctx context.Context, url string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &httpStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// classify maps an attempt error onto the failure taxonomy.
func classify(err error) record.FailureKind {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return record.FailureHTTP
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return record.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return record.FailureTimeout
	}

	return record.FailureNetwork
}

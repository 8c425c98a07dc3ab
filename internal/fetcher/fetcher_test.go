package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etymscan/etymscan/internal/record"
)

// newTestFetcher returns a fetcher with no politeness delay and a short
// backoff so retry behavior can be observed quickly.
func newTestFetcher(opts ...Option) *Fetcher {
	base := []Option{
		WithRequestDelay(0),
		WithBackoffBase(time.Millisecond),
		WithAttemptTimeout(2 * time.Second),
		WithDepthDelay(0),
	}
	return New(append(base, opts...)...)
}

// TestFetch tests the retry and classification behavior.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body on success", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>ok</html>")) //nolint:errcheck
		}))
		defer srv.Close()

		f := newTestFetcher()
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body != "<html>ok</html>" {
			t.Errorf("unexpected body: %q", body)
		}
		if f.Failures().Len() != 0 {
			t.Error("success must not be logged as failure")
		}
	})

	t.Run("retries transient errors then succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte("eventually")) //nolint:errcheck
		}))
		defer srv.Close()

		f := newTestFetcher()
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("expected success on third attempt, got %v", err)
		}
		if body != "eventually" {
			t.Errorf("unexpected body: %q", body)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("expected 3 attempts, got %d", got)
		}
	})

	t.Run("exhausted retries yield FetchError and log entry", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := newTestFetcher(WithMaxAttempts(3))
		_, err := f.Fetch(context.Background(), srv.URL)

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %T: %v", err, err)
		}
		if fetchErr.Kind != record.FailureHTTP {
			t.Errorf("expected http-error kind, got %s", fetchErr.Kind)
		}
		if fetchErr.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", fetchErr.Attempts)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("expected 3 requests, got %d", got)
		}

		entries := f.Failures().Entries()
		if len(entries) != 1 {
			t.Fatalf("expected 1 failure log entry, got %d", len(entries))
		}
		if entries[0].URL != srv.URL || entries[0].Kind != record.FailureHTTP {
			t.Errorf("unexpected log entry: %+v", entries[0])
		}
		if entries[0].Timestamp.IsZero() {
			t.Error("failure entry missing timestamp")
		}
	})

	t.Run("classifies timeouts", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		f := newTestFetcher(
			WithMaxAttempts(1),
			WithAttemptTimeout(50*time.Millisecond),
		)
		_, err := f.Fetch(context.Background(), srv.URL)

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
		if fetchErr.Kind != record.FailureTimeout {
			t.Errorf("expected timeout kind, got %s", fetchErr.Kind)
		}
	})

	t.Run("classifies connection refusals as network", func(t *testing.T) {
		t.Parallel()

		// A server that is already closed refuses connections.
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		f := newTestFetcher(WithMaxAttempts(1))
		_, err := f.Fetch(context.Background(), url)

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
		if fetchErr.Kind != record.FailureNetwork {
			t.Errorf("expected network kind, got %s", fetchErr.Kind)
		}
	})

	t.Run("cancellation is not logged as failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
		}()

		f := newTestFetcher()
		_, err := f.Fetch(ctx, srv.URL)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if f.Failures().Len() != 0 {
			t.Error("cancelled fetch must not appear in the failure log")
		}
	})
}

// TestRequestSpacing verifies the global inter-request delay applies
// to sequential fetches through the same fetcher.
func TestRequestSpacing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	const gap = 80 * time.Millisecond
	f := New(
		WithRequestDelay(gap),
		WithDepthDelay(0),
	)

	ctx := context.Background()
	if _, err := f.Fetch(ctx, srv.URL); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	start := time.Now()
	if _, err := f.Fetch(ctx, srv.URL); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < gap/2 {
		t.Errorf("second fetch was not delayed: %v < %v", elapsed, gap)
	}
}

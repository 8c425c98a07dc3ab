// Package fetcher issues rate-limited HTTP requests with bounded retries
// and exponential backoff. It is the single path to the network: both the
// crawler and the validator fetch through it, sharing one global rate
// limiter so that concurrent callers cannot collectively exceed the
// politeness contract agreed with the remote server.
//
// Failures that survive every retry are classified (timeout, http-error,
// network) and appended to a failed-request log. They are reported to the
// caller as a *FetchError and are never fatal to the overall run.
package fetcher

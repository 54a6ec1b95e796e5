// Package httputil provides HTTP helpers for fetching remote image sources.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [Fetch]: a bounded GET that classifies failures for [Retry]
//   - [NewPublicClient]: a client that only dials public addresses, for
//     fetching URLs supplied by untrusted callers
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Fetch] wraps transient failures that way:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Everything else (404, 403, a body over the size limit) fails at once:
//
//	var data []byte
//	err := httputil.Retry(ctx, 3, time.Second, func() (err error) {
//	    data, err = httputil.Fetch(ctx, client, url, 32<<20)
//	    return err
//	})
//
// Every request is reported to the HTTP hooks registered with the
// observability package.
package httputil

// Package retry re-runs operations that fail with transient errors.
//
// Only network failures, 429 and 5xx responses are retried by default
// (DefaultRetryIf). The scraper configures a single attempt unless the user
// asks for more, so a failed media download is normally logged and skipped.
//
//	r := retry.NewRetrier(&retry.Config{MaxAttempts: 3, Backoff: retry.DefaultExponentialBackoff()})
//	body, err := retry.DoWithResult(ctx, r, func() ([]byte, error) {
//	    return getter.Get(ctx, url)
//	})
package retry

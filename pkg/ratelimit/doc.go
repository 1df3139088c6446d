// Package ratelimit paces media downloads.
//
// Interval enforces a fixed pause before every request, which is how the
// scraper avoids bursty load on the media host. TokenBucket adds an optional
// per-minute cap on top of it, and Chain combines limiters so a request must
// satisfy all of them.
//
//	limiter := ratelimit.Chain(
//	    ratelimit.NewInterval(100*time.Millisecond),
//	    ratelimit.NewTokenBucket(300, time.Minute),
//	)
//	limiter.Wait()
package ratelimit

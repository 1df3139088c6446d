// Package fetcher retrieves tweet pages and media over HTTP.
//
// A batch is fetched with one goroutine per tweet and the call returns
// only after every request has finished. Each request yields exactly one
// Outcome:
//
//	Success         2xx with a non-empty body
//	Redirected      landed on the suspended-account page (reported)
//	HTTPFailure     non-2xx status (reported)
//	TransportError  timeout, DNS, reset or cancellation (logged)
//	Empty           2xx with an empty body
//
// Failures never abort the batch; callers simply skip non-Success outcomes.
package fetcher

// Package ratelimit paces requests against the archive.
//
// The archive tolerates slow, steady clients. A single scrape run walks a
// user's history one page at a time, so the rate limiter's job is simply to
// enforce a fixed gap between consecutive page fetches.
//
// Interface:
//
// Rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Six seconds between listing pages
//	limiter := ratelimit.NewInterval(6 * time.Second)
//
//	for page := 1; ; page++ {
//	    limiter.Wait() // first call passes immediately
//	    fetchPage(page)
//	}
package ratelimit

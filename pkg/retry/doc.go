// Package retry provides backoff and retry logic for handling transient
// failures in network operations, particularly archive listing page fetches.
//
// Features:
//   - Multiple backoff strategies (exponential, linear, constant)
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Unlimited attempts when MaxAttempts is 0
//   - Configurable retry predicates
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		_, err := session.FetchHistoryPage(ctx, archive.DefaultListing, 1)
//		return err
//	}, nil)
//
//	// Listing page fetches retry every failure at a fixed cadence,
//	// indefinitely unless an attempt cap is configured
//	cfg := &retry.Config{
//		MaxAttempts: 0,
//		Backoff:     &retry.ConstantBackoff{Delay: 6 * time.Second},
//		RetryIf:     retry.AnyError,
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(fetchPage, cfg)
//
// Error Type Handling:
//
// DefaultRetryIf consults the typed error taxonomy: network, rate limit and
// server errors are retried; auth, parsing and missing-artifact errors fail
// immediately. Context cancellation always stops the loop.
package retry

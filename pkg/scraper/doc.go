// Package scraper walks a user's reading history and aggregates it into
// yearly statistics.
//
// The scraper package orchestrates the scrape run, coordinating between the
// archive session, the entry extractor, the statistics aggregator, and the
// inter-page rate limiter.
//
// Architecture:
//
// The Scraper struct is the main component that:
//   - Fetches listing pages through an authenticated archive session
//   - Retries failed fetches on the same page at the inter-page delay
//   - Extracts work records and folds matches into the frequency tables
//   - Stops when a page yields no works visited in the target year
//   - Exposes Prometheus metrics for the run
//
// Usage:
//
//	client := archive.NewClient(archive.Config{}, nil)
//	session, err := client.Login(ctx, archive.Credentials{
//	    Username: "reader",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s := scraper.New(session, "reader", cfg)
//	result, err := s.Run(ctx, 2024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.Matched, "works read in", result.Year)
//
// Pacing:
//
// One fixed delay paces everything. The scraper waits out the configured
// inter-page gap before each fetch, and failed fetches retry at that same
// gap, so the archive sees one request per interval no matter how the run
// is going. Attempts per page are unlimited unless a cap is configured.
//
// Termination:
//
// The history listing is ordered by last visit, newest first. The run walks
// from page 1 and stops at the first page carrying no entry visited in the
// target year, which on a well-formed listing means every later page is
// older still.
package scraper

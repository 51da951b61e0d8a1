package scraper

import (
	"context"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/errors"
	"ao3wrapped/pkg/extract"
	"ao3wrapped/pkg/logger"
	"ao3wrapped/pkg/models"
	"ao3wrapped/pkg/ratelimit"
	"ao3wrapped/pkg/retry"
	"ao3wrapped/pkg/stats"
	"ao3wrapped/pkg/ui"
)

// Scraper walks a user's history listing page by page and folds every work
// visited in the target year into the yearly statistics. One logical thread:
// the only suspension points are page fetches and the inter-page delay.
type Scraper struct {
	session  HistoryFetcher
	username string
	limiter  ratelimit.Limiter
	config   *config.Config
	logger   logger.Logger
	progress *ui.ScrapeProgress
	runID    string

	// Metrics is exported so the command can serve the run's registry.
	Metrics *Metrics
}

// New creates a Scraper bound to an authenticated session
func New(session HistoryFetcher, username string, cfg *config.Config) *Scraper {
	runID := uuid.NewString()

	return &Scraper{
		session:  session,
		username: username,
		limiter:  ratelimit.NewInterval(cfg.Scrape.Delay()),
		config:   cfg,
		logger: logger.GetLogger().WithFields(map[string]interface{}{
			"component": "scraper",
			"run_id":    runID,
			"username":  username,
		}),
		runID:   runID,
		Metrics: NewMetrics(),
	}
}

// SetProgress attaches a terminal progress display to the run
func (s *Scraper) SetProgress(p *ui.ScrapeProgress) {
	s.progress = p
}

// Result carries the aggregate output of a completed run.
type Result struct {
	Year      string
	Tables    *models.Tables
	Dataset   *models.Dataset
	Pages     int
	Matched   int
	OutOfYear int
	Skipped   int
	Duration  time.Duration
}

// Run walks the listing from page 1 until a page yields no works visited in
// the target year, then returns the finished tables and dataset. Page fetch
// failures are retried on the same page at the configured delay, unlimited
// unless a retry cap is set.
func (s *Scraper) Run(ctx context.Context, year int) (*Result, error) {
	yearLabel := strconv.Itoa(year)
	agg := stats.NewAggregator()
	result := &Result{Year: yearLabel}
	start := time.Now()

	logger.LogComponentStart("scraper", map[string]interface{}{
		"year":         yearLabel,
		"listing":      s.config.Scrape.Listing,
		"delay_ms":     s.config.Scrape.DelayMS,
		"max_attempts": s.config.Scrape.MaxRetryAttempts,
	})

	for page := 1; ; page++ {
		s.limiter.Wait()
		s.progress.PageStarted(page)

		doc, err := s.fetchPage(ctx, page)
		if err != nil {
			s.logger.WithError(err).WithField("page", page).Error("giving up on listing page")
			return nil, err
		}

		matched, outOfYear, skipped := s.parsePage(doc, yearLabel, agg)
		result.Pages++
		result.Matched += matched
		result.OutOfYear += outOfYear
		result.Skipped += skipped

		s.Metrics.AddEntries(extract.Matched.String(), matched)
		s.Metrics.AddEntries(extract.NotInYear.String(), outOfYear)
		s.Metrics.AddEntries(extract.Skipped.String(), skipped)
		s.Metrics.AddAbsorbed(matched)

		logger.LogPageFetch(s.username, page, matched+outOfYear+skipped, nil)
		logger.LogScrapeProgress(s.username, page, result.Matched)
		s.progress.PageCompleted(page, matched)

		s.logger.DebugWithFields("page parsed", map[string]interface{}{
			"page":        page,
			"matched":     matched,
			"out_of_year": outOfYear,
			"skipped":     skipped,
		})

		// The listing is newest-first, so a page without a single match
		// means the target year is behind us.
		if matched == 0 {
			s.logger.InfoWithFields("no works in target year, listing exhausted", map[string]interface{}{
				"page": page,
			})
			break
		}
	}

	tables, dataset := agg.Finalize()
	result.Tables = tables
	result.Dataset = dataset
	result.Duration = time.Since(start)

	s.progress.Done(result.Pages, result.Matched)
	s.logger.InfoWithFields("scrape run complete", map[string]interface{}{
		"pages":       result.Pages,
		"works":       result.Matched,
		"words":       tables.WordCount,
		"duration_ms": result.Duration.Milliseconds(),
	})
	logger.LogComponentStop("scraper", "listing exhausted")

	return result, nil
}

// fetchPage fetches one listing page, retrying every failure at the fixed
// inter-page delay so failed and successful fetches pace the archive the
// same way.
func (s *Scraper) fetchPage(ctx context.Context, page int) (*goquery.Document, error) {
	cfg := &retry.Config{
		MaxAttempts: s.config.Scrape.MaxRetryAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: s.config.Scrape.Delay()},
		RetryIf:     retry.AnyError,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			s.Metrics.IncRetry()
			s.progress.RetryScheduled(page, attempt, err)
		},
		Context: ctx,
		Logger:  s.logger.WithField("page", page),
	}

	return retry.DoWithResult(func() (*goquery.Document, error) {
		start := time.Now()
		doc, err := s.session.FetchHistoryPage(ctx, s.config.Scrape.Listing, page)
		s.Metrics.ObservePageFetch(time.Since(start))
		if err != nil {
			s.Metrics.IncFetchError(string(errors.GetType(err)))
			return nil, err
		}
		s.Metrics.IncPageFetched()
		return doc, nil
	}, cfg)
}

// parsePage runs the extractor over every entry in document order and
// absorbs the matched records.
func (s *Scraper) parsePage(doc *goquery.Document, year string, agg *stats.Aggregator) (matched, outOfYear, skipped int) {
	entries := extract.Entries(doc)
	entries.Each(func(_ int, sel *goquery.Selection) {
		rec, outcome := extract.Entry(sel, year)
		switch outcome {
		case extract.Matched:
			agg.Absorb(*rec)
			matched++
		case extract.NotInYear:
			outOfYear++
		case extract.Skipped:
			skipped++
		}
	})

	return matched, outOfYear, skipped
}

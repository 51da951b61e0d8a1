package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/errors"
	"ao3wrapped/pkg/logger"
	"ao3wrapped/pkg/stats"
)

// workEntry builds one history blurb in the listing markup
func workEntry(title, author, visited, words string) string {
	return fmt.Sprintf(`
<li class="reading work blurb group work-1" role="article">
  <div class="header module">
    <h4 class="heading">
      <a href="/works/1">%s</a>
      by
      <a rel="author" href="/users/%s">%s</a>
    </h4>
    <h5 class="fandoms heading">
      <a class="tag" href="#">Star Trek</a>
    </h5>
    <ul class="required-tags">
      <li><a><span class="rating-teen rating"><span class="text">Teen And Up Audiences</span></span></a></li>
      <li><a><span class="warning-no warnings"><span class="text">No Archive Warnings Apply</span></span></a></li>
      <li><a><span class="category-slash category"><span class="text">M/M</span></span></a></li>
      <li><a><span class="complete-yes iswip"><span class="text">Complete Work</span></span></a></li>
    </ul>
    <p class="datetime">19 Aug 2024</p>
  </div>
  <ul class="tags commas index group">
    <li class="relationships"><a class="tag">James T. Kirk/Spock</a></li>
    <li class="characters"><a class="tag">Spock</a></li>
    <li class="freeforms"><a class="tag">Fluff</a></li>
  </ul>
  <div class="user module group">
    <h4 class="viewed heading">Last visited: %s

      (Latest version.)

      Visited 2 times</h4>
  </div>
  <dl class="stats">
    <dt class="words">Words:</dt><dd class="words">%s</dd>
    <dt class="kudos">Kudos:</dt><dd class="kudos"><a href="#">10</a></dd>
    <dt class="hits">Hits:</dt><dd class="hits">100</dd>
  </dl>
</li>`, title, author, author, visited, words)
}

// brokenEntry is a blurb without the visited block, which the extractor skips
func brokenEntry(title string) string {
	return fmt.Sprintf(`
<li class="reading work blurb group work-2" role="article">
  <div class="header module">
    <h4 class="heading"><a href="/works/2">%s</a></h4>
  </div>
</li>`, title)
}

func listingPage(entries ...string) string {
	return fmt.Sprintf(
		`<html><body><ol class="reading work index group">%s</ol></body></html>`,
		strings.Join(entries, "\n"),
	)
}

// mockHistoryFetcher serves canned listing pages with injectable failures.
// Run is single-threaded, so plain counters are enough.
type mockHistoryFetcher struct {
	pages        map[int]string
	failuresLeft map[int]int
	failWith     error
	calls        map[int]int
	listings     []string
}

func newMockHistoryFetcher() *mockHistoryFetcher {
	return &mockHistoryFetcher{
		pages:        make(map[int]string),
		failuresLeft: make(map[int]int),
		calls:        make(map[int]int),
	}
}

func (m *mockHistoryFetcher) FetchHistoryPage(ctx context.Context, listing string, page int) (*goquery.Document, error) {
	m.calls[page]++
	m.listings = append(m.listings, listing)

	if m.failuresLeft[page] > 0 {
		m.failuresLeft[page]--
		err := m.failWith
		if err == nil {
			err = &errors.Error{
				Type:    errors.ErrorTypeServerError,
				Message: "server error",
				Code:    503,
			}
		}
		return nil, err
	}

	html, ok := m.pages[page]
	if !ok {
		html = listingPage()
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *mockHistoryFetcher) totalCalls() int {
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.DelayMS = 0
	return cfg
}

func TestNew(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	s := New(fetcher, "testuser", testConfig())

	assert.NotNil(t, s.session)
	assert.NotNil(t, s.limiter)
	assert.NotNil(t, s.config)
	assert.NotNil(t, s.logger)
	assert.NotNil(t, s.Metrics)
	assert.NotEmpty(t, s.runID)
}

func TestRunWalksUntilOutOfYear(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "1,000"),
		workEntry("Second Star", "bob", "20 Nov 2024", "2,000"),
	)
	fetcher.pages[2] = listingPage(
		workEntry("Third Watch", "alice", "03 Mar 2024", "3,000"),
		workEntry("Old Flame", "carol", "30 Dec 2023", "4,000"),
	)
	fetcher.pages[3] = listingPage(
		workEntry("Older Still", "dave", "12 Jun 2023", "5,000"),
	)

	s := New(fetcher, "testuser", testConfig())
	result, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, "2024", result.Year)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 3, result.Matched)
	assert.Equal(t, 2, result.OutOfYear)
	assert.Zero(t, result.Skipped)

	// Exactly one fetch per page, no page revisited
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, fetcher.calls)
	assert.Equal(t, []string{"readings", "readings", "readings"}, fetcher.listings)

	// The tables carry only in-year works
	require.NotNil(t, result.Tables)
	assert.Equal(t, uint32(2), result.Tables.Authors["alice"])
	assert.Equal(t, uint32(1), result.Tables.Authors["bob"])
	assert.NotContains(t, result.Tables.Authors, "carol")
	assert.Equal(t, uint64(6000), result.Tables.WordCount)

	// Dataset rows keep discovery order
	require.Equal(t, 3, result.Dataset.Len())
	assert.Equal(t, "The Longest Night", result.Dataset.Records[0].Title)
	assert.Equal(t, "Second Star", result.Dataset.Records[1].Title)
	assert.Equal(t, "Third Watch", result.Dataset.Records[2].Title)

	assert.Equal(t, float64(3), testutil.ToFloat64(s.Metrics.PagesFetchedTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(s.Metrics.RecordsAbsorbedTotal))
}

func TestRunStopsOnFirstPageWithoutMatch(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("Old Flame", "carol", "30 Dec 2023", "4,000"),
	)
	fetcher.pages[2] = listingPage(
		workEntry("Never Reached", "dave", "01 Jan 2024", "1,000"),
	)

	s := New(fetcher, "testuser", testConfig())
	result, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Zero(t, result.Matched)
	assert.Equal(t, 1, result.OutOfYear)
	assert.Equal(t, 1, fetcher.totalCalls())
	assert.Zero(t, result.Dataset.Len())
	assert.Empty(t, result.Tables.Authors)
}

func TestRunEmptyListing(t *testing.T) {
	fetcher := newMockHistoryFetcher()

	s := New(fetcher, "testuser", testConfig())
	result, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Zero(t, result.Matched)
	assert.Zero(t, result.OutOfYear)
	assert.Zero(t, result.Skipped)
}

func TestRunRetriesFailedFetch(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "1,000"),
	)
	fetcher.failuresLeft[1] = 2

	s := New(fetcher, "testuser", testConfig())
	result, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 3, fetcher.calls[1], "two failures then a success")
	assert.Equal(t, float64(2), testutil.ToFloat64(s.Metrics.RetriesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(s.Metrics.FetchErrorsTotal.WithLabelValues("server_error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.PagesFetchedTotal))
}

// An unattended run is diagnosed from its logs, so every retry warning must
// say which page it is stuck on and which attempt just failed.
func TestRunLogsRetriesWithPage(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "1,000"),
	)
	fetcher.failuresLeft[1] = 1

	s := New(fetcher, "testuser", testConfig())
	tl := logger.NewTestLogger()
	s.logger = tl

	_, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	entry, ok := tl.Find("retrying operation")
	require.True(t, ok, "expected a retry warning")
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, 1, entry.Fields["page"])
	assert.Equal(t, 1, entry.Fields["attempt"])
}

func TestRunRetryCapExceeded(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.failuresLeft[1] = 100

	cfg := testConfig()
	cfg.Scrape.MaxRetryAttempts = 2

	s := New(fetcher, "testuser", cfg)
	tl := logger.NewTestLogger()
	s.logger = tl
	result, err := s.Run(context.Background(), 2024)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "max retry attempts")
	assert.Equal(t, 2, fetcher.calls[1])

	entry, ok := tl.Find("giving up on listing page")
	require.True(t, ok, "expected a give-up error log")
	assert.Equal(t, 1, entry.Fields["page"])
	assert.Error(t, entry.Err)
}

func TestRunHonorsContextCancel(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.failuresLeft[1] = 100

	cfg := testConfig()
	cfg.Scrape.DelayMS = 50

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(fetcher, "testuser", cfg)
	result, err := s.Run(ctx, 2024)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Equal(t, 1, fetcher.calls[1], "no retry after cancellation")
}

func TestParsePageOutcomeCounts(t *testing.T) {
	page := listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "1,000"),
		brokenEntry("No Visited Block"),
		workEntry("Old Flame", "carol", "30 Dec 2023", "4,000"),
	)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	s := New(newMockHistoryFetcher(), "testuser", testConfig())
	agg := stats.NewAggregator()

	matched, outOfYear, skipped := s.parsePage(doc, "2024", agg)

	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, outOfYear)
	assert.Equal(t, 1, skipped)

	tables, dataset := agg.Finalize()
	assert.Equal(t, uint32(1), tables.Authors["alice"])
	assert.Equal(t, 1, dataset.Len())
}

func TestRunRecordFields(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "12,345"),
	)

	s := New(fetcher, "testuser", testConfig())
	result, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	require.Equal(t, 1, result.Dataset.Len())
	rec := result.Dataset.Records[0]
	assert.Equal(t, "The Longest Night", rec.Title)
	assert.Equal(t, []string{"alice"}, rec.Authors)
	assert.Equal(t, int64(12345), rec.WordCount)
	assert.Equal(t, "24 Dec 2024", rec.LastVisited)
	assert.Equal(t, 2, rec.Visitations)
	assert.True(t, result.Duration >= 0)
}

func TestRunPacesPages(t *testing.T) {
	fetcher := newMockHistoryFetcher()
	fetcher.pages[1] = listingPage(
		workEntry("The Longest Night", "alice", "24 Dec 2024", "1,000"),
	)

	cfg := testConfig()
	cfg.Scrape.DelayMS = 60

	s := New(fetcher, "testuser", cfg)

	start := time.Now()
	_, err := s.Run(context.Background(), 2024)
	require.NoError(t, err)

	// Two pages with one enforced gap between them
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Equal(t, 2, fetcher.totalCalls())
}

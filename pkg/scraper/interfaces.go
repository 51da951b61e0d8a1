package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// HistoryFetcher is the slice of an authenticated archive session the
// controller needs. *archive.Session satisfies it.
type HistoryFetcher interface {
	FetchHistoryPage(ctx context.Context, listing string, page int) (*goquery.Document, error)
}

// Package extract turns reading history markup into WorkRecords.
//
// This package includes:
//   - Selectors for the archive's history listing markup
//   - A pure per-entry extractor with an explicit three-way outcome
//   - Lenient numeric parsing that degrades to zero instead of failing
//
// Example usage:
//
//	doc, err := goquery.NewDocumentFromReader(body)
//	if err != nil {
//	    return err
//	}
//
//	extract.Entries(doc).Each(func(_ int, sel *goquery.Selection) {
//	    rec, outcome := extract.Entry(sel, "2024")
//	    if outcome == extract.Matched {
//	        agg.Absorb(*rec)
//	    }
//	})
//
// The extractor never aggregates; feeding records to the aggregation
// engine is the caller's job. A record is produced only for entries whose
// last-visited date contains the target year.
package extract

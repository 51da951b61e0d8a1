package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ao3wrapped/pkg/models"
)

// Outcome classifies the result of extracting one history entry
type Outcome int

const (
	// Matched means the entry was last visited in the target year and
	// produced a record
	Matched Outcome = iota

	// NotInYear means the entry's last-visited date falls outside the
	// target year
	NotInYear

	// Skipped means the entry is missing structurally required markup
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case NotInYear:
		return "not_in_year"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Selectors for the reading history markup
const (
	// EntrySelector matches one work blurb in the history listing
	EntrySelector = "ol.reading.work.index.group li[class*='reading work blurb group']"

	visitedSelector     = "div.user.module.group h4"
	headerSelector      = "div.header.module"
	titleSelector       = "h4.heading a"
	authorSelector      = "h4.heading a[rel='author']"
	updatedSelector     = "p"
	fandomSelector      = "h5.fandoms.heading a"
	requiredTagSelector = "ul li a span.text"
	shipSelector        = "ul.tags.commas li.relationships"
	characterSelector   = "ul.tags.commas li.characters"
	freeformSelector    = "ul.tags.commas li.freeforms"
	statsSelector       = "dl.stats"
	wordsSelector       = "dd.words"
	kudosSelector       = "dd.kudos a"
	hitsSelector        = "dd.hits"
)

// orphanAccount is the archive's placeholder owner for disowned works and
// never counts as an author
const orphanAccount = "orphan_account"

// visitedPrefix introduces the last-visited date in the visited block
const visitedPrefix = "Last visited:"

// requiredTagSlots is the number of classification spans a well-formed
// entry carries: rating, archive warnings, categories, completion status,
// in that order
const requiredTagSlots = 4

// Entries selects the history entries of a listing page in document order
func Entries(doc *goquery.Document) *goquery.Selection {
	return doc.Find(EntrySelector)
}

// Entry extracts a WorkRecord from one history entry. The record is
// non-nil only when the outcome is Matched. Extraction has no side
// effects; a malformed entry is skipped without touching its neighbors.
func Entry(sel *goquery.Selection, year string) (*models.WorkRecord, Outcome) {
	visited := sel.Find(visitedSelector).First()
	if visited.Length() == 0 {
		return nil, Skipped
	}
	visitedText := visited.Text()
	lastVisited := visitedDate(visitedText)

	if !strings.Contains(lastVisited, year) {
		return nil, NotInYear
	}

	header := sel.Find(headerSelector).First()
	if header.Length() == 0 {
		return nil, Skipped
	}

	titleElem := header.Find(titleSelector).First()
	if titleElem.Length() == 0 {
		return nil, Skipped
	}

	rec := &models.WorkRecord{
		Title:       titleElem.Text(),
		LastVisited: lastVisited,
		Visitations: visitations(visitedText),
	}

	header.Find(authorSelector).Each(func(_ int, a *goquery.Selection) {
		if name := a.Text(); name != orphanAccount {
			rec.Authors = append(rec.Authors, name)
		}
	})

	rec.LastUpdated = header.Find(updatedSelector).First().Text()

	header.Find(fandomSelector).Each(func(_ int, f *goquery.Selection) {
		rec.Fandoms = append(rec.Fandoms, f.Text())
	})

	reqTags := header.Find(requiredTagSelector).Map(func(_ int, t *goquery.Selection) string {
		return t.Text()
	})
	if len(reqTags) < requiredTagSlots {
		return nil, Skipped
	}

	rec.Rating = reqTags[0]
	// Slot 1 holds the archive warnings, which the summary does not use.
	rec.ShipTypes = strings.Split(reqTags[2], ", ")
	rec.Status = reqTags[3]

	sel.Find(shipSelector).Each(func(_ int, s *goquery.Selection) {
		rec.Ships = append(rec.Ships, s.Text())
	})
	sel.Find(characterSelector).Each(func(_ int, c *goquery.Selection) {
		rec.Characters = append(rec.Characters, c.Text())
	})
	sel.Find(freeformSelector).Each(func(_ int, t *goquery.Selection) {
		rec.AdditionalTags = append(rec.AdditionalTags, t.Text())
	})

	// A listing without a stats block still yields a record; the numeric
	// fields degrade to zero.
	stats := sel.Find(statsSelector).First()
	rec.WordCount = numericField(stats, wordsSelector)
	rec.Kudos = numericField(stats, kudosSelector)
	rec.Hits = numericField(stats, hitsSelector)

	return rec, Matched
}

// visitedDate reduces the visited block text to the display date, e.g.
// "Last visited: 24 Dec 2024" gives "24 Dec 2024"
func visitedDate(raw string) string {
	stripped, ok := strings.CutPrefix(strings.TrimSpace(raw), visitedPrefix)
	if !ok {
		stripped = ""
	}
	line, _, _ := strings.Cut(stripped, "\n")
	return strings.TrimSpace(line)
}

// visitations parses the "Visited N times" fragment of the visited block.
// "Visited once" and anything that is not a positive count fall back to a
// single visit.
func visitations(raw string) int {
	token := "once"
	if _, after, found := strings.Cut(raw, "Visited "); found {
		if fields := strings.Fields(after); len(fields) > 0 {
			token = fields[0]
		}
	}
	if token == "once" {
		return 1
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// numericField parses a comma-grouped count out of one stats cell. Counts
// are never negative, so the parse is unsigned; missing cells and anything
// unparsable, a minus sign included, count as zero.
func numericField(stats *goquery.Selection, selector string) int64 {
	cell := stats.Find(selector).First()
	if cell.Length() == 0 {
		return 0
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(cell.Text(), ",", ""), 10, 63)
	if err != nil {
		return 0
	}
	return int64(n)
}

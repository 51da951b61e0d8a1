// Package report renders the wrapped yearly summary from the frequency
// tables and the collected dataset. The headline sentences follow a fixed
// wording; presentation adds a banner, section headlines, and runner-up
// tables around them.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"ao3wrapped/pkg/models"
	"ao3wrapped/pkg/stats"
)

// runnersUp caps how many entries follow the top spot of each ranking
const runnersUp = 9

// novelWords approximates one novel for the totals line
const novelWords = 70000

// Report renders the yearly summary as prose and tables
type Report struct {
	out io.Writer
}

// New creates a report bound to an output writer
func New(out io.Writer) *Report {
	return &Report{out: out}
}

// Render prints the full summary for one year. Sections without data print
// nothing.
func (r *Report) Render(year string, tables *models.Tables, dataset *models.Dataset) {
	r.banner(year)
	r.totals(tables, dataset)
	r.mostVisited(dataset)

	r.topAndRest("Ship types", "Ship type", tables.ShipTypes)
	r.topAndRest("Ratings", "Rating", tables.Ratings)
	r.statuses(tables.Statuses)
	r.authors(tables.Authors)
	r.fandoms(tables.Fandoms)
	r.ships(tables.Ships)
	r.characters(tables.Characters)
	r.tags(tables.Tags, dataset)
	fmt.Fprintln(r.out)

	r.extremes(dataset)
}

func (r *Report) banner(year string) {
	fmt.Fprintln(r.out, bannerStyle.Render("AO3 Wrapped "+year))
	fmt.Fprintln(r.out)
}

func (r *Report) section(title string) {
	fmt.Fprintln(r.out, sectionStyle.Render(title))
}

func (r *Report) totals(tables *models.Tables, dataset *models.Dataset) {
	words := tables.WordCount
	fmt.Fprintf(r.out,
		"You've read %d fanfics this year, totaling %d words, or %.2f words/day. There's about 70000 words in a novel. You could've read %.2f novels this year, but you read fanfics instead.\n",
		dataset.Len(),
		words,
		float64(words)/365.0,
		float64(words)/float64(novelWords),
	)
	fmt.Fprintln(r.out)
}

func (r *Report) mostVisited(dataset *models.Dataset) {
	rec, ok := stats.MostVisited(dataset)
	if !ok {
		return
	}
	fmt.Fprintf(r.out, "The fic you've visited the most was %s by %s, with %d visits.\n",
		rec.Title, joinAuthors(rec.Authors), rec.Visitations)
	fmt.Fprintln(r.out)
}

// topAndRest renders the shared shape of the ship-type and rating sections
func (r *Report) topAndRest(title, noun string, m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section(title)
	fmt.Fprintf(r.out, "You read %d %s fics this year.\n", ranked[0].Count, ranked[0].Key)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read")
		r.runnerTable(noun, ranked[1:])
	}
	fmt.Fprintln(r.out)
}

func (r *Report) statuses(m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) < 2 {
		return
	}
	r.section("Statuses")
	fmt.Fprintf(r.out, "You read %d %s and %d %s fics this year.\n",
		ranked[0].Count, ranked[0].Key, ranked[1].Count, ranked[1].Key)
	fmt.Fprintln(r.out)
}

func (r *Report) authors(m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section("Authors")
	fmt.Fprintf(r.out, "You read %d different authors this year.\n", len(ranked))
	fmt.Fprintf(r.out, "Your most read author this year was %s, with %d fics.\n",
		ranked[0].Key, ranked[0].Count)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read:")
		r.runnerTable("Author", ranked[1:])
	}
	fmt.Fprintln(r.out)
}

func (r *Report) fandoms(m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section("Fandoms")
	fmt.Fprintf(r.out, "You read fics for %d different fandoms this year.\n", len(ranked))
	fmt.Fprintf(r.out, "Your most read fandom was %s, with %d fics this year.\n",
		ranked[0].Key, ranked[0].Count)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read:")
		r.runnerTable("Fandom", ranked[1:])
	}
	fmt.Fprintln(r.out)
}

func (r *Report) ships(m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section("Ships")
	fmt.Fprintf(r.out, "You read fics with %d different ships this year.\n", len(ranked))
	fmt.Fprintf(r.out, "Are you not tired of reading about %s? You read %d fics of them this year.\n",
		ranked[0].Key, ranked[0].Count)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read:")
		r.runnerTable("Ship", ranked[1:])
	}
	fmt.Fprintln(r.out)
}

func (r *Report) characters(m map[string]uint32) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section("Characters")
	fmt.Fprintf(r.out, "You read about %d different characters this year.\n", len(ranked))
	fmt.Fprintf(r.out, "What a %s stan. You read %d fics of them this year.\n",
		ranked[0].Key, ranked[0].Count)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read:")
		r.runnerTable("Character", ranked[1:])
	}
	fmt.Fprintln(r.out)
}

// tags has no trailing blank of its own; Render separates it from the
// extremes unconditionally
func (r *Report) tags(m map[string]uint32, dataset *models.Dataset) {
	ranked := stats.Rank(m)
	if len(ranked) == 0 {
		return
	}
	r.section("Tags")
	fmt.Fprintf(r.out, "You read fics with %d different tags this year, averaging %.2f tags/work.\n",
		len(ranked), float64(len(ranked))/float64(dataset.Len()))
	fmt.Fprintf(r.out, "You absolutely love %s, but you already knew that. You read %d fics with that tag this year.\n",
		ranked[0].Key, ranked[0].Count)
	if len(ranked) > 1 {
		fmt.Fprintln(r.out, "You also read:")
		r.runnerTable("Tag", ranked[1:])
	}
}

func (r *Report) extremes(dataset *models.Dataset) {
	if dataset.Len() == 0 {
		return
	}
	r.section("By the numbers")
	r.extremeGroup(dataset, "word count", func(rec models.WorkRecord) int64 { return rec.WordCount })
	fmt.Fprintln(r.out)
	r.extremeGroup(dataset, "hits", func(rec models.WorkRecord) int64 { return rec.Hits })
	fmt.Fprintln(r.out)
	r.extremeGroup(dataset, "kudos", func(rec models.WorkRecord) int64 { return rec.Kudos })
}

// extremeGroup prints the max, min, and mean lines for one numeric field
func (r *Report) extremeGroup(dataset *models.Dataset, label string, field func(models.WorkRecord) int64) {
	max, _ := stats.MaxBy(dataset, field)
	min, _ := stats.MinBy(dataset, field)

	fmt.Fprintf(r.out, "Most %s: %s by %s with %d %s\n",
		label, max.Title, joinAuthors(max.Authors), max.Value, label)
	fmt.Fprintf(r.out, "Least %s: %s by %s with %d %s\n",
		label, min.Title, joinAuthors(min.Authors), min.Value, label)
	fmt.Fprintf(r.out, "Average %s: %d\n", label, int64(stats.MeanBy(dataset, field)))
}

// runnerTable renders up to runnersUp ranked entries as a rounded table
func (r *Report) runnerTable(noun string, rest []stats.RankedEntry) {
	if len(rest) > runnersUp {
		rest = rest[:runnersUp]
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(r.out)
	t.AppendHeader(table.Row{"Fics", noun})
	for _, e := range rest {
		t.AppendRow(table.Row{e.Count, e.Key})
	}
	t.Render()
}

// joinAuthors renders an author list the way the works artifact stores it
func joinAuthors(authors []string) string {
	return strings.Join(authors, ",")
}

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ScrapeProgress renders the state of a history walk as a single updating
// terminal line. Every method is safe on a nil receiver, so runs without a
// display never guard their calls.
type ScrapeProgress struct {
	mu        sync.Mutex
	out       io.Writer
	username  string
	pages     int
	works     int
	retries   int
	startTime time.Time
}

// NewScrapeProgress creates a progress display for one scrape run
func NewScrapeProgress(username string) *ScrapeProgress {
	return &ScrapeProgress{
		out:       os.Stdout,
		username:  username,
		startTime: time.Now(),
	}
}

// PageStarted announces that a listing page fetch is underway
func (p *ScrapeProgress) PageStarted(page int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearLine()
	fmt.Fprintf(p.out, "%s Fetching page %d...", Magenta("→"), page)
}

// PageCompleted folds one parsed page into the status line
func (p *ScrapeProgress) PageCompleted(page, matched int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages = page
	p.works += matched

	elapsed := time.Since(p.startTime)
	rate := float64(p.works) / elapsed.Minutes()

	line := fmt.Sprintf("%s [page %d] %d works • %.1f/min • %s",
		Cyan(p.username),
		page,
		p.works,
		rate,
		p.formatDuration(elapsed),
	)
	if p.retries > 0 {
		line += fmt.Sprintf(" • %s", Yellow(fmt.Sprintf("%d retries", p.retries)))
	}

	p.clearLine()
	fmt.Fprint(p.out, line)
}

// RetryScheduled reports a failed fetch that will be attempted again
func (p *ScrapeProgress) RetryScheduled(page, attempt int, err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.retries++
	fmt.Fprintf(p.out, "\n%s Page %d attempt %d failed: %v\n", Yellow("⚠"), page, attempt, err)
}

// Done prints the closing summary for the run
func (p *ScrapeProgress) Done(pages, works int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Fprintf(p.out, "\n\n%s Collected %d works from %s's history\n",
		Green("✓"),
		works,
		p.username,
	)
	fmt.Fprintf(p.out, "  %s %d pages in %s (%.1f works/min)\n",
		Dim("•"),
		pages,
		p.formatDuration(elapsed),
		float64(works)/elapsed.Minutes(),
	)
	if p.retries > 0 {
		fmt.Fprintf(p.out, "  %s %d fetches retried\n", Dim("•"), p.retries)
	}
}

// clearLine wipes the status line before redrawing it
func (p *ScrapeProgress) clearLine() {
	fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", 100))
}

// formatDuration formats a duration in a human-readable way
func (p *ScrapeProgress) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// Package ui provides terminal output for the scrape run and the wrapped
// summary. This file demonstrates example usage of the UI components.
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Year", "2024")                     // Cyan label, yellow value
ui.PrintSuccess("Scrape complete")               // Green success message
ui.PrintError("Login failed", err)               // Red error message
ui.PrintWarning("No stored credentials")         // Yellow warning message
ui.PrintHighlight("[STATS ONLY]")                // Magenta highlight message

// Scrape progress (one updating status line)
progress := ui.NewScrapeProgress("username")
progress.PageStarted(1)                          // "Fetching page 1..."
progress.PageCompleted(1, 20)                    // works so far, rate, elapsed
progress.RetryScheduled(2, 1, err)               // failed fetch, will retry
progress.Done(12, 234)                           // closing summary

// A nil *ScrapeProgress is valid and renders nothing, so quiet runs pass
// nil around instead of branching at every call site.

// Notifications (cross-platform)
notifier := ui.NewNotifier()
notifier.ScrapeFinished(234, 12)                 // "Collected 234 works from 12 pages"
notifier.ScrapeFailed(err)                       // "Scrape failed: login rejected"
*/

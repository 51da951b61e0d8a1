// Package logger provides a structured logging interface for the scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors on stderr
// - Optional JSON output and file output
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "ao3wrapped/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Scrape started")
//	logger.WithField("page", 3).Info("Fetching history page")
//	logger.WithError(err).Error("Failed to fetch page")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "scraper").
//	    WithField("run_id", runID)
//
//	// Use structured logging
//	log.InfoWithFields("Page processed", map[string]interface{}{
//	    "page":    2,
//	    "matched": 18,
//	    "skipped": 1,
//	})
//
// Log output goes to stderr so the year-end report on stdout stays clean
// and pipeable.
package logger

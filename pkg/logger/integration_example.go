package logger

// This file shows how to integrate the logger into the main application

/*
Example integration in cmd/ao3wrapped:

package main

import (
	"os"

	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/logger"
	"ao3wrapped/pkg/scraper"
	"ao3wrapped/pkg/ui"
)

func runScrape(cfg *config.Config) {
	// Initialize the logger before any other component
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	logger.Info("AO3 Wrapped starting")

	// Log configuration (never log credentials)
	logger.WithFields(map[string]interface{}{
		"year":       cfg.Scrape.Year,
		"listing":    cfg.Scrape.Listing,
		"delay_ms":   cfg.Scrape.DelayMS,
		"output_dir": cfg.Scrape.OutputDir,
		"log_level":  cfg.Logging.Level,
	}).Debug("Configuration loaded")

	s := scraper.New(session, username, cfg)

	result, err := s.Run(ctx, cfg.Scrape.TargetYear())
	if err != nil {
		logger.WithError(err).Fatal("Scrape failed")
	}

	logger.WithFields(map[string]interface{}{
		"works": result.Matched,
		"words": result.Tables.WordCount,
	}).Info("Scrape finished")
}

Component-level loggers carry their own fields:

	log := logger.GetLogger().
		WithField("component", "archive").
		WithField("username", username)

	log.InfoWithFields("Page fetched", map[string]interface{}{
		"page":        page,
		"status_code": res.StatusCode(),
		"duration_ms": res.Time().Milliseconds(),
	})

Fetch retries log at warn level and keep the run alive; only auth and
replay-artifact failures are fatal:

	log.WithError(err).WarnWithFields("Retrying page fetch", map[string]interface{}{
		"page":    page,
		"attempt": attempt,
	})
*/

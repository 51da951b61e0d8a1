package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ao3wrapped/pkg/archive"
	"ao3wrapped/pkg/auth"
	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/logger"
	"ao3wrapped/pkg/report"
	"ao3wrapped/pkg/scraper"
	"ao3wrapped/pkg/storage"
	"ao3wrapped/pkg/ui"
)

var (
	// Scrape command flags
	scrapeYear    int
	listing       string
	delayMS       int
	maxRetries    int
	outputDir     string
	accountName   string
	notifications bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape your reading history and build the yearly report",
	Long: `Log into the archive, walk your reading history page by page and build
a wrapped-style report for the target year.

This command requires valid archive credentials, configured through:
  - Stored credentials (use 'ao3wrapped auth login' to store)
  - Environment variables (AO3_USERNAME and AO3_PASSWORD, .env files work)
  - An interactive prompt when neither is available

Reading history is only visible to its owner, so the account being logged
into is the account whose history gets scraped. The collected works are
written to user_<year>.json and works_<year>.csv so the report can be
replayed later with 'ao3wrapped stats'.`,
	Example: `  # Scrape the current year using stored credentials
  ao3wrapped scrape

  # Scrape a specific year into a specific directory
  ao3wrapped scrape --year 2023 --output ~/ao3

  # Use a specific stored account and slow the paging down
  ao3wrapped scrape --account myaccount --delay 10000

  # Give up on a page after five attempts instead of retrying forever
  ao3wrapped scrape --max-retries 5`,
	Args: cobra.NoArgs,
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Local flags for scrape command
	scrapeCmd.Flags().IntVarP(&scrapeYear, "year", "y", 0, "target year (default: current year)")
	scrapeCmd.Flags().StringVar(&listing, "listing", "", `history listing to walk (default "readings")`)
	scrapeCmd.Flags().IntVar(&delayMS, "delay", 0, "delay between page fetches in milliseconds")
	scrapeCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum attempts per page, 0 retries forever")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the JSON and CSV artifacts")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	scrapeCmd.Flags().BoolVar(&notifications, "notifications", false, "send a desktop notification when the scrape finishes")
}

func runScrape(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if scrapeYear != 0 {
		flags["year"] = scrapeYear
	}
	if listing != "" {
		flags["listing"] = listing
	}
	if delayMS > 0 {
		flags["delay"] = delayMS
	}
	// 0 means retry forever, so presence of the flag matters, not its value
	if cmd.Flags().Changed("max-retries") {
		flags["retries"] = maxRetries
	}
	if outputDir != "" {
		flags["output-dir"] = outputDir
	}
	if notifications {
		flags["notifications"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	if metricsAddr != "" {
		flags["metrics-addr"] = metricsAddr
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("AO3 Wrapped starting")

	// Handle credentials
	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account
	if accountName != "" {
		// Use specific account
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'ao3wrapped auth list' to see stored accounts")
			os.Exit(1)
		}
		logger.WithField("account", account.Username).Info("Using stored credentials")
	} else {
		// Stored accounts and AO3_USERNAME/AO3_PASSWORD first, then ask
		account, err = credManager.RetrieveDefault()
		if err != nil {
			account, err = auth.NewPrompter().PromptAccount("")
			if err != nil {
				ui.PrintError("Failed to read credentials", err.Error())
				os.Exit(1)
			}
		}
	}

	if !archive.IsValidUsername(account.Username) {
		ui.PrintError("Invalid archive username", account.Username)
		os.Exit(1)
	}

	year := cfg.Scrape.TargetYear()
	if !quiet {
		ui.PrintInfo("Account", account.Username)
		ui.PrintInfo("Year", strconv.Itoa(year))
		ui.PrintInfo("Listing", cfg.Scrape.Listing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Log in
	client := archive.NewClient(archive.Config{
		BaseURL:    cfg.Archive.BaseURL,
		UserAgent:  cfg.Archive.UserAgent,
		Timeout:    cfg.Archive.Timeout(),
		LoginPause: cfg.Archive.LoginPause(),
	}, logger.GetLogger())

	session, err := client.Login(ctx, archive.Credentials{
		Username: account.Username,
		Password: account.Password,
	})
	if err != nil {
		logger.WithError(err).WithField("username", account.Username).Error("Login failed")
		ui.PrintError("Login failed", err.Error())
		os.Exit(1)
	}
	if !quiet {
		ui.PrintSuccess("Logged in as " + account.Username)
	}

	// Create the scraper and optionally expose its metrics
	s := scraper.New(session, account.Username, cfg)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: s.Metrics.Handler(),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server failed")
			}
		}()
		logger.WithField("addr", cfg.Metrics.Addr).Info("metrics server enabled")
	}

	if !quiet {
		s.SetProgress(ui.NewScrapeProgress(account.Username))
	}

	// Walk the history
	result, err := s.Run(ctx, year)
	if err != nil {
		logger.WithError(err).WithField("username", account.Username).Error("Scrape failed")
		ui.PrintError("Scrape failed", err.Error())
		if cfg.Notifications.Enabled {
			ui.NewNotifier().ScrapeFailed(err)
		}
		os.Exit(1)
	}

	// Persist the artifacts before printing anything
	store, err := storage.NewManager(cfg.Scrape.OutputDir)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}
	if err := store.SaveYear(result.Year, result.Tables, result.Dataset); err != nil {
		logger.WithError(err).Error("Failed to save artifacts")
		ui.PrintError("Failed to save artifacts", err.Error())
		os.Exit(1)
	}
	logger.WithFields(map[string]interface{}{
		"stats_file": store.StatsPath(result.Year),
		"works_file": store.WorksPath(result.Year),
	}).Info("artifacts saved")

	report.New(os.Stdout).Render(result.Year, result.Tables, result.Dataset)

	if cfg.Notifications.Enabled && cfg.Notifications.OnComplete {
		ui.NewNotifier().ScrapeFinished(result.Matched, result.Pages)
	}

	logger.WithFields(map[string]interface{}{
		"username":    account.Username,
		"year":        result.Year,
		"works":       result.Matched,
		"pages":       result.Pages,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Scrape completed successfully")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("metrics server shutdown failed")
		}
		cancel()
	}
}

package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/logger"
	"ao3wrapped/pkg/report"
	"ao3wrapped/pkg/storage"
	"ao3wrapped/pkg/ui"
)

var (
	// Stats command flags
	statsYear int
	statsDir  string
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Replay the report from saved artifacts",
	Long: `Rebuild the wrapped report from the user_<year>.json and works_<year>.csv
artifacts of an earlier scrape, without logging in or touching the archive.

Both artifacts must exist for the target year. Run 'ao3wrapped scrape'
first to produce them.`,
	Example: `  # Replay the current year
  ao3wrapped stats

  # Replay a specific year from a specific directory
  ao3wrapped stats --year 2023 --output ~/ao3`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVarP(&statsYear, "year", "y", 0, "year to replay (default: current year)")
	statsCmd.Flags().StringVarP(&statsDir, "output", "o", "", "directory holding the artifacts")
}

func runStats(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if statsYear != 0 {
		flags["year"] = statsYear
	}
	if statsDir != "" {
		flags["output-dir"] = statsDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)

	yearLabel := strconv.Itoa(cfg.Scrape.TargetYear())

	store, err := storage.NewManager(cfg.Scrape.OutputDir)
	if err != nil {
		ui.PrintError("Failed to open output directory", err.Error())
		os.Exit(1)
	}

	tables, dataset, err := store.LoadYear(yearLabel)
	if err != nil {
		logger.WithError(err).WithField("year", yearLabel).Error("Failed to load artifacts")
		ui.PrintError(err.Error(), "Run 'ao3wrapped scrape' first to produce the artifacts")
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"year":  yearLabel,
		"works": dataset.Len(),
	}).Info("replaying saved artifacts")

	report.New(os.Stdout).Render(yearLabel, tables, dataset)
}

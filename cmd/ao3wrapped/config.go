package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ao3wrapped/pkg/config"
	"ao3wrapped/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage AO3 Wrapped configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (AO3WRAPPED_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'ao3wrapped.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "ao3wrapped.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# AO3 Wrapped Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with AO3WRAPPED_
# For example: AO3WRAPPED_YEAR, AO3WRAPPED_DELAY_MS
#
# Credentials are NOT configured here. Store them with
# 'ao3wrapped auth login' or set AO3_USERNAME and AO3_PASSWORD.

# Archive connection settings
archive:
  # Base URL of the archive
  base_url: "https://archiveofourown.org"

  # User agent string sent with every request
  user_agent: "AO3Wrapped/1.0.0"

  # HTTP timeout in seconds
  timeout_seconds: 30

  # Pause between fetching the login page and posting the form,
  # in milliseconds
  login_pause_ms: 2000

# Scrape run settings
scrape:
  # History listing to walk
  listing: "readings"

  # Delay between listing page fetches in milliseconds.
  # Keep this generous: the archive rate limits aggressively.
  delay_ms: 6000

  # Target year. 0 means the current year.
  year: 0

  # Maximum attempts per page. 0 retries forever.
  max_retry_attempts: 0

  # Directory for the JSON and CSV artifacts
  output_dir: "."

# Prometheus metrics exposition
metrics:
  # Serve /metrics while a scrape runs
  enabled: false

  # Listen address, e.g. ":9090"
  addr: ""

# Desktop notifications
notifications:
  # Enable desktop notifications
  enabled: false

  # Notify when a scrape finishes
  on_complete: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log format: console, json
  format: "console"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the settings to taste")
	fmt.Println("2. Run 'ao3wrapped config validate' to check the configuration")
	fmt.Println("3. Store credentials with 'ao3wrapped auth login'")
	fmt.Println("4. Build your report with 'ao3wrapped scrape'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (AO3WRAPPED_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"ao3wrapped.yaml",
			"ao3wrapped.yml",
			".ao3wrapped.yaml",
			".ao3wrapped.yml",
			filepath.Join(os.Getenv("HOME"), ".ao3wrapped.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "ao3wrapped", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check paths
	if cfg.Scrape.OutputDir != "" {
		if err := os.MkdirAll(cfg.Scrape.OutputDir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Check value sanity
	if cfg.Scrape.DelayMS < 1000 {
		warnings = append(warnings, "delay_ms below 1000 will likely trip the archive's rate limiting")
	}
	if cfg.Scrape.Year > time.Now().Year() {
		warnings = append(warnings, fmt.Sprintf("year %d is in the future, the scrape will find nothing", cfg.Scrape.Year))
	}
	if cfg.Archive.TimeoutSeconds < 5 {
		warnings = append(warnings, "timeout_seconds below 5 may abort slow archive responses")
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Listing: %s\n", cfg.Scrape.Listing)
	fmt.Printf("  Target year: %d\n", cfg.Scrape.TargetYear())
	fmt.Printf("  Page delay: %dms\n", cfg.Scrape.DelayMS)
	fmt.Printf("  Max retries: %d\n", cfg.Scrape.MaxRetryAttempts)
	fmt.Printf("  Output directory: %s\n", cfg.Scrape.OutputDir)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the scraper
type Config struct {
	// Archive connection settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Scrape run settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Prometheus metrics settings
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ArchiveConfig holds settings for talking to the archive
type ArchiveConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	LoginPauseMS   int    `yaml:"login_pause_ms" json:"login_pause_ms"`
}

// Timeout returns the HTTP timeout as a duration
func (a ArchiveConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// LoginPause returns the pause between the token fetch and the login post
func (a ArchiveConfig) LoginPause() time.Duration {
	return time.Duration(a.LoginPauseMS) * time.Millisecond
}

// ScrapeConfig holds settings for a scrape run
type ScrapeConfig struct {
	// Listing is the history listing to walk, e.g. "readings"
	Listing string `yaml:"listing" json:"listing"`
	// DelayMS is the pause between listing page fetches in milliseconds
	DelayMS int `yaml:"delay_ms" json:"delay_ms"`
	// Year is the target year; 0 means the current local year
	Year int `yaml:"year" json:"year"`
	// MaxRetryAttempts caps page fetch retries; 0 means unlimited
	MaxRetryAttempts int `yaml:"max_retry_attempts" json:"max_retry_attempts"`
	// OutputDir is where the JSON and CSV artifacts are written
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// Delay returns the inter-page delay as a duration
func (s ScrapeConfig) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// TargetYear resolves the configured year, defaulting to the current one
func (s ScrapeConfig) TargetYear() int {
	if s.Year != 0 {
		return s.Year
	}
	return time.Now().Year()
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			BaseURL:        "https://archiveofourown.org",
			UserAgent:      "AO3Wrapped/1.0.0",
			TimeoutSeconds: 30,
			LoginPauseMS:   2000,
		},
		Scrape: ScrapeConfig{
			Listing:          "readings",
			DelayMS:          6000,
			Year:             0,
			MaxRetryAttempts: 0,
			OutputDir:        ".",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "",
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Archive settings
	if baseURL := os.Getenv("AO3WRAPPED_BASE_URL"); baseURL != "" {
		c.Archive.BaseURL = baseURL
	}
	if userAgent := os.Getenv("AO3WRAPPED_USER_AGENT"); userAgent != "" {
		c.Archive.UserAgent = userAgent
	}
	if pause := os.Getenv("AO3WRAPPED_LOGIN_PAUSE_MS"); pause != "" {
		var val int
		fmt.Sscanf(pause, "%d", &val)
		if val >= 0 {
			c.Archive.LoginPauseMS = val
		}
	}

	// Scrape settings
	if listing := os.Getenv("AO3WRAPPED_LISTING"); listing != "" {
		c.Scrape.Listing = listing
	}
	if delay := os.Getenv("AO3WRAPPED_DELAY_MS"); delay != "" {
		var val int
		fmt.Sscanf(delay, "%d", &val)
		if val > 0 {
			c.Scrape.DelayMS = val
		}
	}
	if year := os.Getenv("AO3WRAPPED_YEAR"); year != "" {
		var val int
		fmt.Sscanf(year, "%d", &val)
		if val > 0 {
			c.Scrape.Year = val
		}
	}
	if retries := os.Getenv("AO3WRAPPED_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.Scrape.MaxRetryAttempts = val
		}
	}
	if outputDir := os.Getenv("AO3WRAPPED_OUTPUT_DIR"); outputDir != "" {
		c.Scrape.OutputDir = outputDir
	}

	// Metrics
	if addr := os.Getenv("AO3WRAPPED_METRICS_ADDR"); addr != "" {
		c.Metrics.Enabled = true
		c.Metrics.Addr = addr
	}

	// Notifications
	if notifEnabled := os.Getenv("AO3WRAPPED_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	// Logging
	if logLevel := os.Getenv("AO3WRAPPED_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("AO3WRAPPED_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".ao3wrapped.yaml",
		".ao3wrapped.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "ao3wrapped", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "ao3wrapped", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".ao3wrapped.yaml"),
		filepath.Join(os.Getenv("HOME"), ".ao3wrapped.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate archive settings
	if c.Archive.BaseURL == "" {
		errs = append(errs, errors.New("archive base URL is required"))
	}
	if !strings.HasPrefix(c.Archive.BaseURL, "http://") && !strings.HasPrefix(c.Archive.BaseURL, "https://") {
		errs = append(errs, errors.New("archive base URL must start with http:// or https://"))
	}
	if c.Archive.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("archive timeout cannot be negative"))
	}
	if c.Archive.LoginPauseMS < 0 {
		errs = append(errs, errors.New("login pause cannot be negative"))
	}

	// Validate scrape settings
	if c.Scrape.Listing == "" {
		errs = append(errs, errors.New("listing is required"))
	}
	if c.Scrape.DelayMS < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}
	if c.Scrape.Year < 0 {
		errs = append(errs, errors.New("year cannot be negative"))
	}
	if c.Scrape.MaxRetryAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}
	if c.Scrape.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	// Validate metrics settings
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics address is required when metrics are enabled"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if year, ok := flags["year"].(int); ok && year > 0 {
		c.Scrape.Year = year
	}
	if listing, ok := flags["listing"].(string); ok && listing != "" {
		c.Scrape.Listing = listing
	}
	if delay, ok := flags["delay"].(int); ok && delay > 0 {
		c.Scrape.DelayMS = delay
	}
	// The key is only present when the flag was given, and 0 is a valid
	// value (retry forever), so apply it as-is
	if retries, ok := flags["retries"].(int); ok {
		c.Scrape.MaxRetryAttempts = retries
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Scrape.OutputDir = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if metricsAddr, ok := flags["metrics-addr"].(string); ok && metricsAddr != "" {
		c.Metrics.Enabled = true
		c.Metrics.Addr = metricsAddr
	}
	if notifications, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notifications
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".ao3wrapped.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

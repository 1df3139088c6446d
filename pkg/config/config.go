package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SuspendedURL is the page Twitter redirects to for suspended accounts
const SuspendedURL = "https://twitter.com/account/suspended"

// Config holds all configuration options for the tweet scraper
type Config struct {
	// Input tweet list
	Input InputConfig `yaml:"input" json:"input"`

	// Output table and checkpoint store
	Output OutputConfig `yaml:"output" json:"output"`

	// Batch sizing and flush cadence
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Media download settings
	Media MediaConfig `yaml:"media" json:"media"`

	// Tweet page fetching
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Session cookies for tweet pages
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Side logs for failed and suspended tweets
	Reports ReportsConfig `yaml:"reports" json:"reports"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InputConfig describes the input CSV
type InputConfig struct {
	File      string   `yaml:"file" json:"file"`
	PostTypes []string `yaml:"post_types" json:"post_types"`
}

// OutputConfig describes where result rows are written
type OutputConfig struct {
	File            string `yaml:"file" json:"file"`
	Driver          string `yaml:"driver" json:"driver"`
	MongoURI        string `yaml:"mongo_uri" json:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database" json:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection" json:"mongo_collection"`
}

// BatchConfig holds batch concurrency and checkpoint cadence
type BatchConfig struct {
	Size          int `yaml:"size" json:"size"`
	FlushInterval int `yaml:"flush_interval" json:"flush_interval"`
}

// MediaConfig holds media download configuration
type MediaConfig struct {
	Directory    string        `yaml:"directory" json:"directory"`
	Backoff      time.Duration `yaml:"backoff" json:"backoff"`
	MaxPerMinute int           `yaml:"max_per_minute" json:"max_per_minute"`
}

// FetchConfig holds HTTP settings for tweet pages and media
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	SuspendedURL  string        `yaml:"suspended_url" json:"suspended_url"`
	MaxRedirects  int           `yaml:"max_redirects" json:"max_redirects"`
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts"`
}

// TwitterConfig holds optional session cookies
type TwitterConfig struct {
	Account   string `yaml:"account" json:"account"`
	AuthToken string `yaml:"auth_token" json:"auth_token"`
	CT0       string `yaml:"ct0" json:"ct0"`
}

// ReportsConfig names the side log files
type ReportsConfig struct {
	SuspendedFile string `yaml:"suspended_file" json:"suspended_file"`
	FailedFile    string `yaml:"failed_file" json:"failed_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			File:      "",
			PostTypes: []string{"original"},
		},
		Output: OutputConfig{
			File:            "output.csv",
			Driver:          "csv",
			MongoDatabase:   "tweetscraper",
			MongoCollection: "rows",
		},
		Batch: BatchConfig{
			Size:          20,
			FlushInterval: 10,
		},
		Media: MediaConfig{
			Directory:    "./dumps",
			Backoff:      100 * time.Millisecond,
			MaxPerMinute: 0,
		},
		Fetch: FetchConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			SuspendedURL:  SuspendedURL,
			MaxRedirects:  10,
			RetryAttempts: 1,
		},
		Reports: ReportsConfig{
			SuspendedFile: "suspended_accounts.csv",
			FailedFile:    "failed_resources.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if input := os.Getenv("TWEETSCRAPER_INPUT"); input != "" {
		c.Input.File = input
	}
	if output := os.Getenv("TWEETSCRAPER_OUTPUT"); output != "" {
		c.Output.File = output
	}

	if size := os.Getenv("TWEETSCRAPER_BATCH_SIZE"); size != "" {
		val, err := strconv.Atoi(strings.TrimSpace(size))
		if err != nil {
			return fmt.Errorf("invalid TWEETSCRAPER_BATCH_SIZE: %w", err)
		}
		c.Batch.Size = val
	}
	if interval := os.Getenv("TWEETSCRAPER_FLUSH_INTERVAL"); interval != "" {
		val, err := strconv.Atoi(strings.TrimSpace(interval))
		if err != nil {
			return fmt.Errorf("invalid TWEETSCRAPER_FLUSH_INTERVAL: %w", err)
		}
		c.Batch.FlushInterval = val
	}

	if dir := os.Getenv("TWEETSCRAPER_MEDIA_DIR"); dir != "" {
		c.Media.Directory = dir
	}
	if backoff := os.Getenv("TWEETSCRAPER_BACKOFF"); backoff != "" {
		d, err := time.ParseDuration(backoff)
		if err != nil {
			return fmt.Errorf("invalid TWEETSCRAPER_BACKOFF: %w", err)
		}
		c.Media.Backoff = d
	}

	if token := os.Getenv("TWEETSCRAPER_AUTH_TOKEN"); token != "" {
		c.Twitter.AuthToken = token
	}
	if ct0 := os.Getenv("TWEETSCRAPER_CT0"); ct0 != "" {
		c.Twitter.CT0 = ct0
	}

	if uri := os.Getenv("TWEETSCRAPER_MONGO_URI"); uri != "" {
		c.Output.MongoURI = uri
	}

	if logLevel := os.Getenv("TWEETSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
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
	locations := []string{
		".tweetscraper.yaml",
		".tweetscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tweetscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tweetscraper", "config.yml"),
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

	if strings.TrimSpace(c.Input.File) == "" {
		errs = append(errs, errors.New("input file is required"))
	}
	if len(c.Input.PostTypes) == 0 {
		errs = append(errs, errors.New("at least one post type is required"))
	}

	switch strings.ToLower(c.Output.Driver) {
	case "csv":
		if c.Output.File == "" {
			errs = append(errs, errors.New("output file is required"))
		}
	case "mongo":
		if c.Output.MongoURI == "" {
			errs = append(errs, errors.New("mongo uri is required for the mongo driver"))
		}
		if c.Output.MongoDatabase == "" || c.Output.MongoCollection == "" {
			errs = append(errs, errors.New("mongo database and collection are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid output driver %q", c.Output.Driver))
	}

	if c.Batch.Size <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.Batch.FlushInterval <= 0 {
		errs = append(errs, errors.New("flush interval must be positive"))
	}

	if c.Media.Directory == "" {
		errs = append(errs, errors.New("media directory is required"))
	}
	if c.Media.Backoff < 0 {
		errs = append(errs, errors.New("media backoff cannot be negative"))
	}
	if c.Media.MaxPerMinute < 0 {
		errs = append(errs, errors.New("media max per minute cannot be negative"))
	}

	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.SuspendedURL == "" {
		errs = append(errs, errors.New("suspended url is required"))
	}
	if c.Fetch.MaxRedirects < 1 {
		errs = append(errs, errors.New("max redirects must be at least 1"))
	}
	if c.Fetch.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}

	if c.Reports.SuspendedFile == "" || c.Reports.FailedFile == "" {
		errs = append(errs, errors.New("report files are required"))
	}

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

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if input, ok := flags["input"].(string); ok && input != "" {
		c.Input.File = input
	}
	if types, ok := flags["post-types"].([]string); ok && len(types) > 0 {
		c.Input.PostTypes = types
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if driver, ok := flags["driver"].(string); ok && driver != "" {
		c.Output.Driver = driver
	}
	if size, ok := flags["batch-size"].(int); ok && size > 0 {
		c.Batch.Size = size
	}
	if interval, ok := flags["flush-interval"].(int); ok && interval > 0 {
		c.Batch.FlushInterval = interval
	}
	if dir, ok := flags["media-dir"].(string); ok && dir != "" {
		c.Media.Directory = dir
	}
	if backoff, ok := flags["backoff"].(time.Duration); ok && backoff >= 0 {
		c.Media.Backoff = backoff
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Fetch.Timeout = timeout
	}
	if attempts, ok := flags["retry-attempts"].(int); ok && attempts > 0 {
		c.Fetch.RetryAttempts = attempts
	}
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Twitter.Account = account
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Resolve merges all configuration sources without validating the result.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tweetscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)
	return config, nil
}

// Load resolves the configuration and validates it
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tweetscraper/pkg/config"
	"tweetscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Tweet Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWEETSCRAPER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.tweetscraper.yaml' in the current directory
unless a different path is given with --config.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the configuration resolved from every source. Session cookies are
masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# Tweet Scraper Configuration File
#
# Every option can also be set with an environment variable prefixed
# with TWEETSCRAPER_, for example TWEETSCRAPER_INPUT or TWEETSCRAPER_CT0.

input:
  # CSV with post_type and post_link columns (required)
  file: "tweets.csv"
  # Post types to scrape: original, retweet, reply, quote
  post_types: ["original"]

output:
  # csv or mongo
  driver: "csv"
  # Output table, also read to resume an interrupted run
  file: "output.csv"
  # Used by the mongo driver
  mongo_uri: ""
  mongo_database: "tweetscraper"
  mongo_collection: "rows"

batch:
  # Tweets fetched concurrently
  size: 20
  # Batches between checkpoint flushes
  flush_interval: 10

media:
  directory: "./dumps"
  # Pause before each image download
  backoff: 100ms
  # Optional cap on downloads per minute, 0 disables it
  max_per_minute: 0

fetch:
  timeout: 30s
  suspended_url: "https://twitter.com/account/suspended"
  max_redirects: 10
  # Attempts per image download
  retry_attempts: 1

twitter:
  # Stored account to use (see 'tweetscraper auth login')
  account: ""

reports:
  suspended_file: "suspended_accounts.csv"
  failed_file: "failed_resources.csv"

logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file, logs go to stderr when empty
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".tweetscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Set input.file to your tweet list")
	fmt.Fprintln(ui.Output, "2. Run 'tweetscraper config validate' to check the configuration")
	fmt.Fprintln(ui.Output, "3. Start with 'tweetscraper scrape'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	display.Twitter.AuthToken = mask(display.Twitter.AuthToken)
	display.Twitter.CT0 = mask(display.Twitter.CT0)
	display.Output.MongoURI = mask(display.Output.MongoURI)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var warnings []string
	if _, err := os.Stat(cfg.Input.File); err != nil {
		warnings = append(warnings, "input file not readable: "+err.Error())
	}
	if cfg.Twitter.Account == "" && cfg.Twitter.AuthToken == "" {
		warnings = append(warnings, "no session configured, pages are fetched anonymously")
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Output, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Output)
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintSummary(nil, ui.Summary{
		Title: "Configuration summary:",
		Lines: [][2]string{
			{"Input", cfg.Input.File},
			{"Output", outputName(cfg)},
			{"Batch size", strconv.Itoa(cfg.Batch.Size)},
			{"Flush interval", strconv.Itoa(cfg.Batch.FlushInterval)},
			{"Media directory", cfg.Media.Directory},
			{"Log level", cfg.Logging.Level},
		},
	})
	return nil
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

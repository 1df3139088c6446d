package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"tweetscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tweetscraper",
	Short: "Download the images attached to a list of tweets",
	Long: `Tweet Scraper reads a CSV of tweet links, fetches each tweet page in
concurrent batches and downloads the images it finds.

Features:
  - Resumable runs: the output table doubles as the checkpoint
  - Batch-concurrent page fetching
  - Suspended accounts and failed pages recorded in side logs
  - Retweet link resolution
  - CSV or MongoDB output
  - Secure cookie storage using the system keychain`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.Output = io.Discard
			return
		}
		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintBanner()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.tweetscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notify", false, "send a desktop notification when a run ends")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`Tweet Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

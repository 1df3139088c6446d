package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"tweetscraper/pkg/config"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/ui"
	"tweetscraper/pkg/verify"
)

var (
	verifyOutput   string
	verifyMediaDir string
	verifyReport   string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every image in a scrape output is stored and readable",
	Long: `Read a scrape output CSV and check that each image_name exists in the
media directory and decodes as an image. Rows that fail are listed with the
reason, either on stdout or in the file given with --report.`,
	Example: `  tweetscraper verify --output output.csv --media-dir ./dumps
  tweetscraper verify -o output.csv --report missing.csv`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "", "scrape output CSV to check (default output.csv)")
	verifyCmd.Flags().StringVar(&verifyMediaDir, "media-dir", "", "directory images are stored in (default ./dumps)")
	verifyCmd.Flags().StringVar(&verifyReport, "report", "", "write missing rows to this CSV instead of stdout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if verifyOutput != "" {
		flags["output"] = verifyOutput
	}
	if verifyMediaDir != "" {
		flags["media-dir"] = verifyMediaDir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Resolve(configFile, flags)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ui.PrintInfo("Output", cfg.Output.File)
	ui.PrintInfo("Media directory", cfg.Media.Directory)

	checker := verify.NewChecker(cfg.Media.Directory, logger.WithField("component", "verify"))
	result, err := checker.CheckFile(cmd.Context(), cfg.Output.File)
	if err != nil {
		return err
	}

	ui.PrintSummary(nil, ui.Summary{
		Title: "[VERIFICATION]",
		Lines: [][2]string{
			{"Images checked", strconv.Itoa(result.Checked)},
			{"Missing or unreadable", strconv.Itoa(len(result.Missing))},
		},
	})

	if len(result.Missing) == 0 {
		ui.PrintSuccess("All images present")
		return nil
	}

	out := os.Stdout
	if verifyReport != "" {
		f, err := os.Create(verifyReport)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := verify.WriteReport(out, result.Missing); err != nil {
		return err
	}
	if verifyReport != "" {
		ui.PrintWarning("Missing images listed in", verifyReport)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tweetscraper/pkg/auth"
	"tweetscraper/pkg/checkpoint"
	"tweetscraper/pkg/checkpoint/mongostore"
	"tweetscraper/pkg/config"
	"tweetscraper/pkg/fetcher"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/media"
	"tweetscraper/pkg/parser"
	"tweetscraper/pkg/pipeline"
	"tweetscraper/pkg/ratelimit"
	"tweetscraper/pkg/report"
	"tweetscraper/pkg/retry"
	"tweetscraper/pkg/storage"
	"tweetscraper/pkg/ui"
	"tweetscraper/pkg/ui/tui"
	"tweetscraper/pkg/workload"
)

var (
	// Run flags shared by scrape and retweets
	inputFile     string
	outputFile    string
	driver        string
	batchSize     int
	flushInterval int
	fetchTimeout  time.Duration
	accountName   string
	useTUI        bool

	// Scrape-only flags
	postTypes     []string
	mediaDir      string
	backoff       time.Duration
	retryAttempts int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download the images of the tweets in an input CSV",
	Long: `Download the images attached to every tweet listed in the input CSV.

The input needs post_type and post_link columns. Only tweets whose post_type
is selected with --post-types are processed. One output row is written per
image, and images are stored once under the media directory.

Runs are resumable: when the output already exists, processing restarts
after the highest tweet_num it contains.`,
	Example: `  # Scrape original tweets listed in tweets.csv
  tweetscraper scrape --input tweets.csv

  # Include replies and quotes, larger batches
  tweetscraper scrape -i tweets.csv --post-types original,reply,quote --batch-size 50

  # Write rows to MongoDB instead of a CSV file
  TWEETSCRAPER_MONGO_URI=mongodb://localhost:27017 tweetscraper scrape -i tweets.csv --driver mongo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd, false)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	addRunFlags(scrapeCmd)
	scrapeCmd.Flags().StringSliceVar(&postTypes, "post-types", nil, "post types to scrape (original, retweet, reply, quote)")
	scrapeCmd.Flags().StringVar(&mediaDir, "media-dir", "", "directory images are stored in (default ./dumps)")
	scrapeCmd.Flags().DurationVar(&backoff, "backoff", 0, "pause before each image download (default 100ms)")
	scrapeCmd.Flags().IntVar(&retryAttempts, "retry-attempts", 0, "attempts per image download (default 1)")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "input CSV of tweets")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV, also used to resume (default output.csv)")
	cmd.Flags().StringVar(&driver, "driver", "", "output driver: csv or mongo")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "tweets fetched concurrently per batch (default 20)")
	cmd.Flags().IntVar(&flushInterval, "flush-interval", 0, "batches between checkpoint flushes (default 10)")
	cmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "per-request timeout (default 30s)")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "use the cookies of a stored account")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show a full-screen progress view (terminal only)")
}

// runFlags builds the flags map from the flags set on the command line
func runFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags().Changed

	if set("input") {
		flags["input"] = inputFile
	}
	if set("post-types") {
		flags["post-types"] = postTypes
	}
	if set("output") {
		flags["output"] = outputFile
	}
	if set("driver") {
		flags["driver"] = driver
	}
	if set("batch-size") {
		flags["batch-size"] = batchSize
	}
	if set("flush-interval") {
		flags["flush-interval"] = flushInterval
	}
	if set("media-dir") {
		flags["media-dir"] = mediaDir
	}
	if set("backoff") {
		flags["backoff"] = backoff
	}
	if set("timeout") {
		flags["timeout"] = fetchTimeout
	}
	if set("retry-attempts") {
		flags["retry-attempts"] = retryAttempts
	}
	if set("account") {
		flags["account"] = accountName
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runScrape(cmd *cobra.Command, retweets bool) error {
	cfg, err := config.Load(configFile, runFlags(cmd))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the screen takes over the terminal, so logs go to its log panel
	var screen *tui.TUI
	if useTUI && !quiet && term.IsTerminal(int(os.Stdout.Fd())) {
		screen = tui.New("TWEET SCRAPER", stop)
		err = logger.InitializeWithOutput(&cfg.Logging, screen)
	} else {
		err = logger.Initialize(&cfg.Logging)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Tweet Scraper starting")

	src, err := workload.Load(cfg.Input.File)
	if err != nil {
		return err
	}

	kinds := workload.Kinds(cfg.Input.PostTypes)
	if retweets {
		kinds = []workload.Kind{workload.KindRetweet}
	}
	items := src.Filter(kinds...)
	ui.PrintInfo("Input", fmt.Sprintf("%s (%d of %d tweets selected)", cfg.Input.File, len(items), src.Len()))

	if err := applyAccount(cfg, log); err != nil {
		return err
	}

	header := checkpoint.MediaHeader
	if retweets {
		header = checkpoint.RetweetHeader
	}
	store, err := openStore(ctx, cfg, header, log)
	if err != nil {
		return err
	}

	reporter := report.NewFileReporter(cfg.Reports.SuspendedFile, cfg.Reports.FailedFile)
	client := fetcher.NewClient(cfg.Fetch, cfg.Twitter, reporter, log.WithField("component", "fetcher"))
	var progress pipeline.Progress = ui.NewBatchProgress(nil)
	if screen != nil {
		progress = screen
	}

	p := &pipeline.Pipeline{
		Fetcher:  client,
		Resolver: client,
		Store:    store,
		Progress: progress,
		Logger:   log.WithField("component", "pipeline"),
		Options: pipeline.Options{
			BatchSize:     cfg.Batch.Size,
			FlushInterval: cfg.Batch.FlushInterval,
		},
	}

	notifier := ui.NewNotifier(nil, notifications)

	run := func() (pipeline.Stats, error) { return p.RunRetweets(ctx, items) }
	var downloader *media.Downloader
	if retweets {
		ui.PrintHighlight("[RESOLVING RETWEETS]")
	} else {
		downloader, err = newDownloader(cfg, client, log)
		if err != nil {
			return err
		}
		if screen != nil {
			downloader.Observe(screen)
		}
		p.Extract = parser.Extract
		p.Downloader = downloader
		run = func() (pipeline.Stats, error) { return p.RunMedia(ctx, items) }

		ui.PrintHighlight("[SCRAPING TWEET MEDIA]")
	}

	var stats pipeline.Stats
	if screen != nil {
		stats, err = runWithScreen(screen, run)
	} else {
		stats, err = run()
	}

	printRunSummary(cfg, stats, downloader)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Run interrupted, progress saved", outputName(cfg))
			return nil
		}
		log.WithError(err).Error("Run failed")
		notifier.SendError("Tweet Scraper", "run failed: "+err.Error())
		return err
	}

	notifier.SendSuccess("Tweet Scraper", fmt.Sprintf("%d rows written to %s", stats.Rows, outputName(cfg)))
	return nil
}

// runWithScreen runs the pipeline in the background while the screen owns
// the terminal, and waits for both to end
func runWithScreen(screen *tui.TUI, run func() (pipeline.Stats, error)) (pipeline.Stats, error) {
	out := ui.Output
	ui.Output = io.Discard

	var stats pipeline.Stats
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, runErr = run()
		screen.Finish(runErr)
	}()

	screenErr := screen.Run()
	<-done

	ui.Output = out
	if screenErr != nil {
		ui.PrintWarning("Progress view failed", screenErr.Error())
	}
	return stats, runErr
}

// applyAccount copies stored cookies into the session settings. Cookies
// given through the config file or environment take precedence over the
// default account; a named account must exist.
func applyAccount(cfg *config.Config, log logger.Logger) error {
	if cfg.Twitter.Account == "" && cfg.Twitter.AuthToken != "" {
		log.Info("Using session cookies from configuration")
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var account *auth.Account
	if cfg.Twitter.Account != "" {
		account, err = manager.Retrieve(cfg.Twitter.Account)
		if err != nil {
			ui.PrintInfo("Available accounts", "Use 'tweetscraper auth list' to see stored accounts")
			return fmt.Errorf("account %q not found: %w", cfg.Twitter.Account, err)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			log.Debug("No stored session, fetching anonymously")
			return nil
		}
	}

	cfg.Twitter.AuthToken = account.AuthToken
	cfg.Twitter.CT0 = account.CT0
	if account.UserAgent != "" {
		cfg.Fetch.UserAgent = account.UserAgent
	}
	log.WithField("account", account.Username).Info("Using stored session")
	ui.PrintInfo("Using account", account.Username)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, header checkpoint.Row, log logger.Logger) (checkpoint.Store, error) {
	storeLog := log.WithField("component", "checkpoint")

	switch strings.ToLower(cfg.Output.Driver) {
	case "mongo":
		store, err := mongostore.Connect(ctx, cfg.Output.MongoURI, cfg.Output.MongoDatabase, cfg.Output.MongoCollection, header, storeLog)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return store, nil
	default:
		return checkpoint.NewCSVStore(cfg.Output.File, storeLog), nil
	}
}

func newDownloader(cfg *config.Config, client *fetcher.Client, log logger.Logger) (*media.Downloader, error) {
	files, err := storage.NewManager(cfg.Media.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare media directory: %w", err)
	}

	limiters := []ratelimit.Limiter{ratelimit.NewInterval(cfg.Media.Backoff)}
	if cfg.Media.MaxPerMinute > 0 {
		limiters = append(limiters, ratelimit.NewTokenBucket(cfg.Media.MaxPerMinute, time.Minute))
	}

	mediaLog := log.WithField("component", "media")
	retrier := retry.NewRetrier(&retry.Config{
		MaxAttempts: cfg.Fetch.RetryAttempts,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Logger:      mediaLog,
	})

	logger.LogComponentStart(mediaLog, "media downloader", map[string]interface{}{
		"directory":      files.Dir(),
		"existing":       files.Count(),
		"backoff":        cfg.Media.Backoff,
		"max_per_minute": cfg.Media.MaxPerMinute,
		"attempts":       retrier.MaxAttempts(),
	})

	return media.NewDownloader(client, files, ratelimit.Chain(limiters...), retrier, mediaLog), nil
}

func outputName(cfg *config.Config) string {
	if strings.ToLower(cfg.Output.Driver) == "mongo" {
		return cfg.Output.MongoDatabase + "." + cfg.Output.MongoCollection
	}
	return cfg.Output.File
}

func printRunSummary(cfg *config.Config, stats pipeline.Stats, downloader *media.Downloader) {
	start := "beginning"
	if stats.Resumed {
		start = "after tweet " + strconv.Itoa(stats.Offset)
	}

	lines := [][2]string{
		{"Output", outputName(cfg)},
		{"Started", start},
		{"Batches", strconv.Itoa(stats.Batches)},
		{"Tweets", strconv.Itoa(stats.Items)},
		{"Rows written", strconv.Itoa(stats.Rows)},
		{"Suspended", strconv.Itoa(stats.Suspended)},
		{"Failed", strconv.Itoa(stats.Failed + stats.TransportErrors)},
	}
	if downloader != nil {
		ms := downloader.Stats()
		lines = append(lines,
			[2]string{"Images downloaded", strconv.Itoa(ms.Downloaded)},
			[2]string{"Images already stored", strconv.Itoa(ms.Existing)},
			[2]string{"Image failures", strconv.Itoa(ms.Failed)},
		)
	}

	ui.PrintSummary(nil, ui.Summary{
		Title:    "[RUN SUMMARY]",
		Lines:    lines,
		Duration: stats.Duration,
	})
}

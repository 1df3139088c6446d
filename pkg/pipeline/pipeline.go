package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tweetscraper/pkg/batch"
	"tweetscraper/pkg/checkpoint"
	"tweetscraper/pkg/fetcher"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/parser"
	"tweetscraper/pkg/twitter"
	"tweetscraper/pkg/workload"
)

// PageFetcher fetches a batch of tweet pages
type PageFetcher interface {
	FetchBatch(ctx context.Context, items []workload.WorkItem) []fetcher.Outcome
}

// Resolver resolves a batch of tweet links without reading bodies
type Resolver interface {
	ResolveBatch(ctx context.Context, items []workload.WorkItem) []fetcher.Outcome
}

// MediaDownloader stores image references and returns the associated names
type MediaDownloader interface {
	Download(ctx context.Context, refs []parser.MediaReference) []string
}

// Extractor finds image references in a page body
type Extractor func(body []byte) ([]parser.MediaReference, error)

// Progress is told when each batch starts
type Progress interface {
	BatchStarted(start, end, total int)
}

// Options holds the run settings
type Options struct {
	BatchSize     int
	FlushInterval int
}

// Pipeline runs the batch loop. Fetcher, Extract and Downloader are needed
// for media runs; Resolver for retweet runs.
type Pipeline struct {
	Fetcher    PageFetcher
	Resolver   Resolver
	Extract    Extractor
	Downloader MediaDownloader
	Store      checkpoint.Store
	Progress   Progress
	Logger     logger.Logger
	Options    Options
}

// Stats summarizes a run
type Stats struct {
	Offset          int
	Resumed         bool
	Batches         int
	Items           int
	Rows            int
	Succeeded       int
	Suspended       int
	Failed          int
	TransportErrors int
	Empty           int
	ParseErrors     int
	Media           int
	Duration        time.Duration
}

func (s *Stats) record(o fetcher.Outcome) {
	s.Items++
	switch o.Kind {
	case fetcher.Success:
		s.Succeeded++
	case fetcher.Redirected:
		s.Suspended++
	case fetcher.HTTPFailure:
		s.Failed++
	case fetcher.TransportError:
		s.TransportErrors++
	case fetcher.Empty:
		s.Empty++
	}
}

type batchFunc func(ctx context.Context, b batch.Batch, cp *checkpoint.Checkpointer, stats *Stats)

// RunMedia scrapes the images of items. One row is written per
// associated image, numbered by the tweet's index in items.
func (p *Pipeline) RunMedia(ctx context.Context, items []workload.WorkItem) (Stats, error) {
	if p.Fetcher == nil || p.Extract == nil || p.Downloader == nil {
		return Stats{}, fmt.Errorf("media pipeline needs a fetcher, an extractor and a downloader")
	}
	return p.run(ctx, items, checkpoint.MediaHeader, p.mediaBatch)
}

// RunRetweets resolves where each retweet link points. One row is written
// per resolved link, numbered by the tweet's index in items.
func (p *Pipeline) RunRetweets(ctx context.Context, items []workload.WorkItem) (Stats, error) {
	if p.Resolver == nil {
		return Stats{}, fmt.Errorf("retweet pipeline needs a resolver")
	}
	return p.run(ctx, items, checkpoint.RetweetHeader, p.retweetBatch)
}

func (p *Pipeline) run(ctx context.Context, items []workload.WorkItem, header checkpoint.Row, process batchFunc) (Stats, error) {
	if p.Store == nil {
		return Stats{}, fmt.Errorf("pipeline needs a store")
	}
	log := p.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	start := time.Now()
	var stats Stats

	offset, resumed, err := p.Store.Offset(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read resume offset: %w", err)
	}
	stats.Offset = offset
	stats.Resumed = resumed

	cursor := batch.New(items, offset, p.Options.BatchSize)
	cp := checkpoint.New(p.Store, header, resumed, p.Options.FlushInterval, log)

	log.InfoWithFields("Run started", map[string]interface{}{
		"items":          cursor.Total(),
		"remaining":      cursor.Remaining(),
		"resumed":        resumed,
		"offset":         offset,
		"batch_size":     cursor.Size(),
		"flush_interval": p.Options.FlushInterval,
	})

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			log.Warn("Run cancelled, flushing buffered rows")
			runErr = err
			break
		}

		b, ok := cursor.Next()
		if !ok {
			break
		}

		end := b.Start + cursor.Size()
		logger.LogBatchProgress(log, b.Start, end, cursor.Total())
		if p.Progress != nil {
			p.Progress.BatchStarted(b.Start, end, cursor.Total())
		}

		// a started batch always completes so that no partly processed
		// tweet ends up below the resume offset
		batchCtx := context.WithoutCancel(ctx)

		before := cp.Pending()
		process(batchCtx, b, cp, &stats)
		stats.Rows += cp.Pending() - before
		stats.Batches++

		if err := cp.BatchDone(batchCtx); err != nil {
			runErr = err
			break
		}
	}

	// the final flush must happen even when ctx is already cancelled
	if err := cp.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}

	stats.Duration = time.Since(start)
	log.InfoWithFields("Run finished", map[string]interface{}{
		"batches":   stats.Batches,
		"rows":      stats.Rows,
		"succeeded": stats.Succeeded,
		"suspended": stats.Suspended,
		"failed":    stats.Failed,
		"duration":  stats.Duration,
	})

	return stats, runErr
}

func (p *Pipeline) mediaBatch(ctx context.Context, b batch.Batch, cp *checkpoint.Checkpointer, stats *Stats) {
	outcomes := p.Fetcher.FetchBatch(ctx, b.Items)

	for _, o := range outcomes {
		stats.record(o)
		if !o.OK() {
			continue
		}

		refs, err := p.Extract(o.Body)
		if err != nil {
			stats.ParseErrors++
			p.log().WithError(err).WarnWithFields("Failed to parse tweet page", map[string]interface{}{
				"link": o.Item.Link,
			})
			continue
		}
		if len(refs) == 0 {
			continue
		}

		p.log().DebugWithFields("Images found", map[string]interface{}{
			"link":   o.Item.Link,
			"images": len(refs),
		})

		names := p.Downloader.Download(ctx, refs)
		for _, name := range names {
			cp.Add(mediaRow(o.Item, name))
		}
		stats.Media += len(names)
	}
}

func (p *Pipeline) retweetBatch(ctx context.Context, b batch.Batch, cp *checkpoint.Checkpointer, stats *Stats) {
	outcomes := p.Resolver.ResolveBatch(ctx, b.Items)

	for _, o := range outcomes {
		stats.record(o)
		if o.Kind != fetcher.Success && o.Kind != fetcher.Redirected {
			continue
		}

		row := retweetRow(o)
		if row[2] == "" || row[3] == "" {
			p.log().WarnWithFields("No username in retweet link", map[string]interface{}{
				"link":     o.Item.Link,
				"resolved": o.ResolvedURL,
			})
		}
		cp.Add(row)
	}
}

func (p *Pipeline) log() logger.Logger {
	if p.Logger == nil {
		return logger.GetLogger()
	}
	return p.Logger
}

func mediaRow(item workload.WorkItem, name string) checkpoint.Row {
	return checkpoint.Row{
		strconv.Itoa(item.Index),
		strings.TrimSpace(string(item.Kind)),
		strings.TrimSpace(item.Link),
		strings.TrimSpace(name),
	}
}

func retweetRow(o fetcher.Outcome) checkpoint.Row {
	return checkpoint.Row{
		strconv.Itoa(o.Item.Index),
		string(workload.KindRetweet),
		twitter.Username(o.Item.Link),
		twitter.Username(o.ResolvedURL),
		o.Item.Link,
		o.ResolvedURL,
	}
}

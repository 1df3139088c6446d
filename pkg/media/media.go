// Package media downloads tweet images into the local media directory.
//
// Every image is stored under its canonical name, derived from its URL, and
// each name is fetched at most once per run. Downloads are sequential and
// each one waits on the limiter first.
package media

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/parser"
	"tweetscraper/pkg/ratelimit"
	"tweetscraper/pkg/retry"
)

var nameReplacer = strings.NewReplacer("/", "_", ":", "_")

// CanonicalName maps an image URL to its local file name: path separators
// and colons become underscores and the jpg_large suffix becomes jpg.
func CanonicalName(url string) string {
	return strings.ReplaceAll(nameReplacer.Replace(url), "jpg_large", "jpg")
}

// Getter fetches the bytes of a media URL
type Getter interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// Storage persists media files by name
type Storage interface {
	Exists(name string) bool
	Save(r io.Reader, name string) error
}

// Result is how a media reference was resolved
type Result int

const (
	Downloaded Result = iota
	Existing
	Duplicate
	Failed
)

func (r Result) String() string {
	switch r {
	case Downloaded:
		return "downloaded"
	case Existing:
		return "existing"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is told about every reference the downloader resolves.
// DownloadStarted is only called for names that are fetched.
type Observer interface {
	DownloadStarted(name string)
	MediaResolved(name string, result Result)
}

// Stats counts what a downloader has done
type Stats struct {
	Downloaded int
	Existing   int
	Duplicates int
	Failed     int
}

// Downloader fetches media references and remembers every name it has
// associated during the run
type Downloader struct {
	getter  Getter
	storage Storage
	limiter ratelimit.Limiter
	retrier *retry.Retrier
	logger  logger.Logger

	mu       sync.Mutex
	seen     map[string]struct{}
	stats    Stats
	observer Observer
}

// NewDownloader creates a downloader. A nil limiter means no delay and a
// nil retrier means a single attempt.
func NewDownloader(getter Getter, storage Storage, limiter ratelimit.Limiter, retrier *retry.Retrier, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewInterval(0)
	}
	if retrier == nil {
		retrier = retry.NewRetrier(&retry.Config{MaxAttempts: 1, Logger: log})
	}
	return &Downloader{
		getter:  getter,
		storage: storage,
		limiter: limiter,
		retrier: retrier,
		logger:  log,
		seen:    make(map[string]struct{}),
	}
}

// Download stores each reference and returns the names associated with
// this call, in reference order. Names already seen in the run are
// skipped; names already on disk are associated without downloading.
// A failed download is logged and omitted, and its name stays unseen.
func (d *Downloader) Download(ctx context.Context, refs []parser.MediaReference) []string {
	var names []string

	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}

		name := CanonicalName(ref.SourceURL)
		if name == "" {
			continue
		}

		if d.Seen(name) {
			d.count(func(s *Stats) { s.Duplicates++ })
			d.resolved(name, Duplicate)
			continue
		}

		if d.storage.Exists(name) {
			d.markSeen(name)
			d.count(func(s *Stats) { s.Existing++ })
			d.resolved(name, Existing)
			d.logger.DebugWithFields("media already stored", map[string]interface{}{
				"name": name,
			})
			names = append(names, name)
			continue
		}

		if o := d.currentObserver(); o != nil {
			o.DownloadStarted(name)
		}
		if err := d.fetch(ctx, ref.SourceURL, name); err != nil {
			d.count(func(s *Stats) { s.Failed++ })
			d.resolved(name, Failed)
			d.logger.WithError(err).ErrorWithFields("media download failed", map[string]interface{}{
				"url":  ref.SourceURL,
				"name": name,
			})
			continue
		}

		d.markSeen(name)
		d.count(func(s *Stats) { s.Downloaded++ })
		d.resolved(name, Downloaded)
		names = append(names, name)
	}

	return names
}

func (d *Downloader) fetch(ctx context.Context, url, name string) error {
	d.limiter.Wait()

	start := time.Now()
	err := d.retrier.Do(ctx, func() error {
		body, err := d.getter.Get(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()

		if err := d.storage.Save(body, name); err != nil {
			return errs.Wrap(errs.ErrorTypeDownload, err, "failed to store media")
		}
		return nil
	})
	if err != nil {
		if errs.TypeOf(err) == errs.ErrorTypeUnknown {
			return errs.Wrap(errs.ErrorTypeDownload, err, "failed to download media")
		}
		return err
	}

	d.logger.InfoWithFields("media downloaded", map[string]interface{}{
		"name":     name,
		"duration": time.Since(start),
	})
	return nil
}

// Observe registers o for download events. A nil o stops reporting.
func (d *Downloader) Observe(o Observer) {
	d.mu.Lock()
	d.observer = o
	d.mu.Unlock()
}

func (d *Downloader) currentObserver() Observer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.observer
}

func (d *Downloader) resolved(name string, result Result) {
	if o := d.currentObserver(); o != nil {
		o.MediaResolved(name, result)
	}
}

// Seen reports whether name was associated earlier in the run
func (d *Downloader) Seen(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[name]
	return ok
}

func (d *Downloader) markSeen(name string) {
	d.mu.Lock()
	d.seen[name] = struct{}{}
	d.mu.Unlock()
}

func (d *Downloader) count(fn func(*Stats)) {
	d.mu.Lock()
	fn(&d.stats)
	d.mu.Unlock()
}

// Stats returns a snapshot of the download counters
func (d *Downloader) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

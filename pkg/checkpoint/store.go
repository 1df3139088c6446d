package checkpoint

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
)

// Row is one output record
type Row []string

// ColumnTweetNum holds the row's position in the filtered input
const ColumnTweetNum = "tweet_num"

var (
	// MediaHeader is the header of the media scrape output
	MediaHeader = Row{"tweet_num", "tweet_type", "post_link", "image_name"}

	// RetweetHeader is the header of the retweet association output
	RetweetHeader = Row{"tweet_num", "tweet_type", "retweeters_username", "orig_username", "post_link", "retweeted_from"}
)

// Store persists rows
type Store interface {
	// Offset returns the highest tweet_num written so far, or -1 when no
	// row has been written. exists reports whether earlier output is
	// present, in which case the header must not be written again.
	Offset(ctx context.Context) (offset int, exists bool, err error)
	// Append durably writes rows after the existing output
	Append(ctx context.Context, rows []Row) error
	Close() error
}

// CSVStore appends rows to a CSV file
type CSVStore struct {
	path   string
	logger logger.Logger
}

// NewCSVStore creates a store for the file at path
func NewCSVStore(path string, log logger.Logger) *CSVStore {
	if log == nil {
		log = logger.GetLogger()
	}
	return &CSVStore{path: path, logger: log}
}

// Path returns the output file path
func (s *CSVStore) Path() string {
	return s.path
}

// Offset scans the tweet_num column of the existing file. A missing or
// empty file means a fresh run.
func (s *CSVStore) Offset(ctx context.Context) (int, bool, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, errs.Wrap(errs.ErrorTypeStore, err, "failed to open output")
	}
	defer f.Close()

	return scanOffset(ctx, f, s.logger)
}

func scanOffset(ctx context.Context, r io.Reader, log logger.Logger) (int, bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, errs.Wrap(errs.ErrorTypeStore, err, "failed to read output header")
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == ColumnTweetNum {
			col = i
			break
		}
	}
	if col < 0 {
		return -1, false, errs.New(errs.ErrorTypeStore, fmt.Sprintf("output has no %s column", ColumnTweetNum))
	}

	offset := -1
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return -1, false, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return -1, false, errs.Wrap(errs.ErrorTypeStore, err, "failed to read output")
		}
		if col >= len(record) {
			skipped++
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(record[col]))
		if err != nil {
			skipped++
			continue
		}
		offset = max(offset, n)
	}

	if skipped > 0 {
		log.WarnWithFields("ignored output rows without a tweet number", map[string]interface{}{
			"rows": skipped,
		})
	}

	return offset, true, nil
}

// Append writes rows to the end of the file and syncs it to disk
func (s *CSVStore) Append(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Wrap(errs.ErrorTypeStore, err, "failed to create output directory")
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStore, err, "failed to open output")
	}

	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return errs.Wrap(errs.ErrorTypeStore, err, "failed to write output")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrorTypeStore, err, "failed to write output")
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrorTypeStore, err, "failed to sync output")
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrorTypeStore, err, "failed to close output")
	}
	return nil
}

// Close is a no-op; every Append opens and closes the file
func (s *CSVStore) Close() error {
	return nil
}

// Package report records tweets that could not be scraped in append-only
// side logs.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Reporter receives per-tweet failures from the fetcher. Implementations
// must be safe for concurrent use.
type Reporter interface {
	// Suspended records a tweet whose account page was suspended
	Suspended(link string) error
	// Failed records a tweet that answered with a non-success status
	Failed(status int, link string) error
}

// FileReporter appends to two CSV files, creating each on first write
type FileReporter struct {
	suspendedPath string
	failedPath    string
	mu            sync.Mutex
}

// NewFileReporter creates a reporter writing to the given paths
func NewFileReporter(suspendedPath, failedPath string) *FileReporter {
	return &FileReporter{suspendedPath: suspendedPath, failedPath: failedPath}
}

// Suspended appends link to the suspended log
func (r *FileReporter) Suspended(link string) error {
	return r.append(r.suspendedPath, []string{link})
}

// Failed appends status,link to the failed log
func (r *FileReporter) Failed(status int, link string) error {
	return r.append(r.failedPath, []string{strconv.Itoa(status), link})
}

func (r *FileReporter) append(path string, record []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// Failure is one entry of the failed log
type Failure struct {
	Status int
	Link   string
}

// MemoryReporter keeps reports in memory
type MemoryReporter struct {
	mu        sync.Mutex
	suspended []string
	failed    []Failure
}

// NewMemoryReporter creates an empty in-memory reporter
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (r *MemoryReporter) Suspended(link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = append(r.suspended, link)
	return nil
}

func (r *MemoryReporter) Failed(status int, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, Failure{Status: status, Link: link})
	return nil
}

// SuspendedLinks returns a copy of the suspended entries
func (r *MemoryReporter) SuspendedLinks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.suspended...)
}

// Failures returns a copy of the failed entries
func (r *MemoryReporter) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Failure(nil), r.failed...)
}

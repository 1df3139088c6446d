package checkpoint

import (
	"context"
	"fmt"

	"tweetscraper/pkg/logger"
)

// Checkpointer accumulates rows and flushes them to a Store every
// interval batches. It is owned by a single goroutine.
type Checkpointer struct {
	store    Store
	interval int
	buffer   []Row
	batches  int
	written  int
	logger   logger.Logger
}

// New creates a checkpointer. A fresh run (resume false) seeds the buffer
// with header so it is the first row written.
func New(store Store, header Row, resume bool, interval int, log logger.Logger) *Checkpointer {
	if log == nil {
		log = logger.GetLogger()
	}
	if interval <= 0 {
		interval = 1
	}

	c := &Checkpointer{
		store:    store,
		interval: interval,
		logger:   log,
	}
	if !resume && len(header) > 0 {
		c.buffer = append(c.buffer, header)
	}
	return c
}

// Add buffers rows
func (c *Checkpointer) Add(rows ...Row) {
	c.buffer = append(c.buffer, rows...)
}

// BatchDone records a completed batch and flushes when the batch count
// reaches a multiple of the interval
func (c *Checkpointer) BatchDone(ctx context.Context) error {
	c.batches++
	if c.batches%c.interval != 0 {
		return nil
	}
	return c.Flush(ctx)
}

// Flush writes the buffered rows and clears the buffer. The buffer is kept
// when the write fails.
func (c *Checkpointer) Flush(ctx context.Context) error {
	if len(c.buffer) == 0 {
		return nil
	}

	if err := c.store.Append(ctx, c.buffer); err != nil {
		return fmt.Errorf("checkpoint flush failed: %w", err)
	}

	c.logger.DebugWithFields("checkpoint flushed", map[string]interface{}{
		"rows":    len(c.buffer),
		"batches": c.batches,
	})

	c.written += len(c.buffer)
	c.buffer = nil
	return nil
}

// Close flushes whatever is buffered and closes the store
func (c *Checkpointer) Close(ctx context.Context) error {
	flushErr := c.Flush(ctx)
	if err := c.store.Close(); err != nil && flushErr == nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return flushErr
}

// Pending returns the number of buffered rows
func (c *Checkpointer) Pending() int {
	return len(c.buffer)
}

// Written returns the number of rows written so far, header included
func (c *Checkpointer) Written() int {
	return c.written
}

// Batches returns the number of completed batches
func (c *Checkpointer) Batches() int {
	return c.batches
}

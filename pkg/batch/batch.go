// Package batch splits a filtered work sequence into contiguous batches.
package batch

import "tweetscraper/pkg/workload"

// Batch is the half-open index range [Start, End) of the sequence
type Batch struct {
	Start int
	End   int
	Items []workload.WorkItem
}

// Len returns the number of items in the batch
func (b Batch) Len() int {
	return b.End - b.Start
}

// Cursor yields batches in increasing order
type Cursor struct {
	items []workload.WorkItem
	size  int
	next  int
}

// New creates a cursor over items. A negative offset starts at 0; a resume
// offset O starts at O+1, the item after the last one already written.
func New(items []workload.WorkItem, offset, size int) *Cursor {
	if size <= 0 {
		size = 1
	}
	start := 0
	if offset >= 0 {
		start = offset + 1
	}
	return &Cursor{items: items, size: size, next: start}
}

// Next returns the next batch, or false once the sequence is exhausted
func (c *Cursor) Next() (Batch, bool) {
	if c.next >= len(c.items) {
		return Batch{}, false
	}

	start := c.next
	end := min(start+c.size, len(c.items))
	c.next = start + c.size

	return Batch{Start: start, End: end, Items: c.items[start:end]}, true
}

// Total returns the length of the whole sequence
func (c *Cursor) Total() int {
	return len(c.items)
}

// Size returns the configured batch size
func (c *Cursor) Size() int {
	return c.size
}

// Remaining returns how many items have not been handed out yet
func (c *Cursor) Remaining() int {
	if c.next >= len(c.items) {
		return 0
	}
	return len(c.items) - c.next
}

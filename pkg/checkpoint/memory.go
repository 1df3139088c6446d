package checkpoint

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore keeps rows in memory. Each Append call is recorded so
// callers can inspect flush boundaries.
type MemoryStore struct {
	mu      sync.Mutex
	rows    []Row
	appends [][]Row
	err     error
	closed  bool
}

// NewMemoryStore creates a store preloaded with rows, header first
func NewMemoryStore(rows ...Row) *MemoryStore {
	return &MemoryStore{rows: append([]Row(nil), rows...)}
}

// FailWith makes every later Append return err
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemoryStore) Offset(ctx context.Context) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) == 0 {
		return -1, false, nil
	}
	offset := -1
	for _, row := range s.rows[1:] {
		if len(row) == 0 {
			continue
		}
		if n, err := strconv.Atoi(row[0]); err == nil {
			offset = max(offset, n)
		}
	}
	return offset, true, nil
}

func (s *MemoryStore) Append(ctx context.Context, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	batch := make([]Row, len(rows))
	copy(batch, rows)
	s.rows = append(s.rows, batch...)
	s.appends = append(s.appends, batch)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Rows returns every stored row
func (s *MemoryStore) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}

// Appends returns the rows of each Append call in order
func (s *MemoryStore) Appends() [][]Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]Row(nil), s.appends...)
}

// Closed reports whether Close was called
func (s *MemoryStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tempSuffix = ".tmp"

// Manager handles media file storage and existence checks
type Manager struct {
	dir   string
	known map[string]bool
	mu    sync.RWMutex
}

// NewManager creates a new storage manager rooted at dir
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	manager := &Manager{
		dir:   dir,
		known: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes files already present in the directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), tempSuffix) {
			continue
		}
		m.known[entry.Name()] = true
	}

	return nil
}

// Exists reports whether a file with the given name is stored
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	known := m.known[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	// Files may appear after the initial scan
	if _, err := os.Stat(m.Path(name)); err == nil {
		m.mu.Lock()
		m.known[name] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes the reader's content under name
func (m *Manager) Save(r io.Reader, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid media name %q", name)
	}

	filename := m.Path(name)
	tempFile := filename + tempSuffix

	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.known[name] = true
	m.mu.Unlock()

	return nil
}

// Path returns the on-disk path for name
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, name)
}

// Dir returns the media directory
func (m *Manager) Dir() string {
	return m.dir
}

// Count returns the number of known media files
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.known)
}

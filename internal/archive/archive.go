// Package archive exports the notification log to a JSON file and reads
// such exports back. The live log is never reloaded from an archive.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tuanbt/toastlog/internal/notify"
	"github.com/tuanbt/toastlog/internal/toast"
)

// File is the on-disk layout of an archive.
type File struct {
	ExportedAt time.Time       `json:"exported_at"`
	Records    []notify.Record `json:"records"`
}

// Manager handles saving and loading an archive file.
type Manager struct {
	filePath string
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager creates a new archive manager for the given file path.
func NewManager(filePath string) *Manager {
	return &Manager{
		filePath: filePath,
		now:      time.Now,
	}
}

// Path returns the archive file path.
func (m *Manager) Path() string {
	return m.filePath
}

// LoadAll reads the archive. A missing file is an empty archive.
func (m *Manager) LoadAll() (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Records: []notify.Record{}}, nil
		}
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse archive file: %w", err)
	}
	if f.Records == nil {
		f.Records = []notify.Record{}
	}

	return &f, nil
}

// SaveAll writes records to the file atomically, replacing any earlier
// export.
func (m *Manager) SaveAll(records []notify.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if records == nil {
		records = []notify.Record{}
	}

	data, err := json.MarshalIndent(File{ExportedAt: m.now(), Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	dir := filepath.Dir(m.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write to temp file first, then rename (atomic)
	tmpPath := m.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, m.filePath); err != nil {
		os.Remove(tmpPath) // Clean up
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Counts returns how many records there are of each kind.
func Counts(records []notify.Record) map[toast.Kind]int {
	counts := make(map[toast.Kind]int, len(toast.Kinds))
	for _, rec := range records {
		counts[rec.Kind]++
	}
	return counts
}

// internal/store/snapshots.go
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Well-known snapshot names, one per persisted collection.
const (
	KeyImages = "images"
	KeyChats  = "chats"
	KeyUser   = "user"
)

// Snapshots is the local persistence adapter: named JSON blobs stored as
// individual files under a root directory. It never owns data; it only
// serializes and deserializes snapshots handed to it. Writes are
// last-writer-wins, which is acceptable for single-user local state.
type Snapshots struct {
	root string
	mu   sync.Mutex
}

// NewSnapshots creates an adapter rooted at the given directory.
func NewSnapshots(root string) *Snapshots {
	return &Snapshots{root: root}
}

func (s *Snapshots) path(name string) string {
	return filepath.Join(s.root, name+".json")
}

// Load reads the named snapshot into v. It fails soft: a missing or
// corrupt snapshot leaves v untouched and returns false, logging corruption
// but never failing the caller.
func (s *Snapshots) Load(name string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read snapshot failed", "name", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("discarding corrupt snapshot", "name", name, "error", err)
		return false
	}
	return true
}

// Save writes the named snapshot atomically (temp file + rename).
func (s *Snapshots) Save(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", name, err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp snapshot: %w", err)
	}
	return nil
}

// Package store provides the JSON-backed collections used by the agents.
// One file per entity kind (calendar.json, alerts.json, tickets.json, ...)
// holding a single JSON array. A missing file reads as an empty collection;
// saves overwrite the whole file. Callers are expected to load, mutate and
// save within a single handler call; there is no cross-process locking.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Store reads and writes JSON array collections under a data directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// Open creates the data directory if needed and returns a Store rooted there.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory this store is rooted at.
func (s *Store) Dir() string { return s.dir }

// Load decodes the named collection into out (a pointer to a slice).
// A missing file leaves out untouched and returns nil.
func (s *Store) Load(collection string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(collection)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read collection %q: %w", collection, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode collection %q: %w", collection, err)
	}
	return nil
}

// Save overwrites the named collection with v.
func (s *Store) Save(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", collection, err)
	}

	path := s.path(collection)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write collection %q: %w", collection, err)
	}

	s.logger.Debug("collection saved", "collection", collection, "path", path)
	return nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// GenID returns a short record identifier in the form "PREFIX-<4 hex chars>".
// Uniqueness is probabilistic (birthday-bound), which is acceptable at the
// scale these collections hold.
func GenID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:4])
}

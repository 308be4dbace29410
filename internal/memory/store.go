// Package memory persists request metadata between runs as a single JSON
// object. Each Update merges its keys over the stored record.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

// Keys written after a successful run.
const (
	KeyIndustry        = "industry"
	KeyObjectiveType   = "objective_type"
	KeyStakeholderMode = "stakeholder_mode"
	KeyConfidenceMode  = "confidence_mode"
	KeyConstraints     = "constraints"
	KeyLastRunID       = "last_run_id"
	KeyUpdatedAt       = "updated_at"
)

// ErrCorrupt is returned by Load when the file exists but is not a JSON object.
// The returned Record is empty and the next Update overwrites the file.
var ErrCorrupt = errors.New("memory file is not a JSON object")

// Record is the persisted key-value mapping. Unknown keys survive updates.
type Record map[string]any

// Store is a file-backed Record. It is safe for concurrent use within one process.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored record; a missing file is an empty record.
func (s *Store) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("read memory: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil || rec == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrCorrupt, s.path)
	}
	return rec, nil
}

// Update merges patch over the stored record (last writer wins per key),
// writes it atomically and returns the merged result.
func (s *Store) Update(patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	for k, v := range patch {
		rec[k] = v
	}
	data, err := utils.PrettyJSON(rec)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(s.path, data); err != nil {
		return nil, fmt.Errorf("write memory: %w", err)
	}
	return rec, nil
}

// Clear removes the memory file. Clearing an absent file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear memory: %w", err)
	}
	return nil
}

package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// document is the on-disk shape: {"published": ["<hex>", ...]}.
type document struct {
	Published []string `json:"published"`
}

// FileStore keeps the published keys in a small JSON file. A sidecar
// flock guards against two overlapping cron invocations rewriting the
// file over each other.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) (*FileStore, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock state file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("state file %s is locked by another instance", path)
	}
	return &FileStore{path: path, lock: lock}, nil
}

// Load reads the state document. A missing file is the first-run
// bootstrap and yields an empty set; a malformed file is fatal.
func (s *FileStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	return doc.Published, nil
}

func (s *FileStore) Save(keys []string) error {
	doc := document{Published: keys}
	if doc.Published == nil {
		doc.Published = []string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a truncated
	// document behind; a malformed state file is fatal at the next start.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.Unlock()
}

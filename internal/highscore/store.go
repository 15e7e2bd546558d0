// Package highscore persists the single best-height-ever-achieved scalar.
package highscore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type record struct {
	BestHeight float64 `json:"best_height"`
}

// Store is a file-backed best-height store. Read once at startup; written
// only when a completed game's final height beats the stored value.
type Store struct {
	mu   sync.Mutex
	path string
	best float64
}

// Open loads the stored best height. A missing file means a best of zero.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read high score %s: %w", path, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse high score %s: %w", path, err)
	}
	s.best = rec.BestHeight
	return s, nil
}

// Best returns the current best height.
func (s *Store) Best() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// Submit records a finished game's final height. It persists and returns true
// only when the height beats the stored best.
func (s *Store) Submit(height float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if height <= s.best {
		return false, nil
	}
	if err := s.write(record{BestHeight: height}); err != nil {
		return false, err
	}
	s.best = height
	return true, nil
}

// write replaces the file atomically via temp file and rename.
func (s *Store) write(rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode high score: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("temp high score file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close high score: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace high score %s: %w", s.path, err)
	}
	return nil
}

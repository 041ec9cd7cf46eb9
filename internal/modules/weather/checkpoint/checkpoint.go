// Package checkpoint persists the engine state as a single JSON document.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load decodes the checkpoint over st. Keys absent from the file keep the
// values st already holds. On any error st is left unchanged; a missing file
// wraps fs.ErrNotExist.
func (s *Store) Load(st *types.EngineState) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("checkpoint read: %w", err)
	}

	decoded := st.Clone()
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("checkpoint decode %s: %w", s.path, err)
	}
	*st = decoded
	return nil
}

// Save replaces the checkpoint. The document is written to a sibling temp
// file first, so a crash mid-write leaves the previous checkpoint intact.
func (s *Store) Save(st types.EngineState) error {
	payload, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint write tmp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint sync tmp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint close tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint rename: %w", err)
	}
	return nil
}

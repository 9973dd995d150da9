package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/idilsaglam/notish/internal/model"
)

// JSON export of notes. Single file, human-readable, portable.
// The database stays the source of truth; this is for backup and moving notes around.

// Load reads notes from path. A missing file yields no notes.
func Load(path string) ([]model.Note, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Note{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var notes []model.Note
	if err := json.Unmarshal(b, &notes); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return notes, nil
}

// Save writes notes to path, replacing it.
func Save(path string, notes []model.Note) error {
	if notes == nil {
		notes = []model.Note{}
	}
	b, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

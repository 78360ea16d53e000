package statefile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/niktheblak/temperature-assistant/pkg/reading"
)

// Store persists the latest reading to a single JSON file that is replaced on every write
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Write atomically replaces the state file with r
func (s *Store) Write(r reading.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Read() (reading.Reading, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	var r reading.Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return reading.Reading{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return r, nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

// FileStore keeps the call log as a JSON array on disk
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() ([]types.CallLogEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read call log file: %w", err)
	}

	var entries []types.CallLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse call log file: %w", err)
	}
	return entries, nil
}

func (s *FileStore) Write(entries []types.CallLogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal call log: %w", err)
	}

	// Write to a temp file and rename so a concurrent reader never sees a
	// half-written array.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write call log file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace call log file: %w", err)
	}
	return nil
}

package storage

import "github.com/totalfitness/kiosk-dispatch/internal/types"

// Store is the backing medium for the call log. Write replaces the whole
// sequence (last write wins); Read returns it newest first.
type Store interface {
	Read() ([]types.CallLogEntry, error)
	Write(entries []types.CallLogEntry) error
}

// NoopStore discards writes and reads empty. Used when persistence is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) Read() ([]types.CallLogEntry, error)  { return nil, nil }
func (s *NoopStore) Write(_ []types.CallLogEntry) error   { return nil }

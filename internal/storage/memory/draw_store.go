package memory

import (
	"context"
	"sync"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/storage"
)

// DrawStore is an in-memory implementation of storage.DrawStore.
type DrawStore struct {
	mu   sync.RWMutex
	data []*storage.DrawRecord
}

// NewDrawStore creates a new in-memory draw store.
func NewDrawStore() *DrawStore {
	return &DrawStore{}
}

// Compile-time interface check.
var _ storage.DrawStore = (*DrawStore)(nil)

// InsertBulk adds draw records.
func (s *DrawStore) InsertBulk(_ context.Context, draws []*storage.DrawRecord) error {
	if len(draws) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range draws {
		if d == nil {
			return storage.ErrInvalidInput
		}
		copy := *d
		s.data = append(s.data, &copy)
	}
	return nil
}

// CountByResult returns win and lose counts for a pipeline.
func (s *DrawStore) CountByResult(_ context.Context, pipeline domain.Pipeline) (uint64, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wins, losses uint64
	for _, d := range s.data {
		if d.Pipeline != pipeline.String() {
			continue
		}
		if d.IsWinner {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses, nil
}

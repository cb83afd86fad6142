package memory

import (
	"context"
	"sort"
	"sync"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/storage"
)

// PayoutStore is an in-memory implementation of storage.PayoutStore.
type PayoutStore struct {
	mu   sync.RWMutex
	data map[payoutKey]*domain.PayoutResult
}

type payoutKey struct {
	tradeSig string
	pipeline domain.Pipeline
}

// NewPayoutStore creates a new in-memory payout store.
func NewPayoutStore() *PayoutStore {
	return &PayoutStore{
		data: make(map[payoutKey]*domain.PayoutResult),
	}
}

// Compile-time interface check.
var _ storage.PayoutStore = (*PayoutStore)(nil)

// Insert adds a payout result. Returns ErrDuplicateKey if a result for
// the same (trade signature, pipeline) already exists.
func (s *PayoutStore) Insert(_ context.Context, p *domain.PayoutResult) error {
	if p == nil || p.TradeSig == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := payoutKey{tradeSig: p.TradeSig, pipeline: p.Pipeline}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[k] = &copy
	return nil
}

// GetByTradeSig retrieves all payout results for a trade event.
func (s *PayoutStore) GetByTradeSig(_ context.Context, tradeSig string) ([]*domain.PayoutResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*domain.PayoutResult
	for k, p := range s.data {
		if k.tradeSig == tradeSig {
			copy := *p
			results = append(results, &copy)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Pipeline < results[j].Pipeline
	})
	return results, nil
}

// GetRecent retrieves the most recent payout results, newest first.
func (s *PayoutStore) GetRecent(_ context.Context, limit int) ([]*domain.PayoutResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*domain.PayoutResult, 0, len(s.data))
	for _, p := range s.data {
		copy := *p
		results = append(results, &copy)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt > results[j].CreatedAt
	})
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Package memory provides in-memory store implementations, used by tests
// and by runs that skip persistence.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

// PeriodStore is an in-memory implementation of storage.PeriodStore.
type PeriodStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Period // keyed by coin|start_ts
}

// NewPeriodStore creates a new in-memory period store.
func NewPeriodStore() *PeriodStore {
	return &PeriodStore{
		data: make(map[string]*domain.Period),
	}
}

func periodKey(coin string, startTs int64) string {
	return fmt.Sprintf("%s|%d", coin, startTs)
}

// Insert adds a new period. Returns ErrDuplicateKey if (coin, start_ts) exists.
func (s *PeriodStore) Insert(_ context.Context, p *domain.Period) error {
	if p == nil || p.Coin == "" || p.StartTs == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey(p.Coin, p.StartTs)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple periods atomically. Fails entire batch on any duplicate.
func (s *PeriodStore) InsertBulk(_ context.Context, periods []*domain.Period) error {
	if len(periods) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		if p == nil || p.Coin == "" || p.StartTs == 0 {
			return storage.ErrInvalidInput
		}
		key := periodKey(p.Coin, p.StartTs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range periods {
		copy := *p
		s.data[periodKey(p.Coin, p.StartTs)] = &copy
	}
	return nil
}

// GetByStart retrieves a period by coin and start timestamp. Returns ErrNotFound if not exists.
func (s *PeriodStore) GetByStart(_ context.Context, coin string, startTs int64) (*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[periodKey(coin, startTs)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetByTimeRange retrieves a coin's periods within [start, end], ordered by start_ts ASC.
func (s *PeriodStore) GetByTimeRange(_ context.Context, coin string, start, end int64) ([]*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Period
	for _, p := range s.data {
		if p.Coin == coin && p.StartTs >= start && p.StartTs <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTs < result[j].StartTs
	})

	return result, nil
}

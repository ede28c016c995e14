package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceSnapshot // keyed by coin|period_ts
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string][]*domain.PriceSnapshot),
	}
}

func snapshotKey(coin string, periodTs int64) string {
	return fmt.Sprintf("%s|%d", coin, periodTs)
}

// InsertBulk adds a period's snapshots. Fails entire batch on duplicate (coin, period_ts, minute).
func (s *SnapshotStore) InsertBulk(_ context.Context, coin string, periodTs int64, points []*domain.PriceSnapshot) error {
	if coin == "" || periodTs == 0 {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey(coin, periodTs)
	existing := make(map[float64]struct{}, len(s.data[key]))
	for _, p := range s.data[key] {
		existing[p.Minute] = struct{}{}
	}

	batch := make(map[float64]struct{}, len(points))
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, dup := existing[p.Minute]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := batch[p.Minute]; dup {
			return storage.ErrDuplicateKey
		}
		batch[p.Minute] = struct{}{}
	}

	for _, p := range points {
		copy := *p
		s.data[key] = append(s.data[key], &copy)
	}
	sort.Slice(s.data[key], func(i, j int) bool {
		return s.data[key][i].Minute < s.data[key][j].Minute
	})
	return nil
}

// GetByPeriod retrieves all snapshots of a period, ordered by minute ASC.
func (s *SnapshotStore) GetByPeriod(_ context.Context, coin string, periodTs int64) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.data[snapshotKey(coin, periodTs)]
	result := make([]*domain.PriceSnapshot, 0, len(points))
	for _, p := range points {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

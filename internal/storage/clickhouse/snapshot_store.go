package clickhouse

import (
	"context"
	"fmt"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds a period's snapshots. Fails entire batch on duplicate
// (coin, period_ts, minute). ReplacingMergeTree would dedupe eventually, but
// the explicit check keeps ingestion append-only like the other stores.
func (s *SnapshotStore) InsertBulk(ctx context.Context, coin string, periodTs int64, points []*domain.PriceSnapshot) error {
	if coin == "" || periodTs == 0 {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[p.Minute]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.Minute] = struct{}{}
	}

	existing, err := s.GetByPeriod(ctx, coin, periodTs)
	if err != nil {
		return fmt.Errorf("check existing snapshots: %w", err)
	}
	for _, p := range existing {
		if _, dup := seen[p.Minute]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_snapshots (coin, period_ts, minute, price_up, observed_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(coin, periodTs, p.Minute, p.PriceUp, p.ObservedAt); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByPeriod retrieves all snapshots of a period, ordered by minute ASC.
func (s *SnapshotStore) GetByPeriod(ctx context.Context, coin string, periodTs int64) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT minute, price_up, observed_at
		FROM price_snapshots FINAL
		WHERE coin = ? AND period_ts = ?
		ORDER BY minute ASC
	`

	rows, err := s.conn.Query(ctx, query, coin, periodTs)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.PriceSnapshot
	for rows.Next() {
		var p domain.PriceSnapshot
		if err := rows.Scan(&p.Minute, &p.PriceUp, &p.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return result, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

// PeriodStore implements storage.PeriodStore using PostgreSQL.
type PeriodStore struct {
	pool *Pool
}

// NewPeriodStore creates a new PeriodStore.
func NewPeriodStore(pool *Pool) *PeriodStore {
	return &PeriodStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PeriodStore = (*PeriodStore)(nil)

const insertPeriodQuery = `
	INSERT INTO periods (coin, start_ts, end_ts, outcome, created_at)
	VALUES ($1, $2, $3, $4, $5)
`

// Insert adds a new period. Returns ErrDuplicateKey if (coin, start_ts) exists.
func (s *PeriodStore) Insert(ctx context.Context, p *domain.Period) error {
	_, err := s.pool.Exec(ctx, insertPeriodQuery,
		p.Coin, p.StartTs, p.EndTs, string(p.Outcome), p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert period: %w", err)
	}
	return nil
}

// InsertBulk adds multiple periods atomically. Fails entire batch on any duplicate.
func (s *PeriodStore) InsertBulk(ctx context.Context, periods []*domain.Period) error {
	if len(periods) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range periods {
		_, err := tx.Exec(ctx, insertPeriodQuery,
			p.Coin, p.StartTs, p.EndTs, string(p.Outcome), p.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert period %s/%d: %w", p.Coin, p.StartTs, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByStart retrieves a period by coin and start timestamp. Returns ErrNotFound if not exists.
func (s *PeriodStore) GetByStart(ctx context.Context, coin string, startTs int64) (*domain.Period, error) {
	query := `
		SELECT coin, start_ts, end_ts, outcome, created_at
		FROM periods
		WHERE coin = $1 AND start_ts = $2
	`

	var p domain.Period
	var outcome string
	err := s.pool.QueryRow(ctx, query, coin, startTs).Scan(
		&p.Coin, &p.StartTs, &p.EndTs, &outcome, &p.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get period: %w", err)
	}
	p.Outcome = domain.PeriodOutcome(outcome)
	return &p, nil
}

// GetByTimeRange retrieves a coin's periods within [start, end], ordered by start_ts ASC.
func (s *PeriodStore) GetByTimeRange(ctx context.Context, coin string, start, end int64) ([]*domain.Period, error) {
	query := `
		SELECT coin, start_ts, end_ts, outcome, created_at
		FROM periods
		WHERE coin = $1 AND start_ts >= $2 AND start_ts <= $3
		ORDER BY start_ts ASC
	`

	rows, err := s.pool.Query(ctx, query, coin, start, end)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var result []*domain.Period
	for rows.Next() {
		var p domain.Period
		var outcome string
		if err := rows.Scan(&p.Coin, &p.StartTs, &p.EndTs, &outcome, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		p.Outcome = domain.PeriodOutcome(outcome)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return result, nil
}

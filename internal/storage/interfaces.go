package storage

import (
	"context"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// PeriodStore provides access to periods storage.
type PeriodStore interface {
	// Insert adds a new period. Returns ErrDuplicateKey if (coin, start_ts) exists.
	Insert(ctx context.Context, p *domain.Period) error

	// InsertBulk adds multiple periods atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, periods []*domain.Period) error

	// GetByStart retrieves a period by coin and start timestamp. Returns ErrNotFound if not exists.
	GetByStart(ctx context.Context, coin string, startTs int64) (*domain.Period, error)

	// GetByTimeRange retrieves a coin's periods with start_ts within [start, end] (inclusive),
	// ordered by start_ts ASC.
	GetByTimeRange(ctx context.Context, coin string, start, end int64) ([]*domain.Period, error)
}

// SnapshotStore provides access to price snapshot timeseries storage.
type SnapshotStore interface {
	// InsertBulk adds a period's snapshots. Fails entire batch on duplicate (coin, period_ts, minute).
	InsertBulk(ctx context.Context, coin string, periodTs int64, points []*domain.PriceSnapshot) error

	// GetByPeriod retrieves all snapshots of a period, ordered by minute ASC.
	GetByPeriod(ctx context.Context, coin string, periodTs int64) ([]*domain.PriceSnapshot, error)
}

// TradeStore provides access to trade_records storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByConfig retrieves all trades of a config, ordered by period_ts ASC.
	GetByConfig(ctx context.Context, configName string) ([]*domain.TradeRecord, error)

	// GetAll retrieves all trades, ordered by (config_name, period_ts) ASC.
	GetAll(ctx context.Context) ([]*domain.TradeRecord, error)
}

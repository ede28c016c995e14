package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO trade_records (
		trade_id, config_name, family, period_ts, side,
		entry_price, entry_minute, size_usd, order_ref, status,
		outcome, exit_type, exit_price, exit_minute, pnl, created_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16
	)
`

const selectTradeColumns = `
	trade_id, config_name, family, period_ts, side,
	entry_price, entry_minute, size_usd, order_ref, status,
	outcome, exit_type, exit_price, exit_minute, pnl, created_at
`

func tradeArgs(t *domain.TradeRecord) []any {
	return []any{
		t.TradeID, t.ConfigName, string(t.Family), t.PeriodTs, string(t.Side),
		t.EntryPrice, t.EntryMinute, t.SizeUSD, t.OrderRef, string(t.Status),
		string(t.Outcome), string(t.ExitType), t.ExitPrice, t.ExitMinute, t.PnL, t.CreatedAt,
	}
}

func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var family, side, status, outcome, exitType string
	err := row.Scan(
		&t.TradeID, &t.ConfigName, &family, &t.PeriodTs, &side,
		&t.EntryPrice, &t.EntryMinute, &t.SizeUSD, &t.OrderRef, &status,
		&outcome, &exitType, &t.ExitPrice, &t.ExitMinute, &t.PnL, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Family = domain.Family(family)
	t.Side = domain.Side(side)
	t.Status = domain.TradeStatus(status)
	t.Outcome = domain.TradeOutcome(outcome)
	t.ExitType = domain.ExitType(exitType)
	return &t, nil
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	_, err := s.pool.Exec(ctx, insertTradeQuery, tradeArgs(t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if _, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + ` FROM trade_records WHERE trade_id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, tradeID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

// GetByConfig retrieves all trades of a config, ordered by period_ts ASC.
func (s *TradeStore) GetByConfig(ctx context.Context, configName string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + `
		FROM trade_records
		WHERE config_name = $1
		ORDER BY period_ts ASC`

	return s.queryTrades(ctx, query, configName)
}

// GetAll retrieves all trades, ordered by (config_name, period_ts) ASC.
func (s *TradeStore) GetAll(ctx context.Context) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + `
		FROM trade_records
		ORDER BY config_name ASC, period_ts ASC`

	return s.queryTrades(ctx, query)
}

func (s *TradeStore) queryTrades(ctx context.Context, query string, args ...any) ([]*domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return result, nil
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/storage"
)

func TestPeriodStoreInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewPeriodStore()

	p := &domain.Period{Coin: "btc", StartTs: 1700000100, EndTs: 1700001000, Outcome: domain.OutcomeUp}
	require.NoError(t, s.Insert(ctx, p))

	got, err := s.GetByStart(ctx, "btc", 1700000100)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeUp, got.Outcome)

	// Mutating the returned copy must not affect the store.
	got.Outcome = domain.OutcomeDown
	again, err := s.GetByStart(ctx, "btc", 1700000100)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeUp, again.Outcome)
}

func TestPeriodStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewPeriodStore()

	p := &domain.Period{Coin: "btc", StartTs: 1700000100, EndTs: 1700001000}
	require.NoError(t, s.Insert(ctx, p))
	require.ErrorIs(t, s.Insert(ctx, p), storage.ErrDuplicateKey)

	// Same start for a different coin is a different key.
	require.NoError(t, s.Insert(ctx, &domain.Period{Coin: "eth", StartTs: 1700000100, EndTs: 1700001000}))
}

func TestPeriodStoreTimeRangeOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewPeriodStore()

	for _, ts := range []int64{1700002800, 1700000100, 1700001900} {
		require.NoError(t, s.Insert(ctx, &domain.Period{Coin: "btc", StartTs: ts, EndTs: ts + 900}))
	}

	got, err := s.GetByTimeRange(ctx, "btc", 1700000100, 1700001900)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1700000100), got[0].StartTs)
	require.Equal(t, int64(1700001900), got[1].StartTs)
}

func TestPeriodStoreNotFound(t *testing.T) {
	s := NewPeriodStore()
	_, err := s.GetByStart(context.Background(), "btc", 42)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPeriodStoreInsertBulkAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewPeriodStore()

	batch := []*domain.Period{
		{Coin: "btc", StartTs: 1700000100, EndTs: 1700001000},
		{Coin: "btc", StartTs: 1700000100, EndTs: 1700001000}, // intra-batch dup
	}
	require.ErrorIs(t, s.InsertBulk(ctx, batch), storage.ErrDuplicateKey)

	// Nothing from the failed batch may be visible.
	_, err := s.GetByStart(ctx, "btc", 1700000100)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()

	points := []*domain.PriceSnapshot{
		{Minute: 5.0, PriceUp: 0.62},
		{Minute: 3.0, PriceUp: 0.55},
	}
	require.NoError(t, s.InsertBulk(ctx, "btc", 1700000100, points))

	got, err := s.GetByPeriod(ctx, "btc", 1700000100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 3.0, got[0].Minute, "snapshots must come back minute-ordered")
	require.Equal(t, 5.0, got[1].Minute)
}

func TestSnapshotStoreDuplicateMinute(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()

	require.NoError(t, s.InsertBulk(ctx, "btc", 1700000100,
		[]*domain.PriceSnapshot{{Minute: 5.0, PriceUp: 0.62}}))
	require.ErrorIs(t, s.InsertBulk(ctx, "btc", 1700000100,
		[]*domain.PriceSnapshot{{Minute: 5.0, PriceUp: 0.63}}), storage.ErrDuplicateKey)

	// Same minute in another period is fine.
	require.NoError(t, s.InsertBulk(ctx, "btc", 1700001000,
		[]*domain.PriceSnapshot{{Minute: 5.0, PriceUp: 0.63}}))
}

func TestTradeStoreInsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	trades := []*domain.TradeRecord{
		{TradeID: "t2", ConfigName: "cfg_a", PeriodTs: 1700001000, PnL: -0.05},
		{TradeID: "t1", ConfigName: "cfg_a", PeriodTs: 1700000100, PnL: 0.15},
		{TradeID: "t3", ConfigName: "cfg_b", PeriodTs: 1700000100, PnL: 0.08},
	}
	require.NoError(t, s.InsertBulk(ctx, trades))

	byConfig, err := s.GetByConfig(ctx, "cfg_a")
	require.NoError(t, err)
	require.Len(t, byConfig, 2)
	require.Equal(t, "t1", byConfig[0].TradeID, "trades must be chronological")

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "t1", all[0].TradeID)
	require.Equal(t, "t3", all[2].TradeID)
}

func TestTradeStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	require.NoError(t, s.Insert(ctx, &domain.TradeRecord{TradeID: "t1"}))
	require.ErrorIs(t, s.Insert(ctx, &domain.TradeRecord{TradeID: "t1"}), storage.ErrDuplicateKey)
}

func TestTradeStoreInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	require.ErrorIs(t, s.Insert(ctx, nil), storage.ErrInvalidInput)
	require.ErrorIs(t, s.Insert(ctx, &domain.TradeRecord{}), storage.ErrInvalidInput)
}

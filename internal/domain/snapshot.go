// Package domain contains core types shared across the backtest and live
// trading pipelines: price snapshots, periods, signals, trade records,
// strategy configs and aggregate statistics.
package domain

import "time"

// PriceSnapshot is one observation of the Up-token probability price within a
// 15-minute period. Minute is the offset from period start; PriceUp is in
// [0, 1] and the Down price is always 1 - PriceUp.
type PriceSnapshot struct {
	Minute     float64
	PriceUp    float64
	ObservedAt time.Time
}

// PriceSeries is the snapshot series of a single period, ordered by Minute
// ascending. Backtest code treats it as immutable; the live session machine
// appends to its own buffer as ticks arrive.
type PriceSeries struct {
	PeriodTs int64
	Points   []*PriceSnapshot
}

// Len returns the number of snapshots in the series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Last returns the final snapshot, or nil for an empty series.
func (s *PriceSeries) Last() *PriceSnapshot {
	if s == nil || len(s.Points) == 0 {
		return nil
	}
	return s.Points[len(s.Points)-1]
}

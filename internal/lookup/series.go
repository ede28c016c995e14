// Package lookup provides tolerance-based lookups over a period's snapshot
// series. Sparse feeds mean an exact minute rarely exists; callers ask for
// the nearest observation within a tolerance and treat a miss as "no data",
// never as an error to propagate.
package lookup

import (
	"errors"
	"math"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// ErrNoData indicates no snapshot exists within tolerance of the requested
// minute.
var ErrNoData = errors.New("no price data within tolerance")

// PriceAt returns the Up price of the snapshot nearest to the target minute,
// provided it lies within tolerance minutes. Points must be ordered by
// minute ascending.
func PriceAt(points []*domain.PriceSnapshot, minute, tolerance float64) (float64, error) {
	snap, err := SnapshotAt(points, minute, tolerance)
	if err != nil {
		return 0, err
	}
	return snap.PriceUp, nil
}

// SnapshotAt is PriceAt but returns the full snapshot.
func SnapshotAt(points []*domain.PriceSnapshot, minute, tolerance float64) (*domain.PriceSnapshot, error) {
	var best *domain.PriceSnapshot
	bestDist := math.Inf(1)
	for _, p := range points {
		d := math.Abs(p.Minute - minute)
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	if best == nil || bestDist > tolerance {
		return nil, ErrNoData
	}
	return best, nil
}

// Window returns the snapshots with from <= minute <= to, preserving order.
func Window(points []*domain.PriceSnapshot, from, to float64) []*domain.PriceSnapshot {
	var out []*domain.PriceSnapshot
	for _, p := range points {
		if p.Minute >= from && p.Minute <= to {
			out = append(out, p)
		}
	}
	return out
}

// PriceRange returns the lowest and highest Up price over the given points.
func PriceRange(points []*domain.PriceSnapshot) (lo, hi float64, err error) {
	if len(points) == 0 {
		return 0, 0, ErrNoData
	}
	lo, hi = points[0].PriceUp, points[0].PriceUp
	for _, p := range points[1:] {
		if p.PriceUp < lo {
			lo = p.PriceUp
		}
		if p.PriceUp > hi {
			hi = p.PriceUp
		}
	}
	return lo, hi, nil
}

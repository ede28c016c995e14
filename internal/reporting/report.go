// Package reporting renders ranked backtest results as markdown, CSV and a
// console table.
package reporting

import (
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/stats"
)

// Meta describes the run a report covers.
type Meta struct {
	Coin    string
	Hours   int
	Periods int
	Configs int
}

// Report is the ranked view over one backtest run.
type Report struct {
	GeneratedAt time.Time
	Meta        Meta
	Overall     []*domain.Stats
	PerFamily   map[domain.Family][]*domain.Stats
}

// Options controls qualification and leaderboard depth.
type Options struct {
	TopN            int
	MinTrades       int
	FamilyTopN      int
	FamilyMinTrades int
}

// DefaultOptions mirrors the canonical run: overall top 25 with at least 20
// trades, per-family top 5 with at least 15.
func DefaultOptions() Options {
	return Options{
		TopN:            25,
		MinTrades:       stats.DefaultMinTrades,
		FamilyTopN:      5,
		FamilyMinTrades: stats.DefaultFamilyMinTrades,
	}
}

// Generator builds reports with an injectable clock.
type Generator struct {
	opts Options
	now  func() time.Time
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts, now: time.Now}
}

// WithClock overrides the timestamp source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build ranks the aggregated stats into a report.
func (g *Generator) Build(meta Meta, all []*domain.Stats) *Report {
	overall := stats.Rank(all, g.opts.MinTrades)
	if len(overall) > g.opts.TopN {
		overall = overall[:g.opts.TopN]
	}
	return &Report{
		GeneratedAt: g.now().UTC(),
		Meta:        meta,
		Overall:     overall,
		PerFamily:   stats.TopPerFamily(all, g.opts.FamilyMinTrades, g.opts.FamilyTopN),
	}
}

// familyOrder fixes the section order across renderers.
var familyOrder = []domain.Family{
	domain.FamilyMomentum,
	domain.FamilyEarlyCheap,
	domain.FamilyMeanReversion,
	domain.FamilyVolSpike,
	domain.FamilyRangeBound,
	domain.FamilySupportResistance,
}

package strategy

import (
	"errors"
	"fmt"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// Factory validation errors.
var (
	ErrUnknownFamily      = errors.New("unknown strategy family")
	ErrMissingEntryMinute = errors.New("momentum_scalp requires entry_minute")
	ErrMissingLookback    = errors.New("momentum_scalp requires lookback_delta")
	ErrMissingThreshold   = errors.New("momentum_scalp requires threshold")
	ErrMissingWindowEnd   = errors.New("early_cheap requires window_end")
	ErrMissingMaxEntry    = errors.New("config requires max_entry")
	ErrMissingObsEnd      = errors.New("config requires obs_end")
	ErrMissingMinMove     = errors.New("mean_reversion requires min_move")
	ErrMissingEntryWindow = errors.New("vol_spike requires entry_window")
	ErrMissingMinRange    = errors.New("config requires min_range")
	ErrMissingMaxRange    = errors.New("range_bound requires max_range")
	ErrMissingObsStart    = errors.New("support_resistance requires obs_start")
	ErrMissingProximity   = errors.New("support_resistance requires proximity")
)

// FromConfig builds the evaluator for a config, validating that every
// parameter the family needs is present.
func FromConfig(cfg domain.StrategyConfig) (Evaluator, error) {
	base := baseEvaluator{name: cfg.Name, family: cfg.Family}

	switch cfg.Family {
	case domain.FamilyMomentum:
		if cfg.EntryMinute == nil {
			return nil, ErrMissingEntryMinute
		}
		if cfg.LookbackDelta == nil {
			return nil, ErrMissingLookback
		}
		if cfg.Threshold == nil {
			return nil, ErrMissingThreshold
		}
		return &Momentum{
			baseEvaluator: base,
			entryMinute:   *cfg.EntryMinute,
			lookback:      *cfg.LookbackDelta,
			threshold:     *cfg.Threshold,
		}, nil

	case domain.FamilyEarlyCheap:
		if cfg.WindowEnd == nil {
			return nil, ErrMissingWindowEnd
		}
		if cfg.MaxEntry == nil {
			return nil, ErrMissingMaxEntry
		}
		minEntry := defaultMinEntry
		if cfg.MinEntry != nil {
			minEntry = *cfg.MinEntry
		}
		return &EarlyCheap{
			baseEvaluator: base,
			windowEnd:     *cfg.WindowEnd,
			minEntry:      minEntry,
			maxEntry:      *cfg.MaxEntry,
		}, nil

	case domain.FamilyMeanReversion:
		if cfg.ObsEnd == nil {
			return nil, ErrMissingObsEnd
		}
		if cfg.LookbackDelta == nil {
			return nil, ErrMissingLookback
		}
		if cfg.MinMove == nil {
			return nil, ErrMissingMinMove
		}
		if cfg.MaxEntry == nil {
			return nil, ErrMissingMaxEntry
		}
		return &MeanReversion{
			baseEvaluator: base,
			obsEnd:        *cfg.ObsEnd,
			lookback:      *cfg.LookbackDelta,
			minMove:       *cfg.MinMove,
			maxEntry:      *cfg.MaxEntry,
		}, nil

	case domain.FamilyVolSpike:
		if cfg.EntryWindow == nil {
			return nil, ErrMissingEntryWindow
		}
		if cfg.MaxEntry == nil {
			return nil, ErrMissingMaxEntry
		}
		if cfg.MinRange == nil {
			return nil, ErrMissingMinRange
		}
		return &VolSpike{
			baseEvaluator: base,
			entryWindow:   *cfg.EntryWindow,
			maxEntry:      *cfg.MaxEntry,
			minRange:      *cfg.MinRange,
		}, nil

	case domain.FamilyRangeBound:
		if cfg.ObsEnd == nil {
			return nil, ErrMissingObsEnd
		}
		if cfg.MinRange == nil {
			return nil, ErrMissingMinRange
		}
		if cfg.MaxRange == nil {
			return nil, ErrMissingMaxRange
		}
		return &RangeBound{
			baseEvaluator: base,
			obsEnd:        *cfg.ObsEnd,
			minRange:      *cfg.MinRange,
			maxRange:      *cfg.MaxRange,
		}, nil

	case domain.FamilySupportResistance:
		if cfg.ObsStart == nil {
			return nil, ErrMissingObsStart
		}
		if cfg.ObsEnd == nil {
			return nil, ErrMissingObsEnd
		}
		if cfg.Proximity == nil {
			return nil, ErrMissingProximity
		}
		return &SupportResistance{
			baseEvaluator: base,
			obsStart:      *cfg.ObsStart,
			obsEnd:        *cfg.ObsEnd,
			proximity:     *cfg.Proximity,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, cfg.Family)
	}
}

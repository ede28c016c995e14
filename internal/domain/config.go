package domain

// Family identifies an entry-evaluator family.
type Family string

const (
	FamilyMomentum          Family = "momentum_scalp"
	FamilyEarlyCheap        Family = "early_cheap"
	FamilyMeanReversion     Family = "mean_reversion"
	FamilyVolSpike          Family = "vol_spike"
	FamilyRangeBound        Family = "range_bound"
	FamilySupportResistance Family = "support_resistance"
)

// ExitParams is the exit parameterization of a strategy config. SLDelta is a
// per-share delta; when SLEntryFraction is set the effective stop-loss delta
// is derived from the entry price instead (vol_spike passes 0.9).
type ExitParams struct {
	TPDelta         float64
	SLDelta         float64
	SLEntryFraction float64
	DeadlineMinute  float64
	HoldToSettle    bool
}

// StrategyConfig is the flat parameterization of one grid entry. Only the
// fields relevant to the Family are set; the factory validates presence.
type StrategyConfig struct {
	Name   string
	Family Family

	// momentum_scalp
	EntryMinute   *float64
	LookbackDelta *float64
	Threshold     *float64

	// early_cheap
	WindowEnd *float64
	MinEntry  *float64

	// shared entry-price cap (early_cheap, mean_reversion, vol_spike)
	MaxEntry *float64

	// mean_reversion, range_bound, support_resistance
	ObsEnd  *float64
	MinMove *float64

	// vol_spike
	EntryWindow *float64
	MinRange    *float64

	// range_bound
	MaxRange *float64

	// support_resistance
	ObsStart  *float64
	Proximity *float64

	Exit ExitParams
}

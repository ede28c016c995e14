package domain

import "time"

// PeriodSeconds is the duration of one Up/Down market period.
const PeriodSeconds = 900

// PeriodOutcome is the settled result of a period.
type PeriodOutcome string

const (
	OutcomeUp         PeriodOutcome = "up"
	OutcomeDown       PeriodOutcome = "down"
	OutcomeUnresolved PeriodOutcome = "unresolved"
)

// SettlementPrice returns the terminal Up-token price implied by the outcome.
// Unresolved periods have no settlement price.
func (o PeriodOutcome) SettlementPrice() (float64, bool) {
	switch o {
	case OutcomeUp:
		return 1.0, true
	case OutcomeDown:
		return 0.0, true
	default:
		return 0, false
	}
}

// Period is one 15-minute Up/Down market instance.
type Period struct {
	Coin      string
	StartTs   int64 // epoch seconds, aligned to PeriodSeconds
	EndTs     int64 // StartTs + PeriodSeconds
	Outcome   PeriodOutcome
	CreatedAt time.Time
}

// AlignPeriodTs floors an epoch timestamp to the containing period start.
func AlignPeriodTs(ts int64) int64 {
	return (ts / PeriodSeconds) * PeriodSeconds
}

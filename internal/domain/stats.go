package domain

// Stats is the aggregate performance of one strategy config over a set of
// closed trades. Std is the population standard deviation; TStat is
// mean / (std / sqrt(n)) and 0 when std is 0. ProfitFactor is +Inf when the
// sample has no losing trades.
type Stats struct {
	ConfigName   string
	Family       Family
	N            int
	Wins         int
	WinRate      float64
	MeanPnL      float64
	Std          float64
	TStat        float64
	ProfitFactor float64
	AvgEntry     float64
	AvgWin       float64
	AvgLoss      float64
	TotalPnL     float64
	ExitCounts   map[ExitType]int

	// Split-half stability: trades in chronological order, first half vs
	// second half, stable iff both halves have a positive mean.
	FirstHalfMean  float64
	SecondHalfMean float64
	Stable         bool
}

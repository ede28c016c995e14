package domain

// Side is the token bought when a signal fires.
type Side string

const (
	SideUp   Side = "Up"
	SideDown Side = "Down"
)

// PositionPrice converts an Up-token price into the price of the held side.
func (s Side) PositionPrice(priceUp float64) float64 {
	if s == SideDown {
		return 1 - priceUp
	}
	return priceUp
}

// TradeSignal is an entry decision produced by an evaluator. EntryPrice is
// the price of the chosen side, not the raw Up price.
type TradeSignal struct {
	ConfigName  string
	Family      Family
	Side        Side
	EntryPrice  float64
	EntryMinute float64
	PeriodTs    int64
}

package strategy

import "github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"

// srMinLevelRange is the minimum spread between support and resistance for
// the levels to mean anything.
const srMinLevelRange = 0.05

// SupportResistance derives support and resistance for the Up side from the
// observation prefix [0, obsStart], then scans [obsStart, obsEnd]
// chronologically and enters on the first snapshot that touches a support
// level within the proximity band. The Up side is checked before the Down
// side at each snapshot, so the earliest qualifying touch wins
// deterministically.
type SupportResistance struct {
	baseEvaluator
	obsStart  float64
	obsEnd    float64
	proximity float64
}

var _ Evaluator = (*SupportResistance)(nil)

func (s *SupportResistance) Evaluate(series *domain.PriceSeries, nowMinute float64) *domain.TradeSignal {
	if nowMinute < s.obsStart {
		return nil
	}

	early := windowPoints(series, 0, s.obsStart)
	if len(early) < 3 {
		return nil
	}
	support, resist, ok := observedRange(early)
	if !ok || resist-support < srMinLevelRange {
		return nil
	}
	supportDn := 1 - resist

	for _, pt := range windowPoints(series, s.obsStart, s.obsEnd) {
		up := pt.PriceUp
		if abs(up-support) <= s.proximity && up < 0.50 {
			return s.signal(series, domain.SideUp, up, pt.Minute)
		}
		dn := 1 - up
		if abs(dn-supportDn) <= s.proximity && dn < 0.50 {
			return s.signal(series, domain.SideDown, dn, pt.Minute)
		}
	}
	return nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

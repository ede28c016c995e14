package strategy

import (
	"fmt"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// Default deadline minutes per family. Early entries get shorter leashes.
const (
	momentumDeadline  = 14.0
	earlyDeadline     = 10.0
	reversionDeadline = 12.0
	volSpikeDeadline  = 14.0
	rangeDeadline     = 12.0
	srDeadline        = 12.0
)

// volSpikeSLFraction parameterizes the vol_spike stop as 90% of the entry
// price instead of a flat delta.
const volSpikeSLFraction = 0.9

func fp(v float64) *float64 { return &v }

// Grid enumerates the full Cartesian parameter grid for all six families.
// Names are deterministic and unique; the same inputs always produce the
// same configs in the same order.
func Grid() []domain.StrategyConfig {
	var configs []domain.StrategyConfig
	configs = append(configs, momentumGrid()...)
	configs = append(configs, earlyCheapGrid()...)
	configs = append(configs, meanReversionGrid()...)
	configs = append(configs, volSpikeGrid()...)
	configs = append(configs, rangeBoundGrid()...)
	configs = append(configs, supportResistanceGrid()...)
	return configs
}

// FindConfig returns the grid config with the given name.
func FindConfig(name string) (domain.StrategyConfig, bool) {
	for _, cfg := range Grid() {
		if cfg.Name == name {
			return cfg, true
		}
	}
	return domain.StrategyConfig{}, false
}

func momentumGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, em := range []float64{5, 7} {
		for _, lb := range []float64{2, 3} {
			for _, th := range []float64{0.55, 0.60, 0.65} {
				for _, tp := range []float64{0.05, 0.08, 0.10, 0.15} {
					for _, sl := range []float64{0.05, 0.08, 0.10} {
						out = append(out, domain.StrategyConfig{
							Name:          fmt.Sprintf("mom_m%g_lb%g_%.0f%%_tp%.2f_sl%.2f", em, lb, th*100, tp, sl),
							Family:        domain.FamilyMomentum,
							EntryMinute:   fp(em),
							LookbackDelta: fp(lb),
							Threshold:     fp(th),
							Exit: domain.ExitParams{
								TPDelta:        tp,
								SLDelta:        sl,
								DeadlineMinute: momentumDeadline,
							},
						})
					}
				}
			}
		}
	}
	return out
}

func earlyCheapGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, wend := range []float64{2, 3, 4} {
		for _, maxE := range []float64{0.35, 0.40, 0.45} {
			for _, tp := range []float64{0.05, 0.08, 0.10, 0.15} {
				for _, sl := range []float64{0.03, 0.05, 0.08} {
					out = append(out, domain.StrategyConfig{
						Name:      fmt.Sprintf("early_w%g_%.0f%%_tp%.2f_sl%.2f", wend, maxE*100, tp, sl),
						Family:    domain.FamilyEarlyCheap,
						WindowEnd: fp(wend),
						MaxEntry:  fp(maxE),
						Exit: domain.ExitParams{
							TPDelta:        tp,
							SLDelta:        sl,
							DeadlineMinute: earlyDeadline,
						},
					})
				}
			}
		}
	}
	return out
}

func meanReversionGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, obs := range []float64{5, 7, 9} {
		for _, lb := range []float64{2, 3, 4} {
			for _, move := range []float64{0.08, 0.10, 0.15} {
				for _, maxE := range []float64{0.25, 0.30, 0.35, 0.40} {
					for _, tp := range []float64{0.05, 0.08, 0.10} {
						for _, sl := range []float64{0.03, 0.05, 0.08} {
							out = append(out, domain.StrategyConfig{
								Name:          fmt.Sprintf("meanrev_o%g_lb%g_mv%.2f_%.0f%%_tp%.2f_sl%.2f", obs, lb, move, maxE*100, tp, sl),
								Family:        domain.FamilyMeanReversion,
								ObsEnd:        fp(obs),
								LookbackDelta: fp(lb),
								MinMove:       fp(move),
								MaxEntry:      fp(maxE),
								Exit: domain.ExitParams{
									TPDelta:        tp,
									SLDelta:        sl,
									DeadlineMinute: reversionDeadline,
								},
							})
						}
					}
				}
			}
		}
	}
	return out
}

func volSpikeGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, ew := range []float64{3, 5, 7} {
		for _, maxE := range []float64{0.10, 0.15, 0.20} {
			for _, minR := range []float64{0.05, 0.10, 0.15} {
				for _, tp := range []float64{0.15, 0.25, 0.40, 0.60} {
					for _, hold := range []bool{true, false} {
						h := 0
						if hold {
							h = 1
						}
						out = append(out, domain.StrategyConfig{
							Name:        fmt.Sprintf("volspike_w%g_%.0f%%_r%.2f_tp%.2f_h%d", ew, maxE*100, minR, tp, h),
							Family:      domain.FamilyVolSpike,
							EntryWindow: fp(ew),
							MaxEntry:    fp(maxE),
							MinRange:    fp(minR),
							Exit: domain.ExitParams{
								TPDelta:         tp,
								SLEntryFraction: volSpikeSLFraction,
								DeadlineMinute:  volSpikeDeadline,
								HoldToSettle:    hold,
							},
						})
					}
				}
			}
		}
	}
	return out
}

func rangeBoundGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, obs := range []float64{4, 5, 6} {
		for _, minR := range []float64{0.05, 0.08, 0.10} {
			for _, maxR := range []float64{0.15, 0.20, 0.30} {
				if maxR <= minR {
					continue
				}
				for _, tp := range []float64{0.05, 0.08, 0.10} {
					for _, sl := range []float64{0.03, 0.05} {
						out = append(out, domain.StrategyConfig{
							Name:     fmt.Sprintf("range_o%g_r%.2f-%.2f_tp%.2f_sl%.2f", obs, minR, maxR, tp, sl),
							Family:   domain.FamilyRangeBound,
							ObsEnd:   fp(obs),
							MinRange: fp(minR),
							MaxRange: fp(maxR),
							Exit: domain.ExitParams{
								TPDelta:        tp,
								SLDelta:        sl,
								DeadlineMinute: rangeDeadline,
							},
						})
					}
				}
			}
		}
	}
	return out
}

func supportResistanceGrid() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, obsS := range []float64{3, 4, 5} {
		for _, obsE := range []float64{6, 7, 8, 10} {
			if obsE <= obsS {
				continue
			}
			for _, prox := range []float64{0.02, 0.03, 0.05} {
				for _, tp := range []float64{0.05, 0.08, 0.10} {
					for _, sl := range []float64{0.03, 0.05} {
						out = append(out, domain.StrategyConfig{
							Name:      fmt.Sprintf("sr_s%g_e%g_p%.2f_tp%.2f_sl%.2f", obsS, obsE, prox, tp, sl),
							Family:    domain.FamilySupportResistance,
							ObsStart:  fp(obsS),
							ObsEnd:    fp(obsE),
							Proximity: fp(prox),
							Exit: domain.ExitParams{
								TPDelta:        tp,
								SLDelta:        sl,
								DeadlineMinute: srDeadline,
							},
						})
					}
				}
			}
		}
	}
	return out
}

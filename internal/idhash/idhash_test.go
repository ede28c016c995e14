package idhash

import (
	"testing"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

func TestTradeIDDeterministic(t *testing.T) {
	a := TradeID("mom_m5_lb2_60%_tp0.15_sl0.05", 1700000100, domain.SideUp)
	b := TradeID("mom_m5_lb2_60%_tp0.15_sl0.05", 1700000100, domain.SideUp)
	if a != b {
		t.Errorf("same inputs must produce the same id: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}

func TestTradeIDDistinct(t *testing.T) {
	base := TradeID("cfg", 1700000100, domain.SideUp)
	if TradeID("cfg2", 1700000100, domain.SideUp) == base {
		t.Error("different config must change the id")
	}
	if TradeID("cfg", 1700001000, domain.SideUp) == base {
		t.Error("different period must change the id")
	}
	if TradeID("cfg", 1700000100, domain.SideDown) == base {
		t.Error("different side must change the id")
	}
}

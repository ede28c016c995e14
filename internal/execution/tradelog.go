package execution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// TradeLog appends one self-contained JSON line per trade event to a daily
// file (trades_YYYY-MM-DD.jsonl), so a crashed session loses at most the
// line being written.
type TradeLog struct {
	dir string
	now func() time.Time
}

// NewTradeLog creates the log directory if needed.
func NewTradeLog(dir string) (*TradeLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trade log dir: %w", err)
	}
	return &TradeLog{dir: dir, now: time.Now}, nil
}

// WithClock overrides the timestamp source.
func (l *TradeLog) WithClock(now func() time.Time) *TradeLog {
	l.now = now
	return l
}

type tradeLogLine struct {
	LoggedAt    string  `json:"logged_at"`
	TradeID     string  `json:"trade_id"`
	ConfigName  string  `json:"config_name"`
	Family      string  `json:"family"`
	PeriodTs    int64   `json:"period_ts"`
	Side        string  `json:"side"`
	EntryPrice  float64 `json:"entry_price"`
	EntryMinute float64 `json:"entry_minute"`
	SizeUSD     float64 `json:"size_usd"`
	Status      string  `json:"status"`
	Outcome     string  `json:"outcome"`
	ExitType    string  `json:"exit_type,omitempty"`
	ExitPrice   float64 `json:"exit_price,omitempty"`
	ExitMinute  float64 `json:"exit_minute,omitempty"`
	PnL         float64 `json:"pnl"`
}

// Append writes the trade's current state as one line.
func (l *TradeLog) Append(t *domain.TradeRecord) error {
	now := l.now().UTC()
	line := tradeLogLine{
		LoggedAt:    now.Format(time.RFC3339),
		TradeID:     t.TradeID,
		ConfigName:  t.ConfigName,
		Family:      string(t.Family),
		PeriodTs:    t.PeriodTs,
		Side:        string(t.Side),
		EntryPrice:  t.EntryPrice,
		EntryMinute: t.EntryMinute,
		SizeUSD:     t.SizeUSD,
		Status:      string(t.Status),
		Outcome:     string(t.Outcome),
		ExitType:    string(t.ExitType),
		ExitPrice:   t.ExitPrice,
		ExitMinute:  t.ExitMinute,
		PnL:         t.PnL,
	}

	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal trade log line: %w", err)
	}

	path := filepath.Join(l.dir, fmt.Sprintf("trades_%s.jsonl", now.Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open trade log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write trade log: %w", err)
	}
	return nil
}

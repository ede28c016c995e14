package domain

import "time"

// ExitType classifies how a position was closed.
type ExitType string

const (
	ExitTakeProfit ExitType = "take_profit"
	ExitStopLoss   ExitType = "stop_loss"
	ExitDeadline   ExitType = "deadline"
	ExitSettlement ExitType = "settlement"
	ExitEndOfData  ExitType = "end_of_data"
	ExitNoData     ExitType = "no_data"
	ExitNone       ExitType = ""
)

// TradeStatus tracks the lifecycle of a live order. Backtest records are
// created directly as StatusSimulated.
type TradeStatus string

const (
	StatusSimulated TradeStatus = "simulated"
	StatusPaper     TradeStatus = "paper"
	StatusPosted    TradeStatus = "posted"
	StatusFilled    TradeStatus = "filled"
	StatusCancelled TradeStatus = "cancelled"
	StatusFailed    TradeStatus = "failed"
)

// TradeOutcome is the win/loss classification of a closed trade.
type TradeOutcome string

const (
	TradeWon     TradeOutcome = "won"
	TradeLost    TradeOutcome = "lost"
	TradePending TradeOutcome = "pending"
)

// ExitOutcome is the result of applying exit rules to an open position.
// Price is the exit price of the held side; PnL is per-share for simulated
// trades and in USD for executed ones.
type ExitOutcome struct {
	Type   ExitType
	Price  float64
	Minute float64
	PnL    float64
}

// TradeRecord is one entry/exit round trip, simulated or executed.
type TradeRecord struct {
	TradeID     string
	ConfigName  string
	Family      Family
	PeriodTs    int64
	Side        Side
	EntryPrice  float64
	EntryMinute float64
	SizeUSD     float64
	OrderRef    string
	Status      TradeStatus
	Outcome     TradeOutcome
	ExitType    ExitType
	ExitPrice   float64
	ExitMinute  float64
	PnL         float64
	CreatedAt   time.Time
}

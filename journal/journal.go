package journal

import (
	"context"
	"time"

	"github.com/iMarioChow/algo/backtest"
	"github.com/iMarioChow/algo/risk"
)

// TradeRecord is a closed trade as stored in the journal.
type TradeRecord struct {
	TradeID        string
	RunID          string
	Seq            int
	Instrument     string
	Side           string
	Units          float64
	EntryIdx       int
	ExitIdx        int
	EntryPrice     float64
	ExitPrice      float64
	OpenTime       time.Time
	CloseTime      time.Time
	Fee            float64
	RealizedPL     float64
	MaxDrawdownPct float64
	Reason         string
}

// EquitySnapshot is one step of a run.
type EquitySnapshot struct {
	RunID   string
	Idx     int
	Time    time.Time
	Price   float64
	Side    string
	Balance float64
	Equity  float64
}

// Run is one backtest with its summary, trades and equity curve.
type Run struct {
	RunID      string
	Created    time.Time
	Instrument string
	Policy     string
	Dataset    string
	Params     risk.Policy

	Start time.Time
	End   time.Time
	Bars  int

	StartBalance float64
	EndBalance   float64
	EndEquity    float64
	Fees         float64
	BaselinePL   float64

	Stats backtest.Stats

	Trades []TradeRecord
	Equity []EquitySnapshot
}

// ReturnPct is the balance change in percent of the start balance. Runs
// that start from zero report 0.
func (r Run) ReturnPct() float64 {
	if r.StartBalance == 0 {
		return 0
	}
	return (r.EndBalance - r.StartBalance) / r.StartBalance * 100
}

type Journal interface {
	RecordRun(ctx context.Context, r Run) error
	Close() error
}

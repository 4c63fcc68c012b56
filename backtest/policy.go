package backtest

import (
	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

// Close reasons recorded on trades.
const (
	ReasonSignalFlat  = "SIGNAL_FLAT"
	ReasonTakeProfit  = "TAKE_PROFIT"
	ReasonStopLoss    = "STOP_LOSS"
	ReasonHoldExpired = "HOLD_EXPIRED"
	ReasonEndOfSeries = "END_OF_SERIES"
)

// ExitCheck is what a close policy sees for an open position on one bar.
type ExitCheck struct {
	Pos        Position
	Idx        int
	Signal     market.Signal
	Price      float64
	Balance    float64 // balance now, not at entry
	Unrealized float64
}

// ClosePolicy decides how positions are sized, what entering costs and
// when an open position is closed. The stepping loop is the same for
// every policy.
type ClosePolicy interface {
	Name() string
	Validate() error
	StartBalance() float64
	Size(balance, price float64) float64
	EntryFee(balance float64) float64
	Exit(x ExitCheck) (reason string, hit bool)
}

var (
	_ ClosePolicy = SignalClose{}
	_ ClosePolicy = RiskClose{}
)

// SignalClose holds one unit until the signal returns to flat. A signal
// that flips straight from long to short (or back) is ignored while a
// position is open. The balance starts at zero, so equity is the running
// profit.
type SignalClose struct{}

func (SignalClose) Name() string { return "signal-close" }
func (SignalClose) Validate() error { return nil }
func (SignalClose) StartBalance() float64 { return 0 }
func (SignalClose) Size(balance, price float64) float64 { return 1 }
func (SignalClose) EntryFee(balance float64) float64 { return 0 }

func (SignalClose) Exit(x ExitCheck) (string, bool) {
	if x.Signal == market.SignalFlat {
		return ReasonSignalFlat, true
	}
	return "", false
}

// RiskClose commits the whole balance to each position and closes it on a
// take-profit or stop-loss band or after HoldPeriod bars, whatever the
// signal says.
//
// The bands are recomputed from the balance at every check, not frozen at
// entry. The entry fee lowers the balance, so the bands of a trade are
// slightly narrower than the balance it was sized from.
type RiskClose struct {
	Policy risk.Policy
}

func (RiskClose) Name() string { return "risk-close" }

func (c RiskClose) Validate() error       { return c.Policy.Validate() }
func (c RiskClose) StartBalance() float64 { return c.Policy.InitialBalance }

func (c RiskClose) Size(balance, price float64) float64 {
	return risk.Units(balance, price)
}

func (c RiskClose) EntryFee(balance float64) float64 {
	return c.Policy.EntryFee(balance)
}

func (c RiskClose) Exit(x ExitCheck) (string, bool) {
	take, stop := c.Policy.Bands(x.Balance)
	switch {
	case x.Unrealized >= take:
		return ReasonTakeProfit, true
	case x.Unrealized <= -stop:
		return ReasonStopLoss, true
	case x.Idx-x.Pos.EntryIdx >= c.Policy.HoldPeriod:
		return ReasonHoldExpired, true
	}
	return "", false
}

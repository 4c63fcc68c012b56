package backtest

import (
	"fmt"

	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

// RunSignalClose runs the signal-close engine with default options.
func RunSignalClose(series market.Series, signals []market.Signal) (Result, error) {
	return NewEngine(SignalClose{}, Options{}, nil).Run(series, signals)
}

// RunRiskClose runs the risk-close engine for p with default options.
func RunRiskClose(series market.Series, signals []market.Signal, p risk.Policy) (Result, error) {
	return NewEngine(RiskClose{Policy: p}, Options{}, nil).Run(series, signals)
}

// PolicyByName returns the close policy for a variant name: "signal" or
// "risk" (with p).
func PolicyByName(name string, p risk.Policy) (ClosePolicy, error) {
	switch name {
	case "signal", "signal-close", "":
		return SignalClose{}, nil
	case "risk", "risk-close":
		return RiskClose{Policy: p}, nil
	}
	return nil, fmt.Errorf("backtest: unknown variant %q (supported: signal, risk)", name)
}

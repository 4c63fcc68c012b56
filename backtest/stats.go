package backtest

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradingDays annualises the per-trade Sharpe ratio.
const TradingDays = 252

// Stats summarises a trade ledger.
type Stats struct {
	TradeCount     int
	MaxDrawdownPct float64 // worst per-trade drawdown, 0 without trades
	SharpeRatio    float64

	Wins         int
	Losses       int
	WinRate      float64 // 0..1
	NetPL        float64
	ProfitFactor float64 // gross profit / gross loss, 0 without losses
}

// Summarize computes statistics over closed trades. The Sharpe ratio is
// mean(pnl) / sampleStdDev(pnl) * sqrt(252) and is 0 with fewer than two
// trades or when every trade made the same P/L.
func Summarize(trades Ledger) Stats {
	s := Stats{TradeCount: len(trades)}
	if len(trades) == 0 {
		return s
	}

	pnls := trades.PnLs()
	s.NetPL = floats.Sum(pnls)
	s.MaxDrawdownPct = math.Min(floats.Min(trades.Drawdowns()), 0)

	var grossProfit, grossLoss float64
	for _, p := range pnls {
		switch {
		case p > 0:
			s.Wins++
			grossProfit += p
		case p < 0:
			s.Losses++
			grossLoss -= p
		}
	}
	s.WinRate = float64(s.Wins) / float64(len(trades))
	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	}

	if len(pnls) > 1 {
		mean, sd := stat.MeanStdDev(pnls, nil)
		if sd > 0 {
			s.SharpeRatio = mean / sd * math.Sqrt(TradingDays)
		}
	}
	return s
}

package backtest

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

func ledgerOf(pnls []float64, dds []float64) Ledger {
	l := make(Ledger, len(pnls))
	for i := range pnls {
		l[i] = Trade{PnL: pnls[i], MaxDrawdownPct: dds[i]}
	}
	return l
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, Stats{}, Summarize(nil))
	})

	t.Run("single trade has no sharpe", func(t *testing.T) {
		t.Parallel()
		s := Summarize(ledgerOf([]float64{5}, []float64{-2}))
		assert.Equal(t, 1, s.TradeCount)
		assert.Equal(t, 0.0, s.SharpeRatio)
		assert.Equal(t, -2.0, s.MaxDrawdownPct)
		assert.Equal(t, 1.0, s.WinRate)
		assert.Equal(t, 0.0, s.ProfitFactor)
	})

	t.Run("sharpe", func(t *testing.T) {
		t.Parallel()
		s := Summarize(ledgerOf([]float64{1, 2, 3}, []float64{-1, -4.5, 0}))
		assert.Equal(t, 3, s.TradeCount)
		assert.InDelta(t, 2*math.Sqrt(252), s.SharpeRatio, 1e-9)
		assert.Equal(t, -4.5, s.MaxDrawdownPct)
		assert.Equal(t, 6.0, s.NetPL)
	})

	t.Run("identical pnls", func(t *testing.T) {
		t.Parallel()
		s := Summarize(ledgerOf([]float64{2, 2, 2}, []float64{0, 0, 0}))
		assert.Equal(t, 0.0, s.SharpeRatio)
		assert.Equal(t, 0.0, s.MaxDrawdownPct)
	})

	t.Run("wins and losses", func(t *testing.T) {
		t.Parallel()
		s := Summarize(ledgerOf([]float64{3, -1, -2, 0}, []float64{0, -1, -3, -0.5}))
		assert.Equal(t, 1, s.Wins)
		assert.Equal(t, 2, s.Losses)
		assert.InDelta(t, 0.25, s.WinRate, 1e-12)
		assert.InDelta(t, 1.0, s.ProfitFactor, 1e-12)
		assert.Equal(t, -3.0, s.MaxDrawdownPct)
		assert.InDelta(t, 0.0, s.SharpeRatio, 1e-9)
	})
}

func TestBuyAndHold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{0, 2, 1, -1}, BuyAndHold(market.NewSeries(10, 12, 11, 9)))
	assert.Empty(t, BuyAndHold(nil))
	assert.Equal(t, []float64{0}, BuyAndHold(market.NewSeries(7)))
}

func TestResultViews(t *testing.T) {
	t.Parallel()

	res, err := RunRiskClose(market.NewSeries(100, 90, 84, 80), market.Signals(1, 0, 0, 0), noFee())
	require.NoError(t, err)

	assert.Equal(t, []float64{1000, 1000, 840, 840}, res.BalanceHistory())
	assert.Equal(t, -20.0, res.BaselineFinal())
	assert.Equal(t, 0.0, Result{}.BaselineFinal())
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	p := risk.Default()
	res, err := NewEngine(RiskClose{Policy: p}, Options{Instrument: "META"}, nil).
		Run(market.NewSeries(100, 110, 120, 130, 140), market.Signals(1, 1, 1, 1, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintResult(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Policy:        risk-close")
	assert.Contains(t, out, "Instrument:    META")
	assert.Contains(t, out, "Bars:          5")
	assert.Contains(t, out, "Trades:        1")
	assert.Contains(t, out, "Start Balance: 1000.00")
	assert.Contains(t, out, "Buy & Hold:    40.00")
	assert.Contains(t, out, "Fees:")
	assert.NotContains(t, out, "Start:  ")
}

package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

// Result is everything one run produced. Steps is aligned 1:1 with the
// input series.
type Result struct {
	Policy     string
	Instrument string
	Params     risk.Policy // zero unless the policy is risk-close

	Steps    []Step
	Trades   Ledger
	Stats    Stats
	Baseline []float64 // buy-and-hold P/L per step

	StartBalance float64
	FinalBalance float64
	FinalEquity  float64
	Fees         float64

	Start time.Time
	End   time.Time
}

func newResult(policy, instrument string, start float64, series market.Series, r *run) Result {
	res := Result{
		Policy:       policy,
		Instrument:   instrument,
		Steps:        r.steps,
		Trades:       r.ledger,
		Stats:        Summarize(r.ledger),
		Baseline:     BuyAndHold(series),
		StartBalance: start,
		FinalBalance: r.acct.Balance,
		FinalEquity:  r.acct.Balance,
		Fees:         r.acct.Fees,
		Start:        series.Start(),
		End:          series.End(),
	}
	if n := len(r.steps); n > 0 {
		res.FinalEquity = r.steps[n-1].Equity
	}
	return res
}

// ProfitHistory is the mark-to-market value of every step.
func (r Result) ProfitHistory() []float64 {
	out := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Equity
	}
	return out
}

// BalanceHistory is the realized balance of every step.
func (r Result) BalanceHistory() []float64 {
	out := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Balance
	}
	return out
}

// BaselineFinal is the buy-and-hold P/L on the last bar.
func (r Result) BaselineFinal() float64 {
	if len(r.Baseline) == 0 {
		return 0
	}
	return r.Baseline[len(r.Baseline)-1]
}

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Policy:        %s\n", r.Policy)
	if r.Instrument != "" {
		fmt.Fprintf(w, "Instrument:    %s\n", r.Instrument)
	}
	fmt.Fprintf(w, "Bars:          %d\n", len(r.Steps))
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Stats.TradeCount)
	fmt.Fprintf(w, "Wins:          %d\n", r.Stats.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Stats.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.Stats.WinRate*100)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.Stats.MaxDrawdownPct)
	fmt.Fprintf(w, "Sharpe Ratio:  %.4f\n", r.Stats.SharpeRatio)
	if r.Stats.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.Stats.ProfitFactor)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.StartBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", r.FinalBalance)
	fmt.Fprintf(w, "End Equity:    %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.Stats.NetPL)
	if r.Fees > 0 {
		fmt.Fprintf(w, "Fees:          %.2f\n", r.Fees)
	}
	fmt.Fprintf(w, "Buy & Hold:    %.2f\n", r.BaselineFinal())

	fmt.Fprintln(w)
}

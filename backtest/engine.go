package backtest

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iMarioChow/algo/internal/logging"
	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

var (
	// ErrInvalidSignal is returned when a signal is not -1, 0 or 1.
	ErrInvalidSignal = errors.New("invalid signal")
	// ErrMisalignedInput is returned when prices and signals differ in length.
	ErrMisalignedInput = errors.New("prices and signals are misaligned")
)

// Side: +1 long, -1 short, 0 flat
type Side int8

const (
	Flat  Side = 0
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "flat"
}

// Position is the single position a run may hold. Entry fields are only
// meaningful while Open is true.
type Position struct {
	Open       bool
	Side       Side
	EntryPrice float64
	EntryIdx   int
	EntryTime  time.Time
	Units      float64
	Notional   float64 // balance committed at entry
	Fee        float64
}

// Unrealized is the open P/L of the position marked at price.
func (p Position) Unrealized(price float64) float64 {
	if !p.Open {
		return 0
	}
	return risk.UnrealizedPL(int(p.Side), p.EntryPrice, price, p.Units)
}

// Trade is a closed position. It is never modified after the close.
type Trade struct {
	EntryIdx   int
	ExitIdx    int
	EntryTime  time.Time
	ExitTime   time.Time
	Side       Side
	EntryPrice float64
	ExitPrice  float64
	Units      float64
	Fee        float64
	PnL        float64

	// MaxDrawdownPct is the worst adverse excursion between entry and exit,
	// in percent of the entry price. Always <= 0.
	MaxDrawdownPct float64
	Reason         string
}

// Account is the running money of one run.
type Account struct {
	Balance  float64 // realized, fees deducted
	Realized float64 // sum of closed trade P/L
	Fees     float64
}

// Step is what the engine recorded for one bar. Index is the bar's position
// in the series, the same basis as Trade.EntryIdx and Trade.ExitIdx.
type Step struct {
	Index  int
	Time   time.Time
	Price  float64
	Signal market.Signal
	Side   Side // position held after the step

	// Equity is Balance plus the unrealized P/L of the open position.
	Equity  float64
	Balance float64
}

type Options struct {
	// Instrument is informational and copied to the result.
	Instrument string

	// If true, a position still open on the last bar is closed there with
	// CloseReason (or ReasonEndOfSeries if empty) and no new position is
	// opened on that bar.
	CloseAtEnd  bool
	CloseReason string
}

// Engine simulates one instrument with at most one open position. A single
// Engine may be reused; every Run starts from fresh state.
type Engine struct {
	policy ClosePolicy
	opts   Options
	log    *zap.Logger
}

func NewEngine(policy ClosePolicy, opts Options, log *zap.Logger) *Engine {
	return &Engine{
		policy: policy,
		opts:   opts,
		log:    logging.OrNop(log),
	}
}

// run is the mutable state of a single simulation.
type run struct {
	acct   Account
	pos    Position
	dd     drawdownTracker
	steps  []Step
	ledger Ledger
}

// Run walks the series once. On every bar it first lets the close policy
// exit an open position, then opens a new one if flat and the signal asks
// for exposure, then records the step.
//
// All inputs are validated before the walk starts; on error no partial
// result is returned.
func (e *Engine) Run(series market.Series, signals []market.Signal) (Result, error) {
	if e.policy == nil {
		return Result{}, errors.New("backtest: close policy is required")
	}
	if err := e.policy.Validate(); err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}
	if err := validateInputs(series, signals); err != nil {
		return Result{}, err
	}

	r := &run{
		acct:   Account{Balance: e.policy.StartBalance()},
		steps:  make([]Step, 0, len(series)),
		ledger: Ledger{},
	}

	last := len(series) - 1
	for i, bar := range series {
		sig := signals[i]
		price := bar.Close
		forceClose := e.opts.CloseAtEnd && i == last

		// 1) Exits first.
		if r.pos.Open {
			r.dd.observe(price)
			if reason, hit := e.policy.Exit(ExitCheck{
				Pos:        r.pos,
				Idx:        i,
				Signal:     sig,
				Price:      price,
				Balance:    r.acct.Balance,
				Unrealized: r.pos.Unrealized(price),
			}); hit {
				e.closePosition(r, i, bar, reason)
			} else if forceClose {
				reason := e.opts.CloseReason
				if reason == "" {
					reason = ReasonEndOfSeries
				}
				e.closePosition(r, i, bar, reason)
			}
		}

		// 2) Entries, only when flat.
		if !r.pos.Open && sig != market.SignalFlat && !forceClose {
			e.openPosition(r, i, bar, Side(sig))
		}

		r.steps = append(r.steps, Step{
			Index:   i,
			Time:    bar.Time,
			Price:   price,
			Signal:  sig,
			Side:    r.pos.side(),
			Equity:  r.acct.Balance + r.pos.Unrealized(price),
			Balance: r.acct.Balance,
		})
	}

	res := newResult(e.policy.Name(), e.opts.Instrument, e.policy.StartBalance(), series, r)
	if rc, ok := e.policy.(RiskClose); ok {
		res.Params = rc.Policy
	}

	e.log.Info("backtest complete",
		zap.String("policy", res.Policy),
		zap.Int("bars", len(series)),
		zap.Int("trades", res.Stats.TradeCount),
		zap.Float64("final_balance", res.FinalBalance),
		zap.Float64("final_equity", res.FinalEquity),
		zap.Float64("max_drawdown_pct", res.Stats.MaxDrawdownPct),
		zap.Float64("sharpe", res.Stats.SharpeRatio),
	)
	return res, nil
}

func (p Position) side() Side {
	if !p.Open {
		return Flat
	}
	return p.Side
}

func (e *Engine) openPosition(r *run, idx int, bar market.Bar, side Side) {
	balance := r.acct.Balance
	units := e.policy.Size(balance, bar.Close)
	fee := e.policy.EntryFee(balance)

	r.acct.Balance -= fee
	r.acct.Fees += fee

	r.pos = Position{
		Open:       true,
		Side:       side,
		EntryPrice: bar.Close,
		EntryIdx:   idx,
		EntryTime:  bar.Time,
		Units:      units,
		Notional:   balance,
		Fee:        fee,
	}
	r.dd.reset()
	r.dd.observe(bar.Close)

	e.log.Debug("open position",
		zap.Int("idx", idx),
		zap.Stringer("side", side),
		zap.Float64("price", bar.Close),
		zap.Float64("units", units),
		zap.Float64("fee", fee),
		zap.Float64("balance", r.acct.Balance),
	)
}

func (e *Engine) closePosition(r *run, idx int, bar market.Bar, reason string) {
	p := r.pos
	r.pos.Open = false

	pnl := p.Unrealized(bar.Close)
	r.acct.Balance += pnl
	r.acct.Realized += pnl

	tr := Trade{
		EntryIdx:       p.EntryIdx,
		ExitIdx:        idx,
		EntryTime:      p.EntryTime,
		ExitTime:       bar.Time,
		Side:           p.Side,
		EntryPrice:     p.EntryPrice,
		ExitPrice:      bar.Close,
		Units:          p.Units,
		Fee:            p.Fee,
		PnL:            pnl,
		MaxDrawdownPct: r.dd.maxDrawdownPct(p.Side, p.EntryPrice),
		Reason:         reason,
	}
	r.ledger = append(r.ledger, tr)
	r.dd.reset()

	e.log.Debug("close position",
		zap.Int("idx", idx),
		zap.Stringer("side", p.Side),
		zap.Float64("price", bar.Close),
		zap.Float64("pnl", pnl),
		zap.Float64("drawdown_pct", tr.MaxDrawdownPct),
		zap.String("reason", reason),
		zap.Float64("balance", r.acct.Balance),
	)
}

func validateInputs(series market.Series, signals []market.Signal) error {
	if len(series) != len(signals) {
		return fmt.Errorf("backtest: %d prices, %d signals: %w", len(series), len(signals), ErrMisalignedInput)
	}
	for i, s := range signals {
		if !s.Valid() {
			return fmt.Errorf("backtest: signal %d at step %d: %w", int8(s), i, ErrInvalidSignal)
		}
	}
	if err := series.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	return nil
}

// Package sweep runs the risk-close backtest over a grid of risk policies.
// Every run is independent and single-threaded; only the fan-out over the
// grid is concurrent.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iMarioChow/algo/backtest"
	"github.com/iMarioChow/algo/internal/logging"
	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/risk"
)

// Grid is the cartesian product of risk parameters to try. An empty
// dimension falls back to the matching risk.Default value.
type Grid struct {
	TakeProfitRates []float64
	StopLossRates   []float64
	HoldPeriods     []int
	TransactionFees []float64
	InitialBalance  float64
}

// Policies expands the grid. The order is stable: take-profit varies
// slowest, fee fastest.
func (g Grid) Policies() []risk.Policy {
	def := risk.Default()
	tps := orDefault(g.TakeProfitRates, def.TakeProfitRate)
	sls := orDefault(g.StopLossRates, def.StopLossRate)
	holds := orDefault(g.HoldPeriods, def.HoldPeriod)
	fees := orDefault(g.TransactionFees, def.TransactionFee)
	bal := g.InitialBalance
	if bal == 0 {
		bal = def.InitialBalance
	}

	out := make([]risk.Policy, 0, len(tps)*len(sls)*len(holds)*len(fees))
	for _, tp := range tps {
		for _, sl := range sls {
			for _, h := range holds {
				for _, f := range fees {
					out = append(out, risk.Policy{
						InitialBalance: bal,
						TakeProfitRate: tp,
						StopLossRate:   sl,
						HoldPeriod:     h,
						TransactionFee: f,
					})
				}
			}
		}
	}
	return out
}

func orDefault[T any](vals []T, def T) []T {
	if len(vals) == 0 {
		return []T{def}
	}
	return vals
}

type Options struct {
	// Workers bounds the number of runs in flight. Zero means GOMAXPROCS.
	Workers int

	Instrument string
	CloseAtEnd bool
	Log        *zap.Logger
}

// Outcome is one grid point and its run.
type Outcome struct {
	Index  int
	Policy risk.Policy
	Result backtest.Result
}

type Report struct {
	Outcomes []Outcome // in grid order
	Best     Outcome
}

// Run executes one risk-close run per policy. Cancelling ctx stops new
// runs from starting; a run that has started always completes. The first
// error (a bad policy or bad input) cancels the rest and is returned
// without a report.
func Run(ctx context.Context, series market.Series, signals []market.Signal, policies []risk.Policy, opts Options) (Report, error) {
	if len(policies) == 0 {
		return Report{}, errors.New("sweep: no policies")
	}
	log := logging.OrNop(opts.Log)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(policies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range policies {
		if gctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eng := backtest.NewEngine(backtest.RiskClose{Policy: p}, backtest.Options{
				Instrument: opts.Instrument,
				CloseAtEnd: opts.CloseAtEnd,
			}, nil)
			res, err := eng.Run(series, signals)
			if err != nil {
				return fmt.Errorf("sweep: run %d: %w", i, err)
			}
			outcomes[i] = Outcome{Index: i, Policy: p, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	// g.Wait only sees errors from started runs.
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep := Report{Outcomes: outcomes, Best: best(outcomes)}
	log.Info("sweep complete",
		zap.Int("runs", len(outcomes)),
		zap.Int("workers", workers),
		zap.Int("best_index", rep.Best.Index),
		zap.Float64("best_final_balance", rep.Best.Result.FinalBalance),
		zap.Float64("best_take_profit", rep.Best.Policy.TakeProfitRate),
		zap.Float64("best_stop_loss", rep.Best.Policy.StopLossRate),
		zap.Int("best_hold_period", rep.Best.Policy.HoldPeriod),
	)
	return rep, nil
}

// best picks the highest final balance; ties go to the lowest index.
func best(outcomes []Outcome) Outcome {
	b := outcomes[0]
	for _, o := range outcomes[1:] {
		if o.Result.FinalBalance > b.Result.FinalBalance {
			b = o
		}
	}
	return b
}

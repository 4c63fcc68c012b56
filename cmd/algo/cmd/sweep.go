package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iMarioChow/algo/journal"
	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/pkg/id"
	"github.com/iMarioChow/algo/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the risk variant over a grid of parameters",
	Long: `Run one risk-managed backtest per combination of take-profit,
stop-loss, hold period and fee, in parallel, and report the best final
balance. Interrupting stops runs that have not started yet.

Example:
  algo sweep --data meta.csv --tp 0.1,0.2,0.3 --sl 0.05,0.15 --hold 5,10,15 --workers 4`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var swFlags struct {
	data    string
	tps     []float64
	sls     []float64
	holds   []int
	fees    []float64
	balance float64
	workers int
	top     int
	db      string
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	f := sweepCmd.Flags()
	f.StringVar(&swFlags.data, "data", "", "CSV or Parquet file with closes and signals")
	f.Float64SliceVar(&swFlags.tps, "tp", nil, "take-profit rates")
	f.Float64SliceVar(&swFlags.sls, "sl", nil, "stop-loss rates")
	f.IntSliceVar(&swFlags.holds, "hold", nil, "hold periods")
	f.Float64SliceVar(&swFlags.fees, "fee", nil, "entry fee rates")
	f.Float64Var(&swFlags.balance, "balance", 1000, "initial balance")
	f.IntVar(&swFlags.workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	f.IntVar(&swFlags.top, "top", 10, "rows to print, best first (0 = all)")
	f.StringVar(&swFlags.db, "db", "", "record the best run in this SQLite journal")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("data") {
		cfg.Data.Path = swFlags.data
	}
	if f.Changed("tp") {
		cfg.Sweep.TakeProfitRates = swFlags.tps
	}
	if f.Changed("sl") {
		cfg.Sweep.StopLossRates = swFlags.sls
	}
	if f.Changed("hold") {
		cfg.Sweep.HoldPeriods = swFlags.holds
	}
	if f.Changed("fee") {
		cfg.Sweep.TransactionFees = swFlags.fees
	}
	if f.Changed("balance") {
		cfg.Account.Balance = swFlags.balance
	}
	if f.Changed("workers") {
		cfg.Sweep.Workers = swFlags.workers
	}
	if f.Changed("db") {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = swFlags.db
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Data.Path == "" {
		return fmt.Errorf("--data is required")
	}

	series, signals, err := market.Load(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	policies := cfg.SweepGrid().Policies()
	log.Info("sweep starting",
		zap.String("path", cfg.Data.Path),
		zap.Int("bars", len(series)),
		zap.Int("runs", len(policies)),
	)

	rep, err := sweep.Run(ctx, series, signals, policies, sweep.Options{
		Workers:    cfg.Sweep.Workers,
		Instrument: cfg.Account.Instrument,
		CloseAtEnd: cfg.Engine.CloseAtEnd,
		Log:        log,
	})
	if err != nil {
		return err
	}

	printSweep(cmd, rep, swFlags.top)

	// Only the best run is journaled.
	return recordRun(cmd, cfg, journal.FromResult(id.New(), cfg.Data.Path, rep.Best.Result))
}

func printSweep(cmd *cobra.Command, rep sweep.Report, top int) {
	rows := append([]sweep.Outcome(nil), rep.Outcomes...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Result.FinalBalance > rows[j].Result.FinalBalance
	})
	if top > 0 && top < len(rows) {
		rows = rows[:top]
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTP\tSL\tHOLD\tFEE\tTRADES\tFINAL\tMAX_DD%\tSHARPE")
	for _, o := range rows {
		p, s := o.Policy, o.Result.Stats
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%d\t%.4g\t%d\t%.2f\t%.2f\t%.4f\n",
			o.Index, p.TakeProfitRate, p.StopLossRate, p.HoldPeriod, p.TransactionFee,
			s.TradeCount, o.Result.FinalBalance, s.MaxDrawdownPct, s.SharpeRatio)
	}
	_ = w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\nBest: #%d final balance %.2f (%d runs)\n",
		rep.Best.Index, rep.Best.Result.FinalBalance, len(rep.Outcomes))
}

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iMarioChow/algo/backtest"
	"github.com/iMarioChow/algo/config"
	"github.com/iMarioChow/algo/journal"
	"github.com/iMarioChow/algo/market"
	"github.com/iMarioChow/algo/pkg/id"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one backtest over a price and signal file",
	Long: `Run the position simulator over a CSV or Parquet file of closes and
signals and print the result.

The signal variant holds one unit until the signal goes flat. The risk
variant sizes from the balance, pays a fee on entry and exits on
take-profit, stop-loss or after the hold period.

Examples:
  algo backtest --data meta.csv --variant signal
  algo backtest --data meta.csv --variant risk --tp 0.3 --sl 0.15 --hold 15 --db runs.sqlite`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var btFlags struct {
	data       string
	variant    string
	instrument string
	balance    float64
	tp, sl     float64
	hold       int
	fee        float64
	closeEnd   bool

	db        string
	csvTrades string
	csvEquity string
	orgDir    string
}

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVar(&btFlags.data, "data", "", "CSV or Parquet file with closes and signals")
	f.StringVar(&btFlags.variant, "variant", "risk", "close policy: signal|risk")
	f.StringVar(&btFlags.instrument, "instrument", "", "instrument name for reports")
	f.Float64Var(&btFlags.balance, "balance", 1000, "initial balance (risk variant)")
	f.Float64Var(&btFlags.tp, "tp", 0.3, "take-profit rate of the balance")
	f.Float64Var(&btFlags.sl, "sl", 0.15, "stop-loss rate of the balance")
	f.IntVar(&btFlags.hold, "hold", 15, "maximum bars a position is held")
	f.Float64Var(&btFlags.fee, "fee", 0.0004, "entry fee rate")
	f.BoolVar(&btFlags.closeEnd, "close-end", false, "close an open position on the last bar")
	f.StringVar(&btFlags.db, "db", "", "record the run in this SQLite journal")
	f.StringVar(&btFlags.csvTrades, "csv-trades", "", "write trades to this CSV file")
	f.StringVar(&btFlags.csvEquity, "csv-equity", "", "write the equity curve to this CSV file")
	f.StringVar(&btFlags.orgDir, "org", "", "write an Org summary of the run into this directory")
}

// applyBacktestFlags lets explicitly set flags override the config file.
func applyBacktestFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.Data.Path = btFlags.data
	}
	if f.Changed("variant") {
		cfg.Engine.Variant = btFlags.variant
	}
	if f.Changed("instrument") {
		cfg.Account.Instrument = btFlags.instrument
	}
	if f.Changed("balance") {
		cfg.Account.Balance = btFlags.balance
	}
	if f.Changed("tp") {
		cfg.Risk.TakeProfitRate = btFlags.tp
	}
	if f.Changed("sl") {
		cfg.Risk.StopLossRate = btFlags.sl
	}
	if f.Changed("hold") {
		cfg.Risk.HoldPeriod = btFlags.hold
	}
	if f.Changed("fee") {
		cfg.Risk.TransactionFee = btFlags.fee
	}
	if f.Changed("close-end") {
		cfg.Engine.CloseAtEnd = btFlags.closeEnd
	}
	if f.Changed("db") {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btFlags.db
	}
	if f.Changed("csv-trades") || f.Changed("csv-equity") {
		cfg.Journal.Type = "csv"
		cfg.Journal.TradesFile = btFlags.csvTrades
		cfg.Journal.EquityFile = btFlags.csvEquity
	}
	if f.Changed("org") {
		cfg.Journal.OrgDir = btFlags.orgDir
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyBacktestFlags(cmd, cfg)
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
	log.Info("data loaded",
		zap.String("path", cfg.Data.Path),
		zap.Int("bars", len(series)),
	)

	policy, err := backtest.PolicyByName(cfg.Engine.Variant, cfg.RiskPolicy())
	if err != nil {
		return err
	}
	eng := backtest.NewEngine(policy, backtest.Options{
		Instrument: cfg.Account.Instrument,
		CloseAtEnd: cfg.Engine.CloseAtEnd,
	}, log)

	res, err := eng.Run(series, signals)
	if err != nil {
		return err
	}
	backtest.PrintResult(cmd.OutOrStdout(), res)

	return recordRun(cmd, cfg, journal.FromResult(id.New(), cfg.Data.Path, res))
}

// recordRun stores r in the configured journal and Org directory.
func recordRun(cmd *cobra.Command, cfg *config.Config, r journal.Run) error {
	ctx := context.Background()

	var j journal.Journal
	switch cfg.Journal.Type {
	case "sqlite":
		s, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		j = s
	case "csv":
		c, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		j = c
	}

	if j != nil {
		defer j.Close()
		if err := j.RecordRun(ctx, r); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		log.Info("run recorded",
			zap.String("run_id", r.RunID),
			zap.String("journal", cfg.Journal.Type),
			zap.Int("trades", len(r.Trades)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Run ID:        %s\n", r.RunID)
	}

	if cfg.Journal.OrgDir != "" {
		path := filepath.Join(cfg.Journal.OrgDir, r.RunID+".org")
		if err := journal.WriteRunOrg(path, r); err != nil {
			return fmt.Errorf("write org: %w", err)
		}
		log.Info("org summary written", zap.String("path", path))
	}
	return nil
}

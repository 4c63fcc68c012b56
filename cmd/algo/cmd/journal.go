package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iMarioChow/algo/journal"
	"github.com/iMarioChow/algo/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded runs",
	Long: `Query runs recorded in the SQLite journal.

Subcommands:
  runs   - List recorded runs
  trades - Print the trades of a run as Org entries
  org    - Export a run summary as an Org block

Examples:
  algo journal runs
  algo journal trades 01HV3K9R6W9R5Q6Y0J8Q2N4T7M
  algo journal org 01HV3K9R6W9R5Q6Y0J8Q2N4T7M > run.org`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "Print the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalOrgCmd = &cobra.Command{
	Use:   "org <run-id>",
	Short: "Export a run as an Org block",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrg,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalOrgCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./algo.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(context.Background())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN_ID\tCREATED\tPOLICY\tINSTRUMENT\tBARS\tTRADES\tEND_BAL\tMAX_DD%\tSHARPE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.4f\n",
			r.RunID, r.Created.Format(time.RFC3339), r.Policy, r.Instrument, r.Bars,
			r.Stats.TradeCount, r.EndBalance, r.Stats.MaxDrawdownPct, r.Stats.SharpeRatio)
	}
	return w.Flush()
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := context.Background()
	runID := args[0]
	// Fail on unknown runs rather than printing nothing.
	if _, err := j.GetRun(ctx, runID); err != nil {
		return err
	}
	recs, err := j.ListTradesByRunID(ctx, runID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalOrg(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runID := args[0]
	if t, err := id.Time(runID); err == nil {
		log.Debug("exporting run", zap.String("run_id", runID), zap.Time("recorded", t))
	}

	out, err := j.ExportRunOrg(context.Background(), runID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

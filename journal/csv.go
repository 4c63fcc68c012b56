package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	csvTradeHeader = []string{
		"run_id", "trade_id", "seq", "instrument", "side", "units", "entry_idx", "exit_idx",
		"entry_price", "exit_price", "open_time", "close_time", "fee", "realized_pl", "max_dd_pct", "reason",
	}
	csvEquityHeader = []string{"run_id", "idx", "time", "price", "side", "balance", "equity"}
)

// CSV writes trades and equity snapshots of every recorded run to two
// files. Rows carry the run ID so several runs can share the files.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

var _ Journal = (*CSV)(nil)

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	j := &CSV{csv.NewWriter(tf), csv.NewWriter(ef), tf, ef}
	if err := j.trades.Write(csvTradeHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.equity.Write(csvEquityHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.flush(); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordRun(_ context.Context, r Run) error {
	for _, t := range r.Trades {
		err := j.trades.Write([]string{
			r.RunID,
			t.TradeID,
			strconv.Itoa(t.Seq),
			t.Instrument,
			t.Side,
			f(t.Units),
			strconv.Itoa(t.EntryIdx),
			strconv.Itoa(t.ExitIdx),
			f(t.EntryPrice),
			f(t.ExitPrice),
			ts(t.OpenTime),
			ts(t.CloseTime),
			f(t.Fee),
			f(t.RealizedPL),
			f(t.MaxDrawdownPct),
			t.Reason,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range r.Equity {
		err := j.equity.Write([]string{
			r.RunID,
			strconv.Itoa(e.Idx),
			ts(e.Time),
			f(e.Price),
			e.Side,
			f(e.Balance),
			f(e.Equity),
		})
		if err != nil {
			return err
		}
	}

	return j.flush()
}

func (j *CSV) flush() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	ferr := j.flush()
	terr := j.tf.Close()
	eerr := j.ef.Close()
	for _, err := range []error{ferr, terr, eerr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// ts leaves index-only bars without a timestamp.
func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run ID is not in the journal.
var ErrRunNotFound = errors.New("run not found")

type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run, its trades and its equity curve in one
// transaction. A run ID can only be recorded once.
func (j *SQLite) RecordRun(ctx context.Context, r Run) error {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("journal: encode params: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	s := r.Stats
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, instrument, policy, dataset, params, start_time, end_time, bars,
		 start_balance, end_balance, end_equity, fees, baseline_pl,
		 trade_count, wins, losses, win_rate, net_pl, profit_factor, max_dd_pct, sharpe)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Instrument, r.Policy, r.Dataset, string(params), r.Start, r.End, r.Bars,
		r.StartBalance, r.EndBalance, r.EndEquity, r.Fees, r.BaselinePL,
		s.TradeCount, s.Wins, s.Losses, s.WinRate, s.NetPL, s.ProfitFactor, s.MaxDrawdownPct, s.SharpeRatio,
	)
	if err != nil {
		return fmt.Errorf("journal: insert run %s: %w", r.RunID, err)
	}

	ts, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
		(trade_id, run_id, seq, instrument, side, units, entry_idx, exit_idx, entry_price, exit_price,
		 open_time, close_time, fee, realized_pl, max_dd_pct, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ts.Close()

	for _, t := range r.Trades {
		_, err := ts.ExecContext(ctx,
			t.TradeID, r.RunID, t.Seq, t.Instrument, t.Side, t.Units, t.EntryIdx, t.ExitIdx,
			t.EntryPrice, t.ExitPrice, t.OpenTime, t.CloseTime, t.Fee, t.RealizedPL, t.MaxDrawdownPct, t.Reason,
		)
		if err != nil {
			return fmt.Errorf("journal: insert trade %s: %w", t.TradeID, err)
		}
	}

	es, err := tx.PrepareContext(ctx, `
		INSERT INTO equity (run_id, idx, time, price, side, balance, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer es.Close()

	for _, e := range r.Equity {
		if _, err := es.ExecContext(ctx, r.RunID, e.Idx, e.Time, e.Price, e.Side, e.Balance, e.Equity); err != nil {
			return fmt.Errorf("journal: insert equity %s/%d: %w", r.RunID, e.Idx, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

const runColumns = `run_id, created, instrument, policy, dataset, params, start_time, end_time, bars,
	start_balance, end_balance, end_equity, fees, baseline_pl,
	trade_count, wins, losses, win_rate, net_pl, profit_factor, max_dd_pct, sharpe`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r      Run
		params string
	)
	err := sc.Scan(
		&r.RunID, &r.Created, &r.Instrument, &r.Policy, &r.Dataset, &params, &r.Start, &r.End, &r.Bars,
		&r.StartBalance, &r.EndBalance, &r.EndEquity, &r.Fees, &r.BaselinePL,
		&r.Stats.TradeCount, &r.Stats.Wins, &r.Stats.Losses, &r.Stats.WinRate, &r.Stats.NetPL,
		&r.Stats.ProfitFactor, &r.Stats.MaxDrawdownPct, &r.Stats.SharpeRatio,
	)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return Run{}, fmt.Errorf("journal: decode params of %s: %w", r.RunID, err)
	}
	r.Created = r.Created.UTC()
	r.Start = r.Start.UTC()
	r.End = r.End.UTC()
	return r, nil
}

// GetRun loads a run with its trades and equity curve.
func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("journal: %q: %w", runID, ErrRunNotFound)
		}
		return Run{}, err
	}

	if r.Trades, err = j.ListTradesByRunID(ctx, runID); err != nil {
		return Run{}, err
	}
	if r.Equity, err = j.ListEquityByRunID(ctx, runID); err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns run summaries, oldest first. Trades and Equity are not
// loaded.
func (j *SQLite) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created ASC, run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, run_id, seq, instrument, side, units, entry_idx, exit_idx, entry_price, exit_price,
		       open_time, close_time, fee, realized_pl, max_dd_pct, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Seq, &t.Instrument, &t.Side, &t.Units, &t.EntryIdx, &t.ExitIdx,
			&t.EntryPrice, &t.ExitPrice, &t.OpenTime, &t.CloseTime, &t.Fee, &t.RealizedPL,
			&t.MaxDrawdownPct, &t.Reason,
		); err != nil {
			return nil, err
		}
		t.OpenTime = t.OpenTime.UTC()
		t.CloseTime = t.CloseTime.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) ListEquityByRunID(ctx context.Context, runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, idx, time, price, side, balance, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			e  EquitySnapshot
			ts time.Time
		)
		if err := rows.Scan(&e.RunID, &e.Idx, &ts, &e.Price, &e.Side, &e.Balance, &e.Equity); err != nil {
			return nil, err
		}
		e.Time = ts.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportRunOrg loads a run and renders it as an Org block.
func (j *SQLite) ExportRunOrg(ctx context.Context, runID string) (string, error) {
	r, err := j.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return FormatRunOrg(r)
}

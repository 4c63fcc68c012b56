package journal

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	want := sampleRun("RUN1")
	require.NoError(t, j.RecordRun(ctx, want))

	got, err := j.GetRun(ctx, "RUN1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	older := sampleRun("B")
	newer := sampleRun("A")
	newer.Created = older.Created.Add(time.Hour)
	newer.Policy = "signal-close"

	require.NoError(t, j.RecordRun(ctx, newer))
	require.NoError(t, j.RecordRun(ctx, older))

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "B", runs[0].RunID)
	assert.Equal(t, "A", runs[1].RunID)
	assert.Equal(t, "signal-close", runs[1].Policy)
	assert.Nil(t, runs[0].Trades)
	assert.Nil(t, runs[0].Equity)
	assert.Equal(t, 1, runs[0].Stats.TradeCount)
}

func TestSQLiteListByRunID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordRun(ctx, sampleRun("R1")))
	require.NoError(t, j.RecordRun(ctx, sampleRun("R2")))

	trades, err := j.ListTradesByRunID(ctx, "R2")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "R2-0001", trades[0].TradeID)

	eq, err := j.ListEquityByRunID(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, eq, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{eq[0].Idx, eq[1].Idx, eq[2].Idx})

	none, err := j.ListTradesByRunID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteDuplicateRunRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordRun(ctx, sampleRun("DUP")))

	again := sampleRun("DUP")
	again.Trades[0].TradeID = "DUP-other"
	assert.Error(t, j.RecordRun(ctx, again))

	trades, err := j.ListTradesByRunID(ctx, "DUP")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "DUP-0001", trades[0].TradeID)
}

func TestSQLiteFailedTradeInsertLeavesNoRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	r := sampleRun("BAD")
	r.Trades = append(r.Trades, r.Trades[0]) // duplicate trade ID
	require.Error(t, j.RecordRun(ctx, r))

	_, err := j.GetRun(ctx, "BAD")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestSQLiteExportRunOrg(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordRun(ctx, sampleRun("ORG")))
	out, err := j.ExportRunOrg(ctx, "ORG")
	require.NoError(t, err)
	assert.Contains(t, out, ":RUN_ID:      ORG")
	assert.Contains(t, out, "HOLD_EXPIRED")
}

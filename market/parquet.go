package market

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

// BarRecord is the on-disk Parquet schema for one bar and its signal.
// A zero timestamp marks an index-only bar.
type BarRecord struct {
	Index     int64   `parquet:"index"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
	Signal    int32   `parquet:"signal"`
}

// WriteParquet stores a series and its aligned signals at path, creating
// parent directories as needed.
func WriteParquet(path string, s Series, signals []Signal) error {
	if len(signals) != 0 && len(signals) != len(s) {
		return fmt.Errorf("parquet: %d bars but %d signals", len(s), len(signals))
	}

	records := make([]BarRecord, len(s))
	for i, b := range s {
		rec := BarRecord{Index: int64(b.Index), Close: b.Close}
		if !b.Time.IsZero() {
			rec.Timestamp = b.Time.UnixMilli()
		}
		if len(signals) != 0 {
			rec.Signal = int32(signals[i])
		}
		records[i] = rec
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// LoadParquet reads a file written by WriteParquet.
func LoadParquet(path string) (Series, []Signal, error) {
	rows, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	series := make(Series, len(rows))
	signals := make([]Signal, len(rows))
	for i, r := range rows {
		b := Bar{Index: int(r.Index), Close: r.Close}
		if r.Timestamp != 0 {
			b.Time = time.UnixMilli(r.Timestamp).UTC()
		}
		if r.Signal < -128 || r.Signal > 127 {
			return nil, nil, fmt.Errorf("%s: row %d: signal %d out of range", path, i, r.Signal)
		}
		series[i] = b
		signals[i] = Signal(r.Signal)
	}

	if err := series.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, signals, nil
}

// Load picks the loader by file extension: .parquet, or CSV (optionally
// .xz or .lzma compressed) for anything else.
func Load(path string) (Series, []Signal, error) {
	if filepath.Ext(path) == ".parquet" {
		return LoadParquet(path)
	}
	return LoadCSV(path)
}

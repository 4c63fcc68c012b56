package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads a price file, decoding .xz and .lzma files on the fly.
// See ReadCSV for the accepted layout.
func LoadCSV(path string) (Series, []Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := decompress(path, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	s, sig, err := ReadCSV(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, sig, nil
}

// ReadCSV reads a header-driven CSV of daily or intraday closes:
//
//	Date,Open,High,Low,Close,Adj Close,Volume[,strategy]
//
// Only the time column (date, time or timestamp), close and an optional
// signal column (signal or strategy) are used; other columns are ignored.
// Times may be 2006-01-02, RFC3339 or RFC3339Nano. Without a signal column
// every signal is flat. Empty rows are skipped.
func ReadCSV(r io.Reader) (Series, []Signal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Series{}, []Signal{}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	timeCol, closeCol, sigCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "time", "timestamp", "datetime":
			timeCol = i
		case "close":
			closeCol = i
		case "signal", "strategy":
			sigCol = i
		}
	}
	if closeCol < 0 {
		return nil, nil, errors.New("csv: missing close column")
	}

	series := Series{}
	signals := []Signal{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		bar := Bar{Index: len(series)}
		if timeCol >= 0 {
			if timeCol >= len(row) {
				return nil, nil, fmt.Errorf("csv line %d: missing time", line)
			}
			t, err := parseTime(row[timeCol])
			if err != nil {
				return nil, nil, fmt.Errorf("csv line %d: %w", line, err)
			}
			bar.Time = t
		}

		if closeCol >= len(row) {
			return nil, nil, fmt.Errorf("csv line %d: missing close", line)
		}
		px, err := strconv.ParseFloat(strings.TrimSpace(row[closeCol]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("csv line %d: bad close %q: %w", line, row[closeCol], err)
		}
		bar.Close = px

		sig := SignalFlat
		if sigCol >= 0 && sigCol < len(row) {
			v, err := strconv.Atoi(strings.TrimSpace(row[sigCol]))
			if err != nil {
				return nil, nil, fmt.Errorf("csv line %d: bad signal %q: %w", line, row[sigCol], err)
			}
			if v < -128 || v > 127 {
				return nil, nil, fmt.Errorf("csv line %d: signal %d out of range", line, v)
			}
			sig = Signal(v)
		}

		series = append(series, bar)
		signals = append(signals, sig)
	}

	if err := series.Validate(); err != nil {
		return nil, nil, err
	}
	return series, signals, nil
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnorderedSeries is returned when bars are not strictly ordered.
var ErrUnorderedSeries = errors.New("series is not strictly ordered")

// Bar is one observation of the traded instrument: its position in the
// series, when it was observed and the closing price.
type Bar struct {
	Index int
	Time  time.Time
	Close float64
}

// Series is an ordered, immutable sequence of bars.
type Series []Bar

// NewSeries builds an index-only series from closing prices. Bars carry no
// timestamp.
func NewSeries(closes ...float64) Series {
	s := make(Series, len(closes))
	for i, c := range closes {
		s[i] = Bar{Index: i, Close: c}
	}
	return s
}

// Closes returns the closing prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Start returns the time of the first bar, or the zero time.
func (s Series) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Time
}

// End returns the time of the last bar, or the zero time.
func (s Series) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Time
}

// Validate checks that indices strictly increase and, when bars carry
// timestamps, that timestamps strictly increase as well.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1], s[i]
		if cur.Index <= prev.Index {
			return fmt.Errorf("bar %d: index %d after %d: %w", i, cur.Index, prev.Index, ErrUnorderedSeries)
		}
		if prev.Time.IsZero() && cur.Time.IsZero() {
			continue
		}
		if !cur.Time.After(prev.Time) {
			return fmt.Errorf("bar %d: time %s not after %s: %w",
				i, cur.Time.Format(time.RFC3339), prev.Time.Format(time.RFC3339), ErrUnorderedSeries)
		}
	}
	return nil
}

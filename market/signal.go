package market

import (
	"fmt"
	"math"
)

// Signal is the exposure a strategy wants for one bar.
type Signal int8

const (
	SignalShort Signal = -1
	SignalFlat  Signal = 0
	SignalLong  Signal = 1
)

// Valid reports whether s is one of -1, 0 or 1.
func (s Signal) Valid() bool {
	return s >= SignalShort && s <= SignalLong
}

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	case SignalFlat:
		return "flat"
	}
	return fmt.Sprintf("signal(%d)", int8(s))
}

// signalInvalid is what Signals stores for integers that do not fit in a
// Signal, so they stay rejectable by Valid instead of wrapping.
const signalInvalid Signal = math.MaxInt8

// Signals converts plain integers into a signal series without validating
// them. Validation belongs to whoever consumes the series; values outside
// the int8 range never wrap into a valid signal.
func Signals(vals ...int) []Signal {
	out := make([]Signal, len(vals))
	for i, v := range vals {
		if v < math.MinInt8 || v > math.MaxInt8 {
			out[i] = signalInvalid
			continue
		}
		out[i] = Signal(v)
	}
	return out
}

package backtest

import "math"

// Ledger is the ordered list of closed trades of a run.
type Ledger []Trade

func (l Ledger) PnLs() []float64 {
	out := make([]float64, len(l))
	for i, t := range l {
		out[i] = t.PnL
	}
	return out
}

func (l Ledger) Drawdowns() []float64 {
	out := make([]float64, len(l))
	for i, t := range l {
		out[i] = t.MaxDrawdownPct
	}
	return out
}

// drawdownTracker keeps the lowest and highest price seen since the open
// position was entered, entry and exit bars included.
type drawdownTracker struct {
	n        int
	min, max float64
}

func (d *drawdownTracker) reset() {
	*d = drawdownTracker{}
}

func (d *drawdownTracker) observe(price float64) {
	if d.n == 0 {
		d.min, d.max = price, price
	} else {
		d.min = math.Min(d.min, price)
		d.max = math.Max(d.max, price)
	}
	d.n++
}

// maxDrawdownPct is the worst move against the position in percent of
// entry: long trades look at the lowest price, short trades at the highest.
func (d *drawdownTracker) maxDrawdownPct(side Side, entry float64) float64 {
	if d.n == 0 || entry == 0 {
		return 0
	}
	var dd float64
	switch side {
	case Long:
		dd = (d.min - entry) / entry * 100
	case Short:
		dd = (entry - d.max) / entry * 100
	}
	return dd
}

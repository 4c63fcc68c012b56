package backtest

import "github.com/iMarioChow/algo/market"

// BuyAndHold is the unrealized P/L of one unit bought on the first bar and
// never sold: out[i] = close[i] - close[0].
func BuyAndHold(series market.Series) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	first := series[0].Close
	for i, b := range series {
		out[i] = b.Close - first
	}
	return out
}

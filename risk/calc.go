package risk

// Units sizes a position that commits the whole balance at price.
func Units(balance, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return balance / price
}

// EntryFee is the fee charged for committing balance to a new position.
func (p Policy) EntryFee(balance float64) float64 {
	return balance * p.TransactionFee
}

// Bands returns the take-profit and stop-loss amounts for a balance. The
// stop is returned as a positive amount; a position is stopped when its
// unrealized P/L is at or below -stop.
func (p Policy) Bands(balance float64) (take, stop float64) {
	return balance * p.TakeProfitRate, balance * p.StopLossRate
}

// UnrealizedPL is the open P/L of units opened at entry and marked at price.
// side is +1 for long and -1 for short.
func UnrealizedPL(side int, entry, price, units float64) float64 {
	return float64(side) * (price - entry) * units
}

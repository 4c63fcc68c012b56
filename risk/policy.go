package risk

// Policy holds the parameters of risk-managed exits: positions are sized
// from the whole balance, pay a fee on entry and close on a take-profit or
// stop-loss band or once they have been held long enough.
type Policy struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"` // e.g. 1000

	// Exit bands as fractions of the current balance.
	TakeProfitRate float64 `json:"take_profit_rate" yaml:"take_profit_rate"` // 0.3
	StopLossRate   float64 `json:"stop_loss_rate" yaml:"stop_loss_rate"`     // 0.15

	// HoldPeriod is the maximum number of bars a position stays open.
	HoldPeriod int `json:"hold_period" yaml:"hold_period"` // 15

	// TransactionFee is charged on the entry notional.
	TransactionFee float64 `json:"transaction_fee" yaml:"transaction_fee"` // 0.0004
}

// Default returns the parameters the double-RSI research used.
func Default() Policy {
	return Policy{
		InitialBalance: 1000,
		TakeProfitRate: 0.3,
		StopLossRate:   0.15,
		HoldPeriod:     15,
		TransactionFee: 0.0004,
	}
}

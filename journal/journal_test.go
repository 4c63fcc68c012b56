package journal

import (
	"time"

	"github.com/iMarioChow/algo/backtest"
	"github.com/iMarioChow/algo/risk"
)

var (
	day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day1 = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
)

func sampleRun(id string) Run {
	return Run{
		RunID:        id,
		Created:      time.Date(2024, 4, 1, 12, 30, 0, 0, time.UTC),
		Instrument:   "META",
		Policy:       "risk-close",
		Dataset:      "meta_daily.csv",
		Params:       risk.Default(),
		Start:        day0,
		End:          day2,
		Bars:         3,
		StartBalance: 1000,
		EndBalance:   1099.6,
		EndEquity:    1099.6,
		Fees:         0.4,
		BaselinePL:   10,
		Stats: backtest.Stats{
			TradeCount:     1,
			MaxDrawdownPct: -2.5,
			Wins:           1,
			WinRate:        1,
			NetPL:          100,
		},
		Trades: []TradeRecord{{
			TradeID:        id + "-0001",
			RunID:          id,
			Seq:            1,
			Instrument:     "META",
			Side:           "long",
			Units:          10,
			EntryIdx:       0,
			ExitIdx:        2,
			EntryPrice:     100,
			ExitPrice:      110,
			OpenTime:       day0,
			CloseTime:      day2,
			Fee:            0.4,
			RealizedPL:     100,
			MaxDrawdownPct: -2.5,
			Reason:         backtest.ReasonHoldExpired,
		}},
		Equity: []EquitySnapshot{
			{RunID: id, Idx: 0, Time: day0, Price: 100, Side: "long", Balance: 999.6, Equity: 999.6},
			{RunID: id, Idx: 1, Time: day1, Price: 97.5, Side: "long", Balance: 999.6, Equity: 974.6},
			{RunID: id, Idx: 2, Time: day2, Price: 110, Side: "flat", Balance: 1099.6, Equity: 1099.6},
		},
	}
}

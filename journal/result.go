package journal

import (
	"fmt"
	"time"

	"github.com/iMarioChow/algo/backtest"
)

// FromResult turns an engine result into a journal run. Trade IDs are the
// run ID followed by the 1-based trade sequence number.
func FromResult(runID, dataset string, res backtest.Result) Run {
	r := Run{
		RunID:        runID,
		Created:      time.Now().UTC(),
		Instrument:   res.Instrument,
		Policy:       res.Policy,
		Dataset:      dataset,
		Params:       res.Params,
		Start:        res.Start,
		End:          res.End,
		Bars:         len(res.Steps),
		StartBalance: res.StartBalance,
		EndBalance:   res.FinalBalance,
		EndEquity:    res.FinalEquity,
		Fees:         res.Fees,
		BaselinePL:   res.BaselineFinal(),
		Stats:        res.Stats,
		Trades:       make([]TradeRecord, len(res.Trades)),
		Equity:       make([]EquitySnapshot, len(res.Steps)),
	}

	for i, t := range res.Trades {
		seq := i + 1
		r.Trades[i] = TradeRecord{
			TradeID:        fmt.Sprintf("%s-%04d", runID, seq),
			RunID:          runID,
			Seq:            seq,
			Instrument:     res.Instrument,
			Side:           t.Side.String(),
			Units:          t.Units,
			EntryIdx:       t.EntryIdx,
			ExitIdx:        t.ExitIdx,
			EntryPrice:     t.EntryPrice,
			ExitPrice:      t.ExitPrice,
			OpenTime:       t.EntryTime,
			CloseTime:      t.ExitTime,
			Fee:            t.Fee,
			RealizedPL:     t.PnL,
			MaxDrawdownPct: t.MaxDrawdownPct,
			Reason:         t.Reason,
		}
	}

	for i, s := range res.Steps {
		r.Equity[i] = EquitySnapshot{
			RunID:   runID,
			Idx:     s.Index,
			Time:    s.Time,
			Price:   s.Price,
			Side:    s.Side.String(),
			Balance: s.Balance,
			Equity:  s.Equity,
		}
	}
	return r
}

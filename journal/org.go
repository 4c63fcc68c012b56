package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"
)

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "(n/a)"
		}
		return t.UTC().Format("2006-01-02")
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "(n/a)"
		}
		return t.Format("[2006-01-02 Mon 15:04]")
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run as an Org-mode block: facts in a PROPERTIES
// drawer, then the parameters, a performance summary and one row per trade.
func FormatRunOrg(r Run) (string, error) {
	var buf bytes.Buffer
	if err := runOrgTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("journal: render org: %w", err)
	}
	return buf.String(), nil
}

// WriteRunOrg renders r into path.
func WriteRunOrg(path string, r Run) error {
	s, err := FormatRunOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `* BACKTEST: {{.Policy}} {{if .Instrument}}{{.Instrument}}{{else}}(instrument?){{end}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:POLICY:      {{.Policy}}
:INSTRUMENT:  {{.Instrument}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:BARS:        {{.Bars}}
:START_BAL:   {{printf "%.2f" .StartBalance}}
:END_BAL:     {{printf "%.2f" .EndBalance}}
:NET_PL:      {{printf "%.2f" .Stats.NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .Stats.MaxDrawdownPct}}
:SHARPE:      {{printf "%.4f" .Stats.SharpeRatio}}
:TRADES:      {{.Stats.TradeCount}}
:WINS:        {{.Stats.Wins}}
:LOSSES:      {{.Stats.Losses}}
:WIN_RATE:    {{printf "%.2f" .Stats.WinRate}}
:CREATED:     {{stamp .Created}}
:END:

** Parameters
| Parameter       | Value |
|-----------------+-------|
{{- if eq .Params.HoldPeriod 0}}
| Exit            | signal flat |
{{- else}}
| Initial balance | {{printf "%.2f" .Params.InitialBalance}} |
| Take profit %   | {{printf "%.2f" (mul100 .Params.TakeProfitRate)}} |
| Stop loss %     | {{printf "%.2f" (mul100 .Params.StopLossRate)}} |
| Hold period     | {{.Params.HoldPeriod}} |
| Fee %           | {{printf "%.4f" (mul100 .Params.TransactionFee)}} |
{{- end}}

** Performance Summary
- Net P/L:          *{{printf "%.2f" .Stats.NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .Stats.MaxDrawdownPct}}%*
- Sharpe Ratio:     *{{printf "%.4f" .Stats.SharpeRatio}}*
- Win Rate:         *{{printf "%.2f" (mul100 .Stats.WinRate)}}%*
- Profit Factor:    *{{if ne .Stats.ProfitFactor 0.0}}{{printf "%.2f" .Stats.ProfitFactor}}{{else}}(n/a){{end}}*
- Fees:             *{{printf "%.2f" .Fees}}*
- Buy & Hold P/L:   *{{printf "%.2f" .BaselinePL}}*

** Trades
{{- if .Trades}}
| # | Side | Entry | Exit | P/L | DD % | Reason |
|---+------+-------+------+-----+------+--------|
{{- range .Trades}}
| {{.Seq}} | {{.Side}} | {{printf "%.4f" .EntryPrice}} | {{printf "%.4f" .ExitPrice}} | {{printf "%.2f" .RealizedPL}} | {{printf "%.2f" .MaxDrawdownPct}} | {{.Reason}} |
{{- end}}
{{- else}}
- none
{{- end}}
`

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in the PROPERTIES drawer, followed by empty
// Thesis/Execution/Review sections.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade %d: %s %s", t.Seq, t.Instrument, t.Side)
	open := t.OpenTime.UTC().Format(time.RFC3339)
	close := t.CloseTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":UNITS: %.4f\n", t.Units)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.5f\n", t.ExitPrice)
	fmt.Fprintf(&b, ":ENTRY_IDX: %d\n", t.EntryIdx)
	fmt.Fprintf(&b, ":EXIT_IDX: %d\n", t.ExitIdx)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", open)
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", close)
	fmt.Fprintf(&b, ":FEE: %.2f\n", t.Fee)
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPL)
	fmt.Fprintf(&b, ":MAX_DD_PCT: %.2f\n", t.MaxDrawdownPct)
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

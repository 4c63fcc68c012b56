package risk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is wrapped by every policy validation failure.
var ErrInvalidParameter = errors.New("invalid risk parameter")

type Violation struct {
	Code string
	Msg  string
}

func (v Violation) String() string {
	return v.Code + ": " + v.Msg
}

// Check lists every parameter that cannot drive a run. A zero fee is
// allowed; everything else must be strictly positive.
func (p Policy) Check() []Violation {
	var out []Violation
	add := func(code, msg string) {
		out = append(out, Violation{Code: code, Msg: msg})
	}

	if p.InitialBalance <= 0 {
		add("BALANCE", fmt.Sprintf("initial balance %.2f must be positive", p.InitialBalance))
	}
	if p.TakeProfitRate <= 0 {
		add("TAKE_PROFIT", fmt.Sprintf("take-profit rate %g must be positive", p.TakeProfitRate))
	}
	if p.StopLossRate <= 0 {
		add("STOP_LOSS", fmt.Sprintf("stop-loss rate %g must be positive", p.StopLossRate))
	}
	if p.HoldPeriod <= 0 {
		add("HOLD_PERIOD", fmt.Sprintf("hold period %d must be positive", p.HoldPeriod))
	}
	if p.TransactionFee < 0 || p.TransactionFee >= 1 {
		add("FEE", fmt.Sprintf("transaction fee %g must be in [0, 1)", p.TransactionFee))
	}
	return out
}

// Validate returns nil for a usable policy, otherwise an error wrapping
// ErrInvalidParameter that names every violation.
func (p Policy) Validate() error {
	vs := p.Check()
	if len(vs) == 0 {
		return nil
	}
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.String()
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(msgs, "; "))
}

package backtest

import (
	"time"

	"github.com/raykavin/trendscan/pkg/core"
)

// Trade is a closed round trip
type Trade struct {
	Side        core.SideType `json:"side"`
	EntryIndex  int           `json:"entryIndex"`
	EntryTime   time.Time     `json:"entryTime"`
	EntryPrice  float64       `json:"entryPrice"`
	ExitIndex   int           `json:"exitIndex"`
	ExitTime    time.Time     `json:"exitTime"`
	ExitPrice   float64       `json:"exitPrice"`
	PnLPercent  float64       `json:"pnlPercent"`
	PnLAbsolute float64       `json:"pnlAbsolute"`
	ForcedExit  bool          `json:"forcedExit"`
}

// Duration returns the time the position was held
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// IsWin reports a strictly positive result
func (t Trade) IsWin() bool { return t.PnLPercent > 0 }

// EquityPoint is the capital after one bar
type EquityPoint struct {
	Time    time.Time `json:"time"`
	Capital float64   `json:"capital"`
}

// Run is the full output of one backtest
type Run struct {
	Symbol         string        `json:"symbol"`
	InitialCapital float64       `json:"initialCapital"`
	FinalCapital   float64       `json:"finalCapital"`
	Trades         []Trade       `json:"trades"`
	Equity         []EquityPoint `json:"equity"`
}

// Returns lists the percentage result of every trade, in order
func (r *Run) Returns() []float64 {
	returns := make([]float64, len(r.Trades))
	for i, t := range r.Trades {
		returns[i] = t.PnLPercent
	}
	return returns
}

// Capitals lists the equity curve values, in order
func (r *Run) Capitals() []float64 {
	capitals := make([]float64, len(r.Equity))
	for i, p := range r.Equity {
		capitals[i] = p.Capital
	}
	return capitals
}

package backtest

import (
	"time"

	"github.com/raykavin/trendscan/pkg/core"
)

// Position is the single open position of a run
type Position struct {
	Side       core.SideType
	EntryIndex int
	EntryPrice float64
	EntryTime  time.Time
}

// IsOpen reports whether the position holds a side
func (p *Position) IsOpen() bool {
	return p.Side == core.SideLong || p.Side == core.SideShort
}

// Open enters side at the close of bar i
func (p *Position) Open(side core.SideType, i int, bar core.Bar) {
	p.Side = side
	p.EntryIndex = i
	p.EntryPrice = bar.Close
	p.EntryTime = bar.Time
}

// Close exits the position at the close of bar i. The trade's absolute result
// is computed from capital, the equity before the exit.
func (p *Position) Close(i int, bar core.Bar, capital float64, forced bool) Trade {
	trade := Trade{
		Side:       p.Side,
		EntryIndex: p.EntryIndex,
		EntryTime:  p.EntryTime,
		EntryPrice: p.EntryPrice,
		ExitIndex:  i,
		ExitTime:   bar.Time,
		ExitPrice:  bar.Close,
		ForcedExit: forced,
	}
	trade.PnLPercent = profitPercent(p.Side, p.EntryPrice, bar.Close)
	trade.PnLAbsolute = capital * trade.PnLPercent / 100

	*p = Position{Side: core.SideNone}
	return trade
}

func profitPercent(side core.SideType, entry, exit float64) float64 {
	if side == core.SideShort {
		return (entry - exit) / entry * 100
	}
	return (exit - entry) / entry * 100
}

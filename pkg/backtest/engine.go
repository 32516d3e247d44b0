package backtest

import (
	"fmt"

	"github.com/raykavin/trendscan/pkg/core"
)

// Mode decides what happens on the bar an opposite signal closes a position
type Mode string

const (
	// ModeFlip re-opens on the opposite side at the same close
	ModeFlip Mode = "flip"
	// ModeFlat stays out of the market until the next signal
	ModeFlat Mode = "flat"
)

// ParseMode converts a mode name into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFlip, "":
		return ModeFlip, nil
	case ModeFlat:
		return ModeFlat, nil
	default:
		return "", core.NewInvalidParameter("mode", s, "must be flip or flat")
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithMode selects flip or flat behaviour
func WithMode(mode Mode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithLongOnly ignores signals that would open a short
func WithLongOnly() Option {
	return func(e *Engine) {
		e.longOnly = true
	}
}

// Engine replays signals against closes, one position at a time, with
// capital compounding on every exit. It holds no state between runs.
type Engine struct {
	mode     Mode
	longOnly bool
}

// NewEngine creates an engine in flip mode unless configured otherwise
func NewEngine(options ...Option) *Engine {
	engine := &Engine{mode: ModeFlip}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Mode returns the configured mode
func (e *Engine) Mode() Mode { return e.mode }

// LongOnly reports whether shorts are disabled
func (e *Engine) LongOnly() bool { return e.longOnly }

// Run simulates the signals over the series starting from initialCapital.
// Entries and exits fill at the bar close. A position still open after the
// last bar is closed there and flagged as a forced exit.
func (e *Engine) Run(series core.PriceSeries, signals core.SignalFrame, initialCapital float64) (*Run, error) {
	if initialCapital <= 0 {
		return nil, core.NewInvalidParameter("initial_capital", initialCapital, "must be positive")
	}
	if series.Len() == 0 {
		return nil, &core.InsufficientDataError{Symbol: series.Symbol, Required: 1, Got: 0}
	}
	if err := signals.Validate(series.Len()); err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	run := &Run{
		Symbol:         series.Symbol,
		InitialCapital: initialCapital,
		Trades:         make([]Trade, 0),
		Equity:         make([]EquityPoint, 0, series.Len()),
	}

	capital := initialCapital
	position := Position{Side: core.SideNone}

	closeAt := func(i int, bar core.Bar, forced bool) {
		trade := position.Close(i, bar, capital, forced)
		capital *= 1 + trade.PnLPercent/100
		run.Trades = append(run.Trades, trade)
	}

	for i, bar := range series.Bars {
		buy, sell := signals.Buy[i], signals.Sell[i]

		switch {
		case position.Side == core.SideNone && buy:
			position.Open(core.SideLong, i, bar)

		case position.Side == core.SideNone && sell:
			if !e.longOnly {
				position.Open(core.SideShort, i, bar)
			}

		case position.Side == core.SideLong && sell:
			closeAt(i, bar, false)
			if e.mode == ModeFlip && !e.longOnly {
				position.Open(core.SideShort, i, bar)
			}

		case position.Side == core.SideShort && buy:
			closeAt(i, bar, false)
			if e.mode == ModeFlip {
				position.Open(core.SideLong, i, bar)
			}
		}

		if i == series.Len()-1 && position.IsOpen() {
			closeAt(i, bar, true)
		}

		run.Equity = append(run.Equity, EquityPoint{Time: bar.Time, Capital: capital})
	}

	run.FinalCapital = capital
	return run, nil
}

package strategy

import (
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
)

// Hybrid trades the confluence of the three Supertrend bands: buy when all
// bands turn bullish together, sell when all turn bearish.
type Hybrid struct {
	Bands [3]indicator.BandParams
}

func (h *Hybrid) Kind() Kind { return KindHybrid }

func (h *Hybrid) MinBars() int {
	minBars := defaultMinBars
	for _, band := range h.Bands {
		minBars = max(minBars, band.Lookback)
	}
	return minBars
}

func (h *Hybrid) Configure(cfg indicator.Config) indicator.Config {
	cfg.Bands = h.Bands
	return cfg
}

func (h *Hybrid) Evaluate(_ *core.Dataframe, frame *indicator.Frame) core.SignalFrame {
	signals := core.NewSignalFrame(frame.Len())

	for i := 1; i < frame.Len(); i++ {
		if !frame.BandsDefined(i-1) || !frame.BandsDefined(i) {
			continue
		}

		prev, curr := frame.Confluence[i-1], frame.Confluence[i]
		signals.Buy[i] = curr == core.Bullish && prev != core.Bullish
		signals.Sell[i] = curr == core.Bearish && prev != core.Bearish
	}

	return signals
}

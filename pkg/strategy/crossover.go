package strategy

import (
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
)

// CrossoverFastSlow trades the fast EMA crossing the slow EMA
type CrossoverFastSlow struct {
	Fast int
	Slow int
}

func (c *CrossoverFastSlow) Kind() Kind { return KindCrossoverFastSlow }

func (c *CrossoverFastSlow) MinBars() int {
	return max(defaultMinBars, c.Fast, c.Slow)
}

func (c *CrossoverFastSlow) Configure(cfg indicator.Config) indicator.Config {
	cfg.EMAFast = c.Fast
	cfg.EMASlow = c.Slow
	return cfg
}

func (c *CrossoverFastSlow) Evaluate(_ *core.Dataframe, frame *indicator.Frame) core.SignalFrame {
	// EMA cells before the seed hold partial means, not averages
	from := max(frame.Config.EMAFast, frame.Config.EMASlow)
	return crossSignals(frame.EMAFast, frame.EMASlow, from)
}

// CrossoverLong trades the medium SMA crossing the long SMA
type CrossoverLong struct {
	Medium int
	Long   int
}

func (c *CrossoverLong) Kind() Kind { return KindCrossoverLong }

func (c *CrossoverLong) MinBars() int {
	return max(longMinBars, c.Medium, c.Long)
}

func (c *CrossoverLong) Configure(cfg indicator.Config) indicator.Config {
	cfg.SMAMedium = c.Medium
	cfg.SMALong = c.Long
	return cfg
}

func (c *CrossoverLong) Evaluate(_ *core.Dataframe, frame *indicator.Frame) core.SignalFrame {
	return crossSignals(frame.SMAMedium, frame.SMALong, 1)
}

// crossSignals flags buys where fast crosses above slow and sells where it
// crosses below, starting at index from.
func crossSignals(fast, slow core.Series[float64], from int) core.SignalFrame {
	signals := core.NewSignalFrame(len(fast))

	for i := max(from, 1); i < len(fast); i++ {
		if !core.DefinedAt([]int{i - 1, i}, fast, slow) {
			continue
		}
		signals.Buy[i] = fast.CrossoverAt(slow, i)
		signals.Sell[i] = fast.CrossunderAt(slow, i)
	}

	return signals
}

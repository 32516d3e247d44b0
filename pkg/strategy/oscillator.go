package strategy

import (
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
)

// OscillatorReversal buys when the RSI leaves the oversold zone and sells when
// it leaves the overbought zone.
type OscillatorReversal struct {
	Period int
	Lower  float64
	Upper  float64
}

func (o *OscillatorReversal) Kind() Kind { return KindOscillatorReversal }

func (o *OscillatorReversal) MinBars() int {
	return max(defaultMinBars, o.Period+1)
}

func (o *OscillatorReversal) Configure(cfg indicator.Config) indicator.Config {
	cfg.RSIPeriod = o.Period
	return cfg
}

func (o *OscillatorReversal) Evaluate(_ *core.Dataframe, frame *indicator.Frame) core.SignalFrame {
	signals := core.NewSignalFrame(frame.Len())
	rsi := frame.RSI

	// the first computed oscillator value sits at index period
	for i := frame.Config.RSIPeriod + 1; i < len(rsi); i++ {
		if !core.DefinedAt([]int{i - 1, i}, rsi) {
			continue
		}

		signals.Buy[i] = rsi[i-1] <= o.Lower && rsi[i] > o.Lower
		signals.Sell[i] = rsi[i-1] >= o.Upper && rsi[i] < o.Upper
	}

	return signals
}

package indicator

import "github.com/raykavin/trendscan/pkg/core"

// BandParams configures one Supertrend band
type BandParams struct {
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
	Lookback   int     `mapstructure:"lookback" json:"lookback"`
}

// Validate rejects non-positive multipliers and lookbacks
func (p BandParams) Validate(name string) error {
	if p.Multiplier <= 0 {
		return core.NewInvalidParameter(name+".multiplier", p.Multiplier, "must be positive")
	}
	if p.Lookback < 1 {
		return core.NewInvalidParameter(name+".lookback", p.Lookback, "must be at least 1")
	}
	return nil
}

// Band is a Supertrend overlay: ratcheting upper/lower bands, the trend line
// that follows one of them and the directional state per index.
type Band struct {
	Params    BandParams
	Upper     core.Series[float64]
	Lower     core.Series[float64]
	Line      core.Series[float64]
	Direction []core.Direction
}

// Start returns the first index holding a defined value
func (b Band) Start() int {
	return max(1, b.Params.Lookback-1)
}

// SuperTrend calculates a Supertrend band based on high, low and close prices.
// Index 0 and every index before the ATR warms up are undefined and neutral.
func SuperTrend(high, low, close []float64, params BandParams) Band {
	length := len(close)
	band := Band{
		Params:    params,
		Upper:     core.NewUndefinedSeries(length),
		Lower:     core.NewUndefinedSeries(length),
		Line:      core.NewUndefinedSeries(length),
		Direction: make([]core.Direction, length),
	}

	if params.Multiplier <= 0 || params.Lookback < 1 {
		return band
	}

	atr := ATR(high, low, close, params.Lookback)
	start := band.Start()

	for i := start; i < length; i++ {
		median := (high[i] + low[i]) / 2.0
		basicUpper := median + atr[i]*params.Multiplier
		basicLower := median - atr[i]*params.Multiplier

		if i == start {
			band.Upper[i] = basicUpper
			band.Lower[i] = basicLower
			if close[i] >= median {
				band.Direction[i] = core.Bullish
			} else {
				band.Direction[i] = core.Bearish
			}
			band.Line[i] = band.lineAt(i)
			continue
		}

		// Final upper band only moves down, unless price closed above it
		if basicUpper < band.Upper[i-1] || close[i-1] > band.Upper[i-1] {
			band.Upper[i] = basicUpper
		} else {
			band.Upper[i] = band.Upper[i-1]
		}

		// Final lower band only moves up, unless price closed below it
		if basicLower > band.Lower[i-1] || close[i-1] < band.Lower[i-1] {
			band.Lower[i] = basicLower
		} else {
			band.Lower[i] = band.Lower[i-1]
		}

		switch prev := band.Direction[i-1]; {
		case prev == core.Bullish && close[i] < band.Lower[i]:
			band.Direction[i] = core.Bearish
		case prev == core.Bearish && close[i] > band.Upper[i]:
			band.Direction[i] = core.Bullish
		default:
			band.Direction[i] = prev
		}

		band.Line[i] = band.lineAt(i)
	}

	return band
}

func (b Band) lineAt(i int) float64 {
	if b.Direction[i] == core.Bullish {
		return b.Lower[i]
	}
	return b.Upper[i]
}

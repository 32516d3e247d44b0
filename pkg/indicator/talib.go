package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/raykavin/trendscan/pkg/core"
)

// ------------------------------------------
// Moving averages
// ------------------------------------------

// SMA calculates the Simple Moving Average.
// Cells before index period-1 are undefined.
func SMA(input []float64, period int) core.Series[float64] {
	if period < 1 || len(input) < period {
		return core.NewUndefinedSeries(len(input))
	}

	out := core.Series[float64](talib.Sma(input, period))
	for i := 0; i < period-1; i++ {
		out[i] = core.Undefined
	}
	return out
}

// EMA calculates the Exponential Moving Average with multiplier 2/(period+1),
// seeded with the simple mean of the first period values.
//
// Cells before index period-1 hold the widening mean of the values seen so far,
// so the series has no gap before warm-up, as charting packages draw it.
func EMA(input []float64, period int) core.Series[float64] {
	if period < 1 || len(input) == 0 {
		return core.NewUndefinedSeries(len(input))
	}

	var out core.Series[float64]
	if len(input) >= period {
		out = talib.Ema(input, period)
	} else {
		out = make(core.Series[float64], len(input))
	}

	sum := 0.0
	for i := 0; i < period-1 && i < len(input); i++ {
		sum += input[i]
		out[i] = sum / float64(i+1)
	}
	return out
}

// ------------------------------------------
// Volatility
// ------------------------------------------

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|)
func TrueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

// TrueRanges calculates the true range of every bar. The first bar has no
// previous close and uses high-low.
func TrueRanges(high, low, close []float64) core.Series[float64] {
	if len(close) == 0 {
		return core.Series[float64]{}
	}

	out := core.Series[float64](talib.TRange(high, low, close))
	out[0] = high[0] - low[0]
	return out
}

// WilderAverage smooths values with Wilder's method: the seed at index
// period-1 is the simple mean of the first period values, then
// avg[i] = (avg[i-1]*(period-1) + value[i]) / period.
func WilderAverage(input []float64, period int) core.Series[float64] {
	out := core.NewUndefinedSeries(len(input))
	if period < 1 || len(input) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += input[i]
	}
	out[period-1] = sum / float64(period)

	for i := period; i < len(input); i++ {
		out[i] = (out[i-1]*float64(period-1) + input[i]) / float64(period)
	}
	return out
}

// ATR calculates the Average True Range with Wilder smoothing
func ATR(high, low, close []float64, period int) core.Series[float64] {
	return WilderAverage(TrueRanges(high, low, close), period)
}

package indicator

import "github.com/raykavin/trendscan/pkg/core"

// RSINeutral is reported for cells before the oscillator has warmed up
const RSINeutral = 50.0

// RSI calculates a Wilder-smoothed relative strength oscillator over close
// prices: 100 - 100/(1+avgGain/avgLoss), with 100 when avgLoss is zero.
// The first period cells are fixed at RSINeutral.
func RSI(closes []float64, period int) core.Series[float64] {
	out := make(core.Series[float64], len(closes))
	for i := range out {
		out[i] = RSINeutral
	}

	if period < 1 || len(closes) <= period {
		return out
	}

	// changes[k] is the move into bar k+1
	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain := WilderAverage(gains, period)
	avgLoss := WilderAverage(losses, period)

	for k := period - 1; k < len(gains); k++ {
		out[k+1] = oscillator(avgGain[k], avgLoss[k])
	}
	return out
}

func oscillator(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

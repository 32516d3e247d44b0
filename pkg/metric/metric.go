package metric

import (
	"math"

	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// TradingDays annualises the per-trade sharpe-like ratio
const TradingDays = 252

// Options tunes which trades feed the trade statistics
type Options struct {
	// ExcludeForcedExits drops trades closed only because the series ended.
	// Equity statistics always use the full curve.
	ExcludeForcedExits bool
}

// Summary holds the performance statistics of one run
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	ForcedExits   int

	WinRate     float64
	TotalReturn float64
	MaxDrawdown float64
	SharpeLike  float64

	AverageReturn float64
	Payoff        float64
	ProfitFactor  float64
	SQN           float64
	BestTrade     float64
	WorstTrade    float64
}

// Summarize computes the statistics of a completed run
func Summarize(run *backtest.Run, opts Options) Summary {
	forced := lo.CountBy(run.Trades, func(t backtest.Trade) bool { return t.ForcedExit })

	trades := run.Trades
	if opts.ExcludeForcedExits {
		trades = lo.Filter(trades, func(t backtest.Trade, _ int) bool { return !t.ForcedExit })
	}
	returns := lo.Map(trades, func(t backtest.Trade, _ int) float64 { return t.PnLPercent })

	summary := Summary{
		TotalTrades:   len(returns),
		WinningTrades: lo.CountBy(returns, func(r float64) bool { return r > 0 }),
		ForcedExits:   forced,
		TotalReturn:   TotalReturn(run.InitialCapital, run.FinalCapital),
		MaxDrawdown:   MaxDrawdown(run.Capitals()),
		SharpeLike:    SharpeLike(returns),
		AverageReturn: Mean(returns),
		Payoff:        Payoff(returns),
		ProfitFactor:  ProfitFactor(returns),
		SQN:           SQN(returns),
	}
	summary.LosingTrades = summary.TotalTrades - summary.WinningTrades

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
		summary.BestTrade = lo.Max(returns)
		summary.WorstTrade = lo.Min(returns)
	}

	return summary
}

// TotalReturn is the percentage change from initial to final capital
func TotalReturn(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial * 100
}

// MaxDrawdown returns the largest peak-to-trough decline of the curve in percent.
// The running peak includes the current point, so the result is within [0, 100].
func MaxDrawdown(curve []float64) float64 {
	peak, drawdown := 0.0, 0.0
	for _, value := range curve {
		peak = math.Max(peak, value)
		if peak <= 0 {
			continue
		}
		drawdown = math.Max(drawdown, (peak-value)/peak*100)
	}
	return drawdown
}

// SharpeLike is mean/stddev of per-trade returns scaled by sqrt(TradingDays).
// It is zero with fewer than two trades or no dispersion.
func SharpeLike(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * math.Sqrt(TradingDays)
}

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Payoff calculates the ratio of the average win to the average loss.
// Zero when there are no wins or no losses.
func Payoff(values []float64) float64 {
	wins, losses := partitionTradeResults(values)
	if len(wins) == 0 || len(losses) == 0 {
		return 0
	}

	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 0
	}

	return stat.Mean(wins, nil) / avgLoss
}

// ProfitFactor calculates the ratio of gross profits to gross losses.
// Zero when there are no losses.
func ProfitFactor(values []float64) float64 {
	wins, losses := partitionTradeResults(values)

	grossLoss := lo.Sum(losses)
	if grossLoss == 0 {
		return 0
	}

	return lo.Sum(wins) / grossLoss
}

// SQN (System Quality Number) = sqrt(n) * mean / stddev
func SQN(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return math.Sqrt(float64(len(values))) * mean / std
}

// partitionTradeResults separates results into wins and absolute losses.
// A flat trade counts as a loss.
func partitionTradeResults(values []float64) (wins []float64, losses []float64) {
	for _, value := range values {
		if value > 0 {
			wins = append(wins, value)
		} else {
			losses = append(losses, math.Abs(value))
		}
	}
	return wins, losses
}

package metric

import (
	"math"
	"testing"
	"time"

	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(initial float64, capitals []float64, returns ...float64) *backtest.Run {
	run := &backtest.Run{InitialCapital: initial, FinalCapital: capitals[len(capitals)-1]}
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range capitals {
		run.Equity = append(run.Equity, backtest.EquityPoint{Time: t.AddDate(0, 0, i), Capital: c})
	}
	for _, r := range returns {
		run.Trades = append(run.Trades, backtest.Trade{Side: core.SideLong, PnLPercent: r})
	}
	return run
}

func TestSummarize(t *testing.T) {
	run := runWith(1000, []float64{1000, 1100, 990, 1089}, 10, -10, 10)

	summary := Summarize(run, Options{})

	assert.Equal(t, 3, summary.TotalTrades)
	assert.Equal(t, 2, summary.WinningTrades)
	assert.Equal(t, 1, summary.LosingTrades)
	assert.InDelta(t, 66.666, summary.WinRate, 1e-2)
	assert.InDelta(t, 8.9, summary.TotalReturn, 1e-9)
	assert.InDelta(t, 10.0, summary.MaxDrawdown, 1e-9)
	assert.Equal(t, 10.0, summary.BestTrade)
	assert.Equal(t, -10.0, summary.WorstTrade)
	assert.InDelta(t, 10.0/3, summary.AverageReturn, 1e-9)
	assert.InDelta(t, 1.0, summary.Payoff, 1e-9)
	assert.InDelta(t, 2.0, summary.ProfitFactor, 1e-9)

	// mean 10/3, sample stddev sqrt(400/3)
	want := (10.0 / 3) / math.Sqrt(400.0/3) * math.Sqrt(252)
	assert.InDelta(t, want, summary.SharpeLike, 1e-9)
}

func TestSummarize_NoTrades(t *testing.T) {
	summary := Summarize(runWith(1000, []float64{1000, 1000, 1000}), Options{})

	assert.Zero(t, summary.TotalTrades)
	assert.Zero(t, summary.WinRate)
	assert.Zero(t, summary.TotalReturn)
	assert.Zero(t, summary.MaxDrawdown)
	assert.Zero(t, summary.SharpeLike)
	assert.Zero(t, summary.Payoff)
	assert.Zero(t, summary.ProfitFactor)
}

func TestSummarize_ExcludeForcedExits(t *testing.T) {
	run := runWith(1000, []float64{1000, 1050, 1000}, 5, -4.7619)
	run.Trades[1].ForcedExit = true

	all := Summarize(run, Options{})
	assert.Equal(t, 2, all.TotalTrades)
	assert.Equal(t, 1, all.ForcedExits)

	closed := Summarize(run, Options{ExcludeForcedExits: true})
	assert.Equal(t, 1, closed.TotalTrades)
	assert.Equal(t, 1, closed.WinningTrades)
	assert.Equal(t, 100.0, closed.WinRate)
	assert.Equal(t, 1, closed.ForcedExits)

	// equity statistics ignore the exclusion
	assert.Equal(t, all.TotalReturn, closed.TotalReturn)
	assert.Equal(t, all.MaxDrawdown, closed.MaxDrawdown)
}

func TestSummarize_FlatTradeIsLoss(t *testing.T) {
	summary := Summarize(runWith(1000, []float64{1000, 1000}, 0), Options{})
	assert.Equal(t, 0, summary.WinningTrades)
	assert.Equal(t, 1, summary.LosingTrades)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		curve []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{100, 110, 120}, 0},
		{"single dip", []float64{100, 80, 120}, 20},
		{"deeper later", []float64{100, 90, 200, 100}, 50},
		{"zero peak", []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.curve)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestSharpeLike(t *testing.T) {
	assert.Zero(t, SharpeLike(nil))
	assert.Zero(t, SharpeLike([]float64{5}))
	assert.Zero(t, SharpeLike([]float64{2, 2, 2}))
	assert.Greater(t, SharpeLike([]float64{1, 3}), 0.0)
	assert.Less(t, SharpeLike([]float64{-1, -3}), 0.0)
}

func TestPayoffAndProfitFactor(t *testing.T) {
	require.Zero(t, Payoff([]float64{1, 2}))
	require.Zero(t, ProfitFactor([]float64{1, 2}))

	assert.InDelta(t, 2.0, Payoff([]float64{4, -2}), 1e-9)
	assert.InDelta(t, 3.0, ProfitFactor([]float64{4, 2, -2}), 1e-9)
}

func TestSQN(t *testing.T) {
	assert.Zero(t, SQN([]float64{1}))
	assert.InDelta(t, math.Sqrt(2)*2/math.Sqrt(2), SQN([]float64{1, 3}), 1e-9)
}

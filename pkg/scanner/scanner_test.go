package scanner

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSeries(symbol string, bars int, amplitude float64) core.PriceSeries {
	out := make([]core.Bar, bars)
	t := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	prev := 200.0
	for i := range out {
		price := 200 + amplitude*math.Sin(float64(i)/12)
		out[i] = core.Bar{
			Time:   t.AddDate(0, 0, i),
			Open:   prev,
			High:   math.Max(prev, price) + 1,
			Low:    math.Min(prev, price) - 1,
			Close:  price,
			Volume: 500,
		}
		prev = price
	}
	return core.NewPriceSeries(symbol, out)
}

func TestDedupe(t *testing.T) {
	input := []core.PriceSeries{
		{Symbol: "A"}, {Symbol: "B"}, {Symbol: "A", Bars: make([]core.Bar, 3)}, {Symbol: "C"}, {Symbol: "D"}, {Symbol: "C"},
	}

	unique := dedupe(input)
	symbols := make([]string, len(unique))
	for i, ps := range unique {
		symbols[i] = ps.Symbol
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, symbols)
	assert.Zero(t, unique[0].Len(), "first series of a symbol wins")
}

func TestScan(t *testing.T) {
	series := []core.PriceSeries{
		buildSeries("AAA", 260, 30),
		buildSeries("BBB", 260, 15),
		buildSeries("AAA", 100, 5),
		buildSeries("CCC", 80, 20),
	}
	kinds := []strategy.Kind{strategy.KindHybrid, strategy.KindCrossoverLong}
	require.Equal(t, 6, Tasks(series, kinds...))

	var done atomic.Int32
	s := New(trendscan.NewAnalyzer(),
		WithParallelism(4),
		WithProgress(func(Outcome) { done.Add(1) }),
	)

	outcomes, err := s.Scan(context.Background(), series, trendscan.DefaultRequest(), kinds...)
	require.NoError(t, err)
	require.Len(t, outcomes, 6)
	assert.EqualValues(t, 6, done.Load())

	assert.Equal(t, "AAA", outcomes[0].Symbol)
	assert.Equal(t, strategy.KindHybrid, outcomes[0].Strategy)
	assert.Equal(t, strategy.KindCrossoverLong, outcomes[1].Strategy)
	assert.Equal(t, "CCC", outcomes[4].Symbol)

	// the first AAA series is kept
	assert.Len(t, outcomes[0].Result.EquityCurve, 260)

	// CCC is too short for the long crossover only
	require.NoError(t, outcomes[4].Err)
	assert.True(t, outcomes[5].IsInsufficientData())

	failed := Failed(outcomes)
	require.Len(t, failed, 1)
	assert.Equal(t, "CCC", failed[0].Symbol)

	ranked := Rank(outcomes)
	require.Len(t, ranked, 5)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Result.TotalReturn, ranked[i].Result.TotalReturn)
	}
}

func TestScan_MatchesSequentialAnalysis(t *testing.T) {
	series := []core.PriceSeries{buildSeries("AAA", 120, 25), buildSeries("BBB", 120, 10)}
	analyzer := trendscan.NewAnalyzer()

	parallel, err := New(analyzer, WithParallelism(8)).Scan(context.Background(), series, trendscan.DefaultRequest())
	require.NoError(t, err)
	sequential, err := New(analyzer).Scan(context.Background(), series, trendscan.DefaultRequest())
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(trendscan.NewAnalyzer()).Scan(ctx, []core.PriceSeries{buildSeries("AAA", 120, 25)}, trendscan.DefaultRequest())
	require.ErrorIs(t, err, context.Canceled)
}

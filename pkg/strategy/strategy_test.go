package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDataframe(start float64, steps ...float64) *core.Dataframe {
	bars := make([]core.Bar, 0, len(steps)+1)
	price := start
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars = append(bars, core.Bar{Time: t, Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 1000})
	for i, step := range steps {
		prev := price
		price += step
		bars = append(bars, core.Bar{
			Time:   t.AddDate(0, 0, i+1),
			Open:   prev,
			High:   math.Max(prev, price) + 1,
			Low:    math.Min(prev, price) - 1,
			Close:  price,
			Volume: 1000,
		})
	}
	return core.NewDataframe(core.NewPriceSeries("TEST", bars))
}

func steps(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func evaluate(t *testing.T, s Strategy, df *core.Dataframe) (core.SignalFrame, *indicator.Frame) {
	t.Helper()
	frame, err := indicator.NewFrame(df, s.Configure(indicator.DefaultConfig()))
	require.NoError(t, err)

	signals := s.Evaluate(df, frame)
	require.NoError(t, signals.Validate(df.Len()))
	return signals, frame
}

func indexes(flags []bool) []int {
	var out []int
	for i, f := range flags {
		if f {
			out = append(out, i)
		}
	}
	return out
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"hybrid", KindHybrid},
		{"crossover_fast_slow", KindCrossoverFastSlow},
		{" Oscillator_Reversal ", KindOscillatorReversal},
		{"crossover_long", KindCrossoverLong},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	_, err := ParseKind("macd")
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds() {
		s, err := New(kind, Overrides{})
		require.NoError(t, err)
		assert.Equal(t, kind, s.Kind())
	}

	_, err := New(Kind("unknown"), Overrides{})
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestMinBars(t *testing.T) {
	tests := []struct {
		kind      Kind
		overrides Overrides
		want      int
	}{
		{KindHybrid, Overrides{}, 50},
		{KindCrossoverFastSlow, Overrides{}, 50},
		{KindCrossoverFastSlow, Overrides{SlowPeriod: 80}, 80},
		{KindOscillatorReversal, Overrides{}, 50},
		{KindCrossoverLong, Overrides{}, 200},
		{KindCrossoverLong, Overrides{LongPeriod: 250}, 250},
	}
	for _, tt := range tests {
		s, err := New(tt.kind, tt.overrides)
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.MinBars(), tt.kind)
	}
}

func TestNewFromConfig(t *testing.T) {
	base := indicator.DefaultConfig()
	base.Bands[indicator.Tight] = indicator.BandParams{Multiplier: 0.5, Lookback: 3}
	base.EMAFast, base.EMASlow = 3, 5

	hybrid, err := NewFromConfig(KindHybrid, Overrides{}, base)
	require.NoError(t, err)
	assert.Equal(t, base.Bands, hybrid.Configure(indicator.DefaultConfig()).Bands)

	cross, err := NewFromConfig(KindCrossoverFastSlow, Overrides{SlowPeriod: 8}, base)
	require.NoError(t, err)
	cfg := cross.Configure(indicator.DefaultConfig())
	assert.Equal(t, 3, cfg.EMAFast)
	assert.Equal(t, 8, cfg.EMASlow)
}

func TestOverrides_Validate(t *testing.T) {
	require.NoError(t, Overrides{}.Validate())
	require.NoError(t, Overrides{RSILower: 20, RSIUpper: 80}.Validate())

	invalid := []Overrides{
		{FastPeriod: -1},
		{RSILower: 120},
		{RSILower: 80},
		{RSILower: 40, RSIUpper: 35},
	}
	for _, o := range invalid {
		assert.ErrorIs(t, o.Validate(), core.ErrInvalidParameter, "%+v", o)
	}
}

func TestOverrides_Apply(t *testing.T) {
	cfg := Overrides{FastPeriod: 5, LongPeriod: 100}.Apply(indicator.DefaultConfig())
	assert.Equal(t, 5, cfg.EMAFast)
	assert.Equal(t, 21, cfg.EMASlow)
	assert.Equal(t, 50, cfg.SMAMedium)
	assert.Equal(t, 100, cfg.SMALong)
}

func TestOverridesFromParams(t *testing.T) {
	o, err := OverridesFromParams(map[string]any{
		ParamFast:     12,
		ParamSlow:     26.0,
		ParamRSILower: 25,
		ParamRSIUpper: 75.5,
	})
	require.NoError(t, err)
	assert.Equal(t, Overrides{FastPeriod: 12, SlowPeriod: 26, RSILower: 25, RSIUpper: 75.5}, o)

	_, err = OverridesFromParams(map[string]any{"unknown": 1})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = OverridesFromParams(map[string]any{ParamFast: 2.5})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = OverridesFromParams(map[string]any{ParamSlow: "26"})
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestConfigure_OnlyTouchesOwnHorizons(t *testing.T) {
	base := indicator.DefaultConfig()

	s, err := New(KindCrossoverFastSlow, Overrides{FastPeriod: 5, SlowPeriod: 13, LongPeriod: 100})
	require.NoError(t, err)
	cfg := s.Configure(base)
	assert.Equal(t, 5, cfg.EMAFast)
	assert.Equal(t, 13, cfg.EMASlow)
	assert.Equal(t, base.SMALong, cfg.SMALong)
}

func TestHybrid_Evaluate(t *testing.T) {
	df := buildDataframe(200, concat(steps(2, 40), steps(-2, 40), steps(2, 40))...)
	s, err := New(KindHybrid, Overrides{})
	require.NoError(t, err)

	signals, frame := evaluate(t, s, df)

	buys, sells := indexes(signals.Buy), indexes(signals.Sell)
	require.Len(t, sells, 1)
	require.Len(t, buys, 1)
	assert.Greater(t, sells[0], 40)
	assert.Greater(t, buys[0], sells[0])

	assert.Equal(t, core.Bearish, frame.Confluence[sells[0]])
	assert.NotEqual(t, core.Bearish, frame.Confluence[sells[0]-1])
	assert.Equal(t, core.Bullish, frame.Confluence[buys[0]])
}

func TestHybrid_NoSignalAtWarmup(t *testing.T) {
	df := buildDataframe(100, steps(2, 60)...)
	s, err := New(KindHybrid, Overrides{})
	require.NoError(t, err)

	signals, frame := evaluate(t, s, df)

	// confluence turns bullish at the warm-up boundary, which is not a transition
	assert.Equal(t, core.Bullish, frame.Confluence[frame.Warmup()])
	b, sl := signals.Count()
	assert.Zero(t, b)
	assert.Zero(t, sl)
}

func TestCrossoverFastSlow_Evaluate(t *testing.T) {
	df := buildDataframe(200, concat(steps(-1, 60), steps(1, 60))...)
	s, err := New(KindCrossoverFastSlow, Overrides{})
	require.NoError(t, err)

	signals, frame := evaluate(t, s, df)

	buys := indexes(signals.Buy)
	require.Len(t, buys, 1)
	assert.Greater(t, buys[0], 60)
	assert.Empty(t, indexes(signals.Sell))

	i := buys[0]
	assert.Greater(t, frame.EMAFast[i], frame.EMASlow[i])
	assert.LessOrEqual(t, frame.EMAFast[i-1], frame.EMASlow[i-1])
}

func TestCrossoverFastSlow_IgnoresPartialMeans(t *testing.T) {
	df := buildDataframe(100, concat(steps(3, 5), steps(-3, 10), steps(3, 40))...)
	s, err := New(KindCrossoverFastSlow, Overrides{})
	require.NoError(t, err)

	signals, _ := evaluate(t, s, df)
	for i := 0; i < 21; i++ {
		assert.False(t, signals.Buy[i] || signals.Sell[i], "index %d", i)
	}
}

func TestCrossoverLong_Evaluate(t *testing.T) {
	df := buildDataframe(300, concat(steps(-1, 150), steps(1, 149))...)
	s, err := New(KindCrossoverLong, Overrides{})
	require.NoError(t, err)

	signals, frame := evaluate(t, s, df)

	for i := 0; i < 200; i++ {
		assert.False(t, signals.Buy[i] || signals.Sell[i], "index %d", i)
	}

	buys := indexes(signals.Buy)
	require.Len(t, buys, 1)
	assert.Empty(t, indexes(signals.Sell))
	assert.Greater(t, frame.SMAMedium[buys[0]], frame.SMALong[buys[0]])
}

func TestOscillatorReversal_Evaluate(t *testing.T) {
	df := buildDataframe(200, concat(steps(1, 20), steps(-3, 15), steps(3, 15))...)
	s, err := New(KindOscillatorReversal, Overrides{})
	require.NoError(t, err)

	signals, frame := evaluate(t, s, df)

	buys, sells := indexes(signals.Buy), indexes(signals.Sell)
	require.NotEmpty(t, buys)
	require.NotEmpty(t, sells)
	assert.Less(t, sells[0], buys[0])

	for _, i := range buys {
		assert.LessOrEqual(t, frame.RSI[i-1], DefaultRSILower)
		assert.Greater(t, frame.RSI[i], DefaultRSILower)
	}
	for _, i := range sells {
		assert.GreaterOrEqual(t, frame.RSI[i-1], DefaultRSIUpper)
		assert.Less(t, frame.RSI[i], DefaultRSIUpper)
	}

	for i := 0; i <= frame.Config.RSIPeriod; i++ {
		assert.False(t, signals.Buy[i] || signals.Sell[i], "index %d", i)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	df := buildDataframe(200, concat(steps(2, 40), steps(-2, 40), steps(2, 40))...)

	for _, kind := range Kinds() {
		s, err := New(kind, Overrides{})
		require.NoError(t, err)

		first, _ := evaluate(t, s, df)
		second, _ := evaluate(t, s, df)
		assert.Equal(t, first, second, kind)
	}
}

package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBar() Bar {
	return Bar{
		Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Open:   10,
		High:   12,
		Low:    9,
		Close:  11,
		Volume: 1500,
	}
}

func TestBar_Check(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Bar)
		wantErr string
	}{
		{"valid", func(*Bar) {}, ""},
		{"zero volume", func(b *Bar) { b.Volume = 0 }, ""},
		{"flat bar", func(b *Bar) { b.Open, b.High, b.Low, b.Close = 5, 5, 5, 5 }, ""},
		{"nan close", func(b *Bar) { b.Close = math.NaN() }, "non-finite close"},
		{"inf high", func(b *Bar) { b.High = math.Inf(1) }, "non-finite high"},
		{"negative inf low", func(b *Bar) { b.Low = math.Inf(-1) }, "non-finite low"},
		{"nan open", func(b *Bar) { b.Open = math.NaN() }, "non-finite open"},
		{"nan volume", func(b *Bar) { b.Volume = math.NaN() }, "non-finite volume"},
		{"zero price", func(b *Bar) { b.Low = 0 }, "non-positive price"},
		{"negative price", func(b *Bar) { b.Open = -1 }, "non-positive price"},
		{"low above high", func(b *Bar) { b.Low = 13 }, "low above high"},
		{"open above high", func(b *Bar) { b.Open = 12.5 }, "open outside range"},
		{"close below low", func(b *Bar) { b.Close = 8.5 }, "close outside range"},
		{"negative volume", func(b *Bar) { b.Volume = -1 }, "negative volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := validBar()
			tt.mutate(&bar)

			err := bar.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPriceSeries_Validate(t *testing.T) {
	bars := make([]Bar, 5)
	for i := range bars {
		bars[i] = validBar()
		bars[i].Time = bars[i].Time.AddDate(0, 0, i)
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, NewPriceSeries("ABC", bars).Validate(5))
	})

	t.Run("too short", func(t *testing.T) {
		err := NewPriceSeries("ABC", bars).Validate(6)
		require.ErrorIs(t, err, ErrInsufficientData)

		var insufficient *InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 6, insufficient.Required)
		assert.Equal(t, 5, insufficient.Got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, NewPriceSeries("ABC", nil).Validate(0), ErrInsufficientData)
	})

	t.Run("non-finite bar", func(t *testing.T) {
		broken := append([]Bar(nil), bars...)
		broken[3].Close = math.NaN()

		err := NewPriceSeries("ABC", broken).Validate(1)
		require.ErrorIs(t, err, ErrInvalidParameter)
		assert.Contains(t, err.Error(), "non-finite close")
	})

	t.Run("repeated timestamp", func(t *testing.T) {
		broken := append([]Bar(nil), bars...)
		broken[2].Time = broken[1].Time

		err := NewPriceSeries("ABC", broken).Validate(1)
		require.ErrorIs(t, err, ErrInvalidParameter)
		assert.Contains(t, err.Error(), "index 2")
	})
}

func TestSeries_CrossAt(t *testing.T) {
	tests := []struct {
		name   string
		s, ref Series[float64]
		i      int
		over   bool
		under  bool
	}{
		{"cross above", Series[float64]{1, 3}, Series[float64]{2, 2}, 1, true, false},
		{"cross below", Series[float64]{3, 1}, Series[float64]{2, 2}, 1, false, true},
		{"from equal to above", Series[float64]{2, 3}, Series[float64]{2, 2}, 1, true, false},
		{"from equal to below", Series[float64]{2, 1}, Series[float64]{2, 2}, 1, false, true},
		{"touch from below", Series[float64]{1, 2}, Series[float64]{2, 2}, 1, false, false},
		{"touch from above", Series[float64]{3, 2}, Series[float64]{2, 2}, 1, false, false},
		{"equal throughout", Series[float64]{2, 2}, Series[float64]{2, 2}, 1, false, false},
		{"stays above", Series[float64]{3, 4}, Series[float64]{2, 2}, 1, false, false},
		{"first index", Series[float64]{1, 3}, Series[float64]{2, 2}, 0, false, false},
		{"past the end", Series[float64]{1, 3}, Series[float64]{2, 2}, 2, false, false},
		{"short reference", Series[float64]{1, 3, 4}, Series[float64]{2, 2}, 2, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.over, tt.s.CrossoverAt(tt.ref, tt.i))
			assert.Equal(t, tt.under, tt.s.CrossunderAt(tt.ref, tt.i))
		})
	}
}

func TestDefinedAt(t *testing.T) {
	a := Series[float64]{Undefined, 1, 2, 3}
	b := Series[float64]{0, 5, math.Inf(1), 7}

	assert.True(t, DefinedAt([]int{1}, a, b))
	assert.True(t, DefinedAt([]int{1, 3}, a, b))
	assert.False(t, DefinedAt([]int{0, 1}, a, b))
	assert.False(t, DefinedAt([]int{2}, a, b))
	assert.False(t, DefinedAt([]int{-1}, a))
	assert.False(t, DefinedAt([]int{4}, a))
	assert.True(t, DefinedAt([]int{1, 2}, a))
	assert.True(t, DefinedAt(nil, a, b))

	assert.Len(t, NewUndefinedSeries(3), 3)
	assert.False(t, DefinedAt([]int{0}, NewUndefinedSeries(3)))
}

func TestSignalFrame(t *testing.T) {
	frame := NewSignalFrame(4)
	require.Equal(t, 4, frame.Len())
	require.NoError(t, frame.Validate(4))

	frame.Buy[1] = true
	frame.Sell[3] = true
	buys, sells := frame.Count()
	assert.Equal(t, 1, buys)
	assert.Equal(t, 1, sells)
	assert.NoError(t, frame.Validate(4))

	t.Run("length mismatch", func(t *testing.T) {
		assert.ErrorIs(t, frame.Validate(5), ErrInvalidParameter)
		assert.ErrorIs(t, SignalFrame{Buy: make([]bool, 4), Sell: make([]bool, 3)}.Validate(4), ErrInvalidParameter)
	})

	t.Run("buy and sell on one index", func(t *testing.T) {
		clash := NewSignalFrame(4)
		clash.Buy[2], clash.Sell[2] = true, true

		err := clash.Validate(4)
		require.ErrorIs(t, err, ErrInvalidParameter)
		assert.Contains(t, err.Error(), "same index")
	})
}

func TestDirection_StringAndSides(t *testing.T) {
	assert.Equal(t, "bullish", Bullish.String())
	assert.Equal(t, "bearish", Bearish.String())
	assert.Equal(t, "neutral", Neutral.String())

	text, err := Bullish.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "bullish", string(text))

	assert.Equal(t, SideShort, SideLong.Opposite())
	assert.Equal(t, SideLong, SideShort.Opposite())
	assert.Equal(t, SideNone, SideNone.Opposite())
}

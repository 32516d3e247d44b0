package indicator

import (
	"time"

	"github.com/raykavin/trendscan/pkg/core"
)

// Band sensitivities of the hybrid overlay
const (
	Tight = iota
	Medium
	Wide
)

// Config holds the horizons of every indicator in a Frame
type Config struct {
	Bands     [3]BandParams `mapstructure:"bands" json:"bands"`
	EMAFast   int           `mapstructure:"ema_fast" json:"emaFast"`
	EMASlow   int           `mapstructure:"ema_slow" json:"emaSlow"`
	SMAMedium int           `mapstructure:"sma_medium" json:"smaMedium"`
	SMALong   int           `mapstructure:"sma_long" json:"smaLong"`
	ATRPeriod int           `mapstructure:"atr_period" json:"atrPeriod"`
	RSIPeriod int           `mapstructure:"rsi_period" json:"rsiPeriod"`
}

// DefaultConfig returns the horizons used by the dashboard
func DefaultConfig() Config {
	return Config{
		Bands: [3]BandParams{
			Tight:  {Multiplier: 1.0, Lookback: 10},
			Medium: {Multiplier: 2.0, Lookback: 11},
			Wide:   {Multiplier: 3.0, Lookback: 12},
		},
		EMAFast:   9,
		EMASlow:   21,
		SMAMedium: 50,
		SMALong:   200,
		ATRPeriod: 14,
		RSIPeriod: 14,
	}
}

// Validate rejects non-positive horizons
func (c Config) Validate() error {
	names := [3]string{"tight", "medium", "wide"}
	for i, band := range c.Bands {
		if err := band.Validate(names[i]); err != nil {
			return err
		}
	}

	periods := []struct {
		name  string
		value int
	}{
		{"ema_fast", c.EMAFast},
		{"ema_slow", c.EMASlow},
		{"sma_medium", c.SMAMedium},
		{"sma_long", c.SMALong},
		{"atr_period", c.ATRPeriod},
		{"rsi_period", c.RSIPeriod},
	}
	for _, p := range periods {
		if p.value < 1 {
			return core.NewInvalidParameter(p.name, p.value, "must be at least 1")
		}
	}

	return nil
}

// Frame is the shared indicator surface of one price series. Every column
// has the length of the series it was built from and is never mutated.
type Frame struct {
	Config Config
	Time   []time.Time

	EMAFast   core.Series[float64]
	EMASlow   core.Series[float64]
	SMAMedium core.Series[float64]
	SMALong   core.Series[float64]
	ATR       core.Series[float64]
	RSI       core.Series[float64]

	Bands      [3]Band
	Confluence []core.Direction
	Hybrid     core.Series[float64]
}

// NewFrame builds every indicator of cfg over the dataframe
func NewFrame(df *core.Dataframe, cfg Config) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frame := &Frame{
		Config:    cfg,
		Time:      df.Time,
		EMAFast:   EMA(df.Close, cfg.EMAFast),
		EMASlow:   EMA(df.Close, cfg.EMASlow),
		SMAMedium: SMA(df.Close, cfg.SMAMedium),
		SMALong:   SMA(df.Close, cfg.SMALong),
		ATR:       ATR(df.High, df.Low, df.Close, cfg.ATRPeriod),
		RSI:       RSI(df.Close, cfg.RSIPeriod),
	}

	for i, params := range cfg.Bands {
		frame.Bands[i] = SuperTrend(df.High, df.Low, df.Close, params)
	}

	frame.Confluence, frame.Hybrid = confluence(frame.Bands, df.Len())
	return frame, nil
}

// Len returns the number of indexes in the frame
func (f *Frame) Len() int { return len(f.Time) }

// BandsDefined reports whether all three bands hold a value at index i
func (f *Frame) BandsDefined(i int) bool {
	for _, band := range f.Bands {
		if i < 0 || i >= len(band.Line) || !core.IsDefined(band.Line[i]) {
			return false
		}
	}
	return true
}

// Warmup returns the first index at which every band is defined
func (f *Frame) Warmup() int {
	warmup := 0
	for _, band := range f.Bands {
		warmup = max(warmup, band.Start())
	}
	return warmup
}

// confluence combines the three bands: bullish or bearish only when all agree,
// and the hybrid line as the mean of the three band lines.
func confluence(bands [3]Band, length int) ([]core.Direction, core.Series[float64]) {
	directions := make([]core.Direction, length)
	hybrid := core.NewUndefinedSeries(length)

	for i := 0; i < length; i++ {
		bullish, bearish, sum := 0, 0, 0.0
		defined := true

		for _, band := range bands {
			switch band.Direction[i] {
			case core.Bullish:
				bullish++
			case core.Bearish:
				bearish++
			}

			if !core.IsDefined(band.Line[i]) {
				defined = false
				continue
			}
			sum += band.Line[i]
		}

		switch {
		case bullish == len(bands):
			directions[i] = core.Bullish
		case bearish == len(bands):
			directions[i] = core.Bearish
		default:
			directions[i] = core.Neutral
		}

		if defined {
			hybrid[i] = sum / float64(len(bands))
		}
	}

	return directions, hybrid
}

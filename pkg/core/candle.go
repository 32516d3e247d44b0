package core

import (
	"fmt"
	"strconv"
	"time"
)

// Bar represents one OHLCV observation for a fixed time interval
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Check verifies the price invariants of a single bar: finite values,
// positive prices, low <= open,close <= high and non-negative volume.
func (b Bar) Check() error {
	fields := [...]struct {
		name  string
		value float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume},
	}
	for _, f := range fields {
		if !IsDefined(f.value) {
			return fmt.Errorf("non-finite %s at %s", f.name, b.Time.Format(time.RFC3339))
		}
	}

	switch {
	case b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0:
		return fmt.Errorf("non-positive price at %s", b.Time.Format(time.RFC3339))
	case b.Low > b.High:
		return fmt.Errorf("low above high at %s", b.Time.Format(time.RFC3339))
	case b.Open < b.Low || b.Open > b.High:
		return fmt.Errorf("open outside range at %s", b.Time.Format(time.RFC3339))
	case b.Close < b.Low || b.Close > b.High:
		return fmt.Errorf("close outside range at %s", b.Time.Format(time.RFC3339))
	case b.Volume < 0:
		return fmt.Errorf("negative volume at %s", b.Time.Format(time.RFC3339))
	}
	return nil
}

// ToSlice converts a bar to a string slice for serialization
// with the specified decimal precision
func (b Bar) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", b.Time.Unix()),
		strconv.FormatFloat(b.Open, 'f', precision, 64),
		strconv.FormatFloat(b.Close, 'f', precision, 64),
		strconv.FormatFloat(b.Low, 'f', precision, 64),
		strconv.FormatFloat(b.High, 'f', precision, 64),
		strconv.FormatFloat(b.Volume, 'f', precision, 64),
	}
}

// PriceSeries is an ordered price history for one symbol, oldest bar first.
// It is read-only to every consumer.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

// NewPriceSeries creates a series for the given symbol
func NewPriceSeries(symbol string, bars []Bar) PriceSeries {
	return PriceSeries{Symbol: symbol, Bars: bars}
}

// Len returns the number of bars in the series
func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar
func (s PriceSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes returns the close prices of the series
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Validate checks ordering, bar sanity and the minimum length required by the consumer.
func (s PriceSeries) Validate(minBars int) error {
	if len(s.Bars) < minBars || len(s.Bars) == 0 {
		return &InsufficientDataError{Symbol: s.Symbol, Required: max(minBars, 1), Got: len(s.Bars)}
	}

	for i, bar := range s.Bars {
		if err := bar.Check(); err != nil {
			return &InvalidParameterError{Name: "series", Value: s.Symbol, Reason: err.Error()}
		}

		if i > 0 && !bar.Time.After(s.Bars[i-1].Time) {
			return &InvalidParameterError{
				Name:   "series",
				Value:  s.Symbol,
				Reason: fmt.Sprintf("timestamps not strictly increasing at index %d", i),
			}
		}
	}

	return nil
}

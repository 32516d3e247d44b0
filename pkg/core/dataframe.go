package core

import (
	"time"
)

// Dataframe is a column view of a PriceSeries for indicator math
type Dataframe struct {
	Symbol string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time []time.Time
}

// NewDataframe splits a price series into parallel columns
func NewDataframe(series PriceSeries) *Dataframe {
	size := len(series.Bars)
	df := &Dataframe{
		Symbol: series.Symbol,
		Close:  make(Series[float64], size),
		Open:   make(Series[float64], size),
		High:   make(Series[float64], size),
		Low:    make(Series[float64], size),
		Volume: make(Series[float64], size),
		Time:   make([]time.Time, size),
	}

	for i, bar := range series.Bars {
		df.Close[i] = bar.Close
		df.Open[i] = bar.Open
		df.High[i] = bar.High
		df.Low[i] = bar.Low
		df.Volume[i] = bar.Volume
		df.Time[i] = bar.Time
	}

	return df
}

// Len returns the number of rows in the dataframe
func (df Dataframe) Len() int { return len(df.Time) }

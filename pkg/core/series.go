package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Undefined marks an indicator cell that has not warmed up yet
var Undefined = math.NaN()

// IsDefined reports whether v holds a real value
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Series is a time series of ordered values, oldest first
type Series[T constraints.Ordered] []T

// NewUndefinedSeries returns a float series of the given length with every cell undefined
func NewUndefinedSeries(length int) Series[float64] {
	s := make(Series[float64], length)
	for i := range s {
		s[i] = Undefined
	}
	return s
}

// CrossoverAt reports an upward cross at index i: s[i-1] <= ref[i-1] and s[i] > ref[i]
func (s Series[T]) CrossoverAt(ref Series[T], i int) bool {
	if i < 1 || i >= len(s) || i >= len(ref) {
		return false
	}
	return s[i] > ref[i] && s[i-1] <= ref[i-1]
}

// CrossunderAt reports a downward cross at index i: s[i-1] >= ref[i-1] and s[i] < ref[i]
func (s Series[T]) CrossunderAt(ref Series[T], i int) bool {
	if i < 1 || i >= len(s) || i >= len(ref) {
		return false
	}
	return s[i] < ref[i] && s[i-1] >= ref[i-1]
}

// DefinedAt reports whether every given float series holds a defined value at each index
func DefinedAt(indexes []int, series ...Series[float64]) bool {
	for _, s := range series {
		for _, i := range indexes {
			if i < 0 || i >= len(s) || !IsDefined(s[i]) {
				return false
			}
		}
	}
	return true
}

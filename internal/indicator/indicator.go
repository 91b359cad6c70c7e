// Package indicator computes the technical-indicator bundle used by the
// signal pipeline: trend EMAs, RSI, ADX/DI, CMF, Chaikin oscillator, MACD,
// ATR, Supertrend, volume spread analysis and pattern heuristics.
//
// All functions are pure over the input series. Warm-up regions are NaN,
// mirroring windowed computation: callers must treat NaN as "feature
// unavailable", never as zero.
package indicator

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData is returned when the series is shorter than the
	// minimum bar count required for stable indicator output.
	ErrInsufficientData = errors.New("indicator: insufficient bars")

	// ErrEmptySeries is returned for a nil or empty input series.
	ErrEmptySeries = errors.New("indicator: empty series")

	// ErrMalformedSeries indicates non-positive prices or inverted
	// high/low bounds. This is a data defect, not a warm-up condition.
	ErrMalformedSeries = errors.New("indicator: malformed series")
)

// nan-filled slice of length n.
func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// valid reports whether v is a usable (non-NaN, non-Inf) value.
func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// orZero maps NaN/Inf to 0 for summary export.
func orZero(v float64) float64 {
	if !valid(v) {
		return 0
	}
	return v
}

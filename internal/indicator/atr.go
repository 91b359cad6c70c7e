package indicator

import "math"

// TrueRange computes the per-bar true range. The first bar uses high-low.
func TrueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(highs))
	for i := range highs {
		if i == 0 {
			out[i] = highs[i] - lows[i]
			continue
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the Average True Range with Wilder's smoothing.
func ATR(highs, lows, closes []float64, period int) []float64 {
	return rma(TrueRange(highs, lows, closes), period)
}

// Supertrend computes the Supertrend line and its direction
// (+1 bullish, -1 bearish) for the given ATR length and multiplier.
// Warm-up entries are NaN / 0.
func Supertrend(highs, lows, closes []float64, period int, mult float64) (line, dir []float64) {
	n := len(closes)
	line = nans(n)
	dir = make([]float64, n)
	if period <= 0 || n < period+1 {
		return line, dir
	}

	atr := ATR(highs, lows, closes, period)

	upper := nans(n)
	lower := nans(n)
	trend := 1.0
	started := false

	for i := 0; i < n; i++ {
		if !valid(atr[i]) {
			continue
		}
		mid := (highs[i] + lows[i]) / 2
		basicUpper := mid + mult*atr[i]
		basicLower := mid - mult*atr[i]

		if !started {
			upper[i] = basicUpper
			lower[i] = basicLower
			started = true
		} else {
			// Bands only ratchet in the trend direction until price crosses.
			if basicUpper < upper[i-1] || closes[i-1] > upper[i-1] {
				upper[i] = basicUpper
			} else {
				upper[i] = upper[i-1]
			}
			if basicLower > lower[i-1] || closes[i-1] < lower[i-1] {
				lower[i] = basicLower
			} else {
				lower[i] = lower[i-1]
			}

			if closes[i] > upper[i-1] {
				trend = 1
			} else if closes[i] < lower[i-1] {
				trend = -1
			}
		}

		dir[i] = trend
		if trend > 0 {
			line[i] = lower[i]
		} else {
			line[i] = upper[i]
		}
	}
	return line, dir
}

package indicator

// moneyFlowVolume returns the per-bar money flow volume used by both CMF
// and the accumulation/distribution line. Bars with high == low contribute 0.
func moneyFlowVolume(highs, lows, closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		spread := highs[i] - lows[i]
		if spread == 0 {
			continue
		}
		mult := ((closes[i] - lows[i]) - (highs[i] - closes[i])) / spread
		out[i] = mult * volumes[i]
	}
	return out
}

// CMF computes the Chaikin Money Flow: rolling sum of money flow volume over
// rolling sum of volume. Positive values indicate accumulation.
func CMF(highs, lows, closes, volumes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	mfv := moneyFlowVolume(highs, lows, closes, volumes)
	sumMFV, sumVol := 0.0, 0.0
	for i := range closes {
		sumMFV += mfv[i]
		sumVol += volumes[i]
		if i >= period {
			sumMFV -= mfv[i-period]
			sumVol -= volumes[i-period]
		}
		if i >= period-1 && sumVol > 0 {
			out[i] = sumMFV / sumVol
		}
	}
	return out
}

// ADLine computes the cumulative accumulation/distribution line.
func ADLine(highs, lows, closes, volumes []float64) []float64 {
	mfv := moneyFlowVolume(highs, lows, closes, volumes)
	out := make([]float64, len(closes))
	cum := 0.0
	for i, v := range mfv {
		cum += v
		out[i] = cum
	}
	return out
}

// ChaikinOsc computes the Chaikin oscillator: fast EMA minus slow EMA of the
// accumulation/distribution line. Rising values signal money-flow acceleration.
func ChaikinOsc(highs, lows, closes, volumes []float64, fast, slow int) []float64 {
	adl := ADLine(highs, lows, closes, volumes)
	emaFast := EMA(adl, fast)
	emaSlow := EMA(adl, slow)
	out := nans(len(closes))
	for i := range out {
		if valid(emaFast[i]) && valid(emaSlow[i]) {
			out[i] = emaFast[i] - emaSlow[i]
		}
	}
	return out
}

// MACD computes the MACD line, signal line and histogram for the standard
// 12/26/9 configuration (or any custom periods).
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	n := len(closes)
	macd, sig, hist = nans(n), nans(n), nans(n)
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := range closes {
		if valid(emaFast[i]) && valid(emaSlow[i]) {
			macd[i] = emaFast[i] - emaSlow[i]
		}
	}
	// Signal EMA runs over the valid MACD region only.
	start := -1
	for i, v := range macd {
		if valid(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return macd, sig, hist
	}
	sigValid := EMA(macd[start:], signal)
	for i, v := range sigValid {
		if valid(v) {
			sig[start+i] = v
			hist[start+i] = macd[start+i] - v
		}
	}
	return macd, sig, hist
}

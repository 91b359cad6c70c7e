package indicator

// RSI computes the Relative Strength Index using Wilder's smoothing.
// The first period entries are NaN (one delta is consumed before smoothing).
func RSI(closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := rma(gains, period)
	avgLoss := rma(losses, period)

	for i := period - 1; i < len(gains); i++ {
		g, l := avgGain[i], avgLoss[i]
		if !valid(g) || !valid(l) {
			continue
		}
		if l == 0 {
			out[i+1] = 100.0
			continue
		}
		rs := g / l
		out[i+1] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

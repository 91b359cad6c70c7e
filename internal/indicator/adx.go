package indicator

import "math"

// ADX computes the Average Directional Index with its DI+ / DI- companions
// using Wilder's smoothing. DI values warm up after period bars; ADX itself
// needs roughly twice that.
func ADX(highs, lows, closes []float64, period int) (adx, diPlus, diMinus []float64) {
	n := len(closes)
	adx, diPlus, diMinus = nans(n), nans(n), nans(n)
	if period <= 0 || n < period+1 {
		return adx, diPlus, diMinus
	}

	tr := make([]float64, n-1)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i-1] = math.Max(hl, math.Max(hc, lc))
	}

	smTR := rma(tr, period)
	smPlus := rma(plusDM, period)
	smMinus := rma(minusDM, period)

	dx := nans(n - 1)
	for i := period - 1; i < n-1; i++ {
		if !valid(smTR[i]) || smTR[i] == 0 {
			continue
		}
		dp := 100 * smPlus[i] / smTR[i]
		dm := 100 * smMinus[i] / smTR[i]
		diPlus[i+1] = dp
		diMinus[i+1] = dm
		if dp+dm > 0 {
			dx[i] = 100 * math.Abs(dp-dm) / (dp + dm)
		} else {
			dx[i] = 0
		}
	}

	// ADX = Wilder RMA of DX over the valid region.
	firstDX := period - 1
	validDX := dx[firstDX:]
	smDX := rma(validDX, period)
	for i, v := range smDX {
		if valid(v) {
			adx[firstDX+i+1] = v
		}
	}
	return adx, diPlus, diMinus
}

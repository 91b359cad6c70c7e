package indicator

// SMA computes a simple moving average over the series.
// The first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of the
// first period values. The first period-1 entries are NaN.
func EMA(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	mult := 2.0 / float64(period+1)
	prev := sum / float64(period)
	out[period-1] = prev
	for i := period; i < len(values); i++ {
		prev = values[i]*mult + prev*(1-mult)
		out[i] = prev
	}
	return out
}

// rma computes Wilder's running moving average, seeded with the SMA of the
// first period values. Used by RSI, ATR and ADX.
func rma(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	p := float64(period)
	prev := sum / p
	out[period-1] = prev
	for i := period; i < len(values); i++ {
		prev = (prev*(p-1) + values[i]) / p
		out[i] = prev
	}
	return out
}

// RollingMax computes the maximum over a trailing window.
// The first period-1 entries are NaN.
func RollingMax(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		max := values[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}
		out[i] = max
	}
	return out
}

// RollingMin computes the minimum over a trailing window.
// The first period-1 entries are NaN.
func RollingMin(values []float64, period int) []float64 {
	out := nans(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		min := values[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}
		out[i] = min
	}
	return out
}

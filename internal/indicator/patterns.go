package indicator

import (
	"math"

	"github.com/lordfcde/sharkwatch/internal/model"
)

// computeVSA fills the volume-spread-analysis columns: climax, dryness,
// accumulation and the shakeout pattern.
func (e *Engine) computeVSA(c *Columns, opens, highs, lows, closes, volumes []float64) {
	n := len(closes)
	cfg := e.cfg
	c.VolClimax = make([]bool, n)
	c.VolDry = make([]bool, n)
	c.VolAccum = make([]bool, n)
	c.Shakeout = make([]bool, n)

	priorLow := RollingMin(lows, cfg.ShakeoutLook)

	for i := 0; i < n; i++ {
		avg := c.VolAvg[i]
		if !valid(avg) || avg <= 0 {
			continue
		}
		v := volumes[i]
		bullish := closes[i] > opens[i]

		c.VolClimax[i] = v > cfg.VolClimaxK*avg
		c.VolDry[i] = v < cfg.VolDryK*avg
		c.VolAccum[i] = v > cfg.VolAccumK*avg && v <= cfg.VolClimaxK*avg && bullish

		// Shakeout: dip below the prior swing low that recovers on a bullish
		// candle without panic volume. The candle body must be a real
		// recovery, not a doji.
		if i == 0 || !valid(priorLow[i-1]) {
			continue
		}
		spread := highs[i] - lows[i]
		body := math.Abs(closes[i] - opens[i])
		c.Shakeout[i] = lows[i] < priorLow[i-1] &&
			bullish &&
			v < 1.5*avg &&
			spread > 0 && body >= 0.3*spread
	}
}

// computeWyckoff fills the Wyckoff-lite phase column. The consolidation
// range comes from the PREVIOUS bar's Donchian window to avoid lookahead.
func (e *Engine) computeWyckoff(c *Columns, opens, highs, lows, closes, volumes []float64) {
	n := len(closes)
	c.Wyckoff = make([]model.WyckoffPhase, n)
	for i := range c.Wyckoff {
		c.Wyckoff[i] = model.WyckoffNone
	}

	for i := 1; i < n; i++ {
		res := c.Resistance[i-1]
		sup := c.Support[i-1]
		avg := c.VolAvg[i]
		cmf := c.CMF[i]
		if !valid(res) || !valid(sup) || !valid(avg) || avg <= 0 {
			continue
		}

		v := volumes[i]
		bullish := closes[i] > opens[i]
		bearish := closes[i] < opens[i]
		highVol := v >= 1.5*avg
		lowVol := v < avg

		switch {
		// SOS: decisive close above prior resistance, volume-backed, money in.
		case closes[i] > res*1.02 && bullish && highVol && valid(cmf) && cmf > 0:
			c.Wyckoff[i] = model.WyckoffSOS

		// SOW: mirror breakdown through prior support.
		case closes[i] < sup*0.98 && bearish && highVol && valid(cmf) && cmf < 0:
			c.Wyckoff[i] = model.WyckoffSOW

		// Spring: wick pierces support, close recovers above it quietly.
		case lows[i] < sup && closes[i] > sup && lowVol && bullish:
			c.Wyckoff[i] = model.WyckoffSpring

		// Upthrust: wick pierces resistance, close rejected below it loudly.
		case highs[i] > res && closes[i] < res && highVol && bearish:
			c.Wyckoff[i] = model.WyckoffUpthrust
		}
	}
}

// computeTraps fills the pump-and-dump and exhaustion-top columns.
func (e *Engine) computeTraps(c *Columns, closes, volumes []float64) {
	n := len(closes)
	c.PumpDump = make([]bool, n)
	c.Exhaustion = make([]bool, n)

	const look = 5

	for i := look; i < n; i++ {
		rsi := c.RSI[i]
		avg := c.VolAvg[i]
		if !valid(rsi) || !valid(avg) || avg <= 0 {
			continue
		}

		change := (closes[i] - closes[i-look]) / closes[i-look]

		// Pump & dump: parabolic RSI + volume blowoff + vertical price.
		c.PumpDump[i] = rsi > 80 && volumes[i] >= 3*avg && change > 0.05

		// Exhaustion top: price makes a new short-term high while RSI does
		// not (bearish divergence) on elevated volume.
		if rsi > 75 && volumes[i] >= 1.5*avg {
			priceHigh, rsiHigh := true, false
			for j := i - look; j < i; j++ {
				if closes[j] >= closes[i] {
					priceHigh = false
				}
				if valid(c.RSI[j]) && c.RSI[j] >= rsi {
					rsiHigh = true
				}
			}
			c.Exhaustion[i] = priceHigh && rsiHigh
		}
	}
}

// computeSignal fills the composite signal column.
// Priority: DIAMOND > MUC > SOM > SELL > NONE.
func (e *Engine) computeSignal(c *Columns, opens, closes, volumes []float64) {
	n := len(closes)
	c.Signal = make([]model.SignalTag, n)

	for i := 0; i < n; i++ {
		c.Signal[i] = model.SignalNone

		ema50 := c.EMA50[i]
		adx := c.ADX[i]
		rsi := c.RSI[i]
		cmf := c.CMF[i]
		avg := c.VolAvg[i]
		if !valid(ema50) || !valid(rsi) {
			continue
		}

		uptrend := closes[i] > ema50
		bullishDI := valid(c.DIPlus[i]) && valid(c.DIMinus[i]) && c.DIPlus[i] > c.DIMinus[i]
		volBacked := valid(avg) && avg > 0 &&
			(c.VolClimax[i] || volumes[i] > 1.5*avg)
		trapped := c.PumpDump[i] || c.Exhaustion[i]

		switch {
		case uptrend && valid(adx) && adx > 25 && bullishDI &&
			valid(cmf) && cmf > 0 && volBacked && !trapped:
			c.Signal[i] = model.SignalDiamond

		case uptrend && valid(adx) && adx > 20 && bullishDI &&
			rsi > 50 && rsi < 70 && !c.PumpDump[i]:
			c.Signal[i] = model.SignalMuc

		case (rsi < 30 && valid(avg) && avg > 0 && volumes[i] > avg && closes[i] > opens[i]) ||
			c.Wyckoff[i] == model.WyckoffSpring:
			c.Signal[i] = model.SignalSom

		case (closes[i] < ema50 && rsi < 50) || rsi > 80 ||
			c.Wyckoff[i] == model.WyckoffSOW || c.Wyckoff[i] == model.WyckoffUpthrust:
			c.Signal[i] = model.SignalSell
		}
	}
}

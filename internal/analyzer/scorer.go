package analyzer

import (
	"fmt"

	"github.com/lordfcde/sharkwatch/internal/model"
)

// Weights is the scoring configuration table. One canonical scoring
// function consumes it; there is deliberately no strategy hierarchy here.
type Weights struct {
	RSIBreakoutLegit  int // RSI>70 with volume and no trap flags
	RSIPumpDump       int // RSI>70 while pump-dump flagged
	RSIExhaustion     int // RSI>70 while exhaustion flagged
	RSILowVolTrap     int // RSI>70 without volume backing
	RSIBullishZone    int // RSI in [50, 70]
	AboveEMA50        int
	PositiveCMF       int
	ChaikinRising     int
	ChaikinRisingClim int // Chaikin rising during a volume climax
	MACDPositive      int
	ADXOverheatedUp   int
	ADXOverheatedDown int
	ADXStrongUp       int
	ADXStrongDown     int
	SupertrendUp      int
	SupertrendDown    int
	EMAAlignedBull    int
	EMAAlignedBear    int
	WyckoffSOS        int
	WyckoffSpring     int
	WyckoffSOW        int
	WyckoffUpthrust   int
	PumpDumpPenalty   int
	ExhaustionPenalty int

	StrongBuyMin      int
	SpeculativeBuyMin int
	WatchMin          int
}

// DefaultWeights returns the production scoring table.
func DefaultWeights() Weights {
	return Weights{
		RSIBreakoutLegit:  3,
		RSIPumpDump:       -4,
		RSIExhaustion:     -3,
		RSILowVolTrap:     -3,
		RSIBullishZone:    2,
		AboveEMA50:        2,
		PositiveCMF:       2,
		ChaikinRising:     1,
		ChaikinRisingClim: 2,
		MACDPositive:      2,
		ADXOverheatedUp:   1,
		ADXOverheatedDown: -5,
		ADXStrongUp:       2,
		ADXStrongDown:     -5,
		SupertrendUp:      1,
		SupertrendDown:    -1,
		EMAAlignedBull:    2,
		EMAAlignedBear:    -2,
		WyckoffSOS:        3,
		WyckoffSpring:     2,
		WyckoffSOW:        -3,
		WyckoffUpthrust:   -3,
		PumpDumpPenalty:   -3,
		ExhaustionPenalty: -2,

		StrongBuyMin:      10,
		SpeculativeBuyMin: 7,
		WatchMin:          4,
	}
}

// Score evaluates the latest-bar summary against the weight table and
// returns the accumulated score with its contributing reasons, in the
// order the rules were applied.
func Score(s model.IndicatorSummary, w Weights) (int, []string) {
	score := 0
	var reasons []string
	add := func(pts int, reason string) {
		score += pts
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", reason, pts))
	}

	// 1. RSI, breakout-focused: high RSI is only bullish when volume
	// confirms and no trap flag fires.
	switch {
	case s.RSI > 70:
		switch {
		case s.Volume > s.VolAvg && !s.PumpDumpRisk && !s.ExhaustionTop:
			add(w.RSIBreakoutLegit, "RSI>70 with volume, legit breakout")
		case s.PumpDumpRisk:
			add(w.RSIPumpDump, "RSI>70 with pump-dump risk")
		case s.ExhaustionTop:
			add(w.RSIExhaustion, "RSI>70 with bearish divergence")
		default:
			add(w.RSILowVolTrap, "RSI>70 on low volume, trap")
		}
	case s.RSI >= 50:
		add(w.RSIBullishZone, "RSI 50-70, controlled strength")
	}

	// 2. Trend and money flow.
	if s.Close > s.EMA50 && s.EMA50 > 0 {
		add(w.AboveEMA50, "price above EMA50")
	}
	if s.CMF > 0 {
		add(w.PositiveCMF, "CMF positive, accumulation")
	}
	if s.Chaikin > s.PrevChaikin {
		if s.VolClimax {
			add(w.ChaikinRisingClim, "Chaikin rising into volume climax")
		} else {
			add(w.ChaikinRising, "Chaikin rising")
		}
	}
	if s.MACDHist > 0 {
		add(w.MACDPositive, "MACD histogram positive")
	}

	// 3. ADX: overheated check comes first, it is not a subset of strong.
	if s.ADX > 50 {
		if s.IsBullish {
			add(w.ADXOverheatedUp, fmt.Sprintf("ADX overheated (%.0f) but bullish", s.ADX))
		} else {
			add(w.ADXOverheatedDown, fmt.Sprintf("ADX overheated (%.0f) and bearish", s.ADX))
		}
	} else if s.ADX > 25 {
		if s.IsBullish {
			add(w.ADXStrongUp, fmt.Sprintf("ADX strong (%.0f) and bullish", s.ADX))
		} else {
			add(w.ADXStrongDown, fmt.Sprintf("ADX strong (%.0f) and bearish", s.ADX))
		}
	}

	// 4. Supertrend direction.
	if s.SupertrendDir > 0 {
		add(w.SupertrendUp, "Supertrend bullish")
	} else {
		add(w.SupertrendDown, "Supertrend bearish")
	}

	// 5. EMA alignment as a multi-timeframe trend proxy.
	switch s.EMAAligned {
	case model.EMAAlignedBull:
		add(w.EMAAlignedBull, "EMA 20>50>144>233 aligned bullish")
	case model.EMAAlignedBear:
		add(w.EMAAlignedBear, "EMA stack aligned bearish")
	}

	// 6. Wyckoff-lite phases.
	switch s.Wyckoff {
	case model.WyckoffSOS:
		add(w.WyckoffSOS, "Wyckoff SOS breakout")
	case model.WyckoffSpring:
		add(w.WyckoffSpring, "Wyckoff spring, successful shakeout")
	case model.WyckoffSOW:
		add(w.WyckoffSOW, "Wyckoff SOW breakdown")
	case model.WyckoffUpthrust:
		add(w.WyckoffUpthrust, "Wyckoff upthrust, bull trap")
	}

	// 7. Anti-trap penalties, cumulative with the RSI branch above.
	if s.PumpDumpRisk {
		add(w.PumpDumpPenalty, "pump-and-dump risk")
	}
	if s.ExhaustionTop {
		add(w.ExhaustionPenalty, "exhaustion top divergence")
	}

	return score, reasons
}

// Rate maps a score to its categorical rating, then applies the final
// override guards: a strong confirmed downtrend or a pump-and-dump flag
// forces the rating down to WATCH regardless of score.
func Rate(score int, s model.IndicatorSummary, w Weights) (model.Rating, []string) {
	var rating model.Rating
	switch {
	case score >= w.StrongBuyMin:
		rating = model.RatingStrongBuy
	case score >= w.SpeculativeBuyMin:
		rating = model.RatingSpeculativeBuy
	case score >= w.WatchMin:
		rating = model.RatingWatch
	default:
		rating = model.RatingNoBuy
	}

	var overrides []string
	if s.ADX > 25 && !s.IsBullish {
		rating = model.RatingWatch
		overrides = append(overrides, "forced WATCH: ADX confirms downtrend")
	}
	if s.PumpDumpRisk {
		rating = model.RatingWatch
		overrides = append(overrides, "forced WATCH: pump-and-dump risk")
	}
	return rating, overrides
}

package indicator

import (
	"fmt"

	"github.com/lordfcde/sharkwatch/internal/model"
)

// Config holds the indicator bundle parameters. Zero value is unusable;
// use DefaultConfig and override selectively.
type Config struct {
	EMAFast   int // 20
	EMAMedium int // 50
	EMASlow   int // 144
	EMATrend  int // 233

	RSILength     int
	ADXLength     int
	CMFLength     int
	ChaikinFast   int
	ChaikinSlow   int
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
	ATRLength     int
	SupertrendLen int
	SupertrendK   float64

	VolAvgLen  int
	VolClimaxK float64 // volume climax threshold multiple
	VolDryK    float64 // volume dryness threshold multiple
	VolAccumK  float64 // accumulation lower bound multiple

	ShakeoutLook int // prior swing-low lookback
	SRLookback   int // support/resistance Donchian window

	MinBars int // minimum series length for Summarize
}

// DefaultConfig returns the production indicator parameters.
func DefaultConfig() Config {
	return Config{
		EMAFast:   20,
		EMAMedium: 50,
		EMASlow:   144,
		EMATrend:  233,

		RSILength:     14,
		ADXLength:     14,
		CMFLength:     20,
		ChaikinFast:   3,
		ChaikinSlow:   10,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		ATRLength:     14,
		SupertrendLen: 10,
		SupertrendK:   3.0,

		VolAvgLen:  20,
		VolClimaxK: 2.0,
		VolDryK:    0.5,
		VolAccumK:  1.2,

		ShakeoutLook: 10,
		SRLookback:   20,

		MinBars: 50,
	}
}

// Columns is the full per-bar output of Analyze. Slices share the input
// series length; warm-up entries are NaN (numeric) or false (boolean).
type Columns struct {
	EMA20, EMA50, EMA144, EMA233 []float64
	RSI                          []float64
	ADX, DIPlus, DIMinus         []float64
	CMF, Chaikin                 []float64
	MACDHist                     []float64
	ATR                          []float64
	Supertrend, SupertrendDir    []float64
	VolAvg                       []float64
	Support, Resistance          []float64

	VolClimax, VolDry, VolAccum []bool
	Shakeout                    []bool
	PumpDump, Exhaustion        []bool
	Wyckoff                     []model.WyckoffPhase
	Signal                      []model.SignalTag
}

// Engine runs the indicator bundle over OHLCV series. Pure: it keeps no
// state between calls, so the same series always produces the same output.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given parameters.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze computes every indicator column for the series.
// The series must be time-ordered with positive prices.
func (e *Engine) Analyze(bars model.Series) (*Columns, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}
	if err := validateSeries(bars); err != nil {
		return nil, err
	}

	highs := bars.Highs()
	lows := bars.Lows()
	closes := bars.Closes()
	opens := bars.Opens()
	volumes := bars.Volumes()
	cfg := e.cfg

	c := &Columns{
		EMA20:  EMA(closes, cfg.EMAFast),
		EMA50:  EMA(closes, cfg.EMAMedium),
		EMA144: EMA(closes, cfg.EMASlow),
		EMA233: EMA(closes, cfg.EMATrend),
		RSI:    RSI(closes, cfg.RSILength),
		CMF:    CMF(highs, lows, closes, volumes, cfg.CMFLength),
		Chaikin: ChaikinOsc(
			highs, lows, closes, volumes, cfg.ChaikinFast, cfg.ChaikinSlow),
		ATR:        ATR(highs, lows, closes, cfg.ATRLength),
		VolAvg:     SMA(volumes, cfg.VolAvgLen),
		Support:    RollingMin(lows, cfg.SRLookback),
		Resistance: RollingMax(highs, cfg.SRLookback),
	}

	c.ADX, c.DIPlus, c.DIMinus = ADX(highs, lows, closes, cfg.ADXLength)
	_, _, c.MACDHist = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	c.Supertrend, c.SupertrendDir = Supertrend(
		highs, lows, closes, cfg.SupertrendLen, cfg.SupertrendK)

	e.computeVSA(c, opens, highs, lows, closes, volumes)
	e.computeWyckoff(c, opens, highs, lows, closes, volumes)
	e.computeTraps(c, closes, volumes)
	e.computeSignal(c, opens, closes, volumes)

	return c, nil
}

// Summarize analyzes the series and flattens the latest bar into an
// IndicatorSummary. Returns ErrInsufficientData below the minimum bar count.
func (e *Engine) Summarize(bars model.Series) (*model.IndicatorSummary, error) {
	if len(bars) < e.cfg.MinBars {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(bars), e.cfg.MinBars)
	}
	c, err := e.Analyze(bars)
	if err != nil {
		return nil, err
	}

	last := len(bars) - 1
	prev := last
	if last > 0 {
		prev = last - 1
	}

	s := &model.IndicatorSummary{
		Close:  bars[last].Close,
		Volume: bars[last].Volume,

		EMA20:  orZero(c.EMA20[last]),
		EMA50:  orZero(c.EMA50[last]),
		EMA144: orZero(c.EMA144[last]),
		EMA233: orZero(c.EMA233[last]),

		ADX:     orZero(c.ADX[last]),
		DIPlus:  orZero(c.DIPlus[last]),
		DIMinus: orZero(c.DIMinus[last]),

		CMF:         orZero(c.CMF[last]),
		Chaikin:     orZero(c.Chaikin[last]),
		PrevChaikin: orZero(c.Chaikin[prev]),
		RSI:         orZero(c.RSI[last]),
		MACDHist:    orZero(c.MACDHist[last]),

		ATR:           orZero(c.ATR[last]),
		Supertrend:    orZero(c.Supertrend[last]),
		SupertrendDir: c.SupertrendDir[last],
		Support:       orZero(c.Support[last]),
		Resistance:    orZero(c.Resistance[last]),

		VolAvg:          orZero(c.VolAvg[last]),
		VolClimax:       c.VolClimax[last],
		VolDry:          c.VolDry[last],
		VolAccumulation: c.VolAccum[last],

		Shakeout:      c.Shakeout[last],
		Wyckoff:       c.Wyckoff[last],
		PumpDumpRisk:  c.PumpDump[last],
		ExhaustionTop: c.Exhaustion[last],
		Signal:        c.Signal[last],
	}

	s.IsBullish = s.DIPlus > s.DIMinus
	s.ADXStatus = adxStatus(s.ADX, s.IsBullish)
	s.EMAAligned = emaAlignment(s.EMA20, s.EMA50, s.EMA144, s.EMA233)
	s.Structure = structure(s.Close, s.Support, s.Resistance, s.EMA50)

	// Trailing stop only makes sense with a bullish Supertrend.
	if s.SupertrendDir > 0 && s.ATR > 0 {
		stop := s.Close - 2*s.ATR
		if s.Supertrend > stop {
			stop = s.Supertrend
		}
		s.TrailingStop = stop
	}

	return s, nil
}

func validateSeries(bars model.Series) error {
	for i, b := range bars {
		if b.Close <= 0 || b.High < b.Low {
			return fmt.Errorf("%w: bar %d", ErrMalformedSeries, i)
		}
	}
	return nil
}

func adxStatus(adx float64, bullish bool) string {
	switch {
	case adx > 50:
		return "OVERHEATED"
	case adx > 25 && bullish:
		return "STRONG_UP"
	case adx > 25:
		return "STRONG_DOWN"
	default:
		return "WEAK"
	}
}

func emaAlignment(e20, e50, e144, e233 float64) model.EMAAlignment {
	if e20 == 0 || e50 == 0 || e144 == 0 || e233 == 0 {
		return model.EMAAlignedNone
	}
	if e20 > e50 && e50 > e144 && e144 > e233 {
		return model.EMAAlignedBull
	}
	if e20 < e50 && e50 < e144 && e144 < e233 {
		return model.EMAAlignedBear
	}
	return model.EMAAlignedNone
}

func structure(close, support, resistance, ema50 float64) string {
	switch {
	case support > 0 && close <= support*1.02:
		return "AT_SUPPORT"
	case resistance > 0 && close >= resistance*0.98:
		return "AT_RESISTANCE"
	case ema50 > 0 && close > ema50:
		return "ABOVE_EMA50"
	default:
		return "NEUTRAL"
	}
}

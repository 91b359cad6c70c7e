package model

// WyckoffPhase is the simplified Wyckoff pattern detected on the latest bar.
type WyckoffPhase string

const (
	WyckoffNone     WyckoffPhase = "NONE"
	WyckoffSOS      WyckoffPhase = "SOS"      // sign of strength: confirmed breakout
	WyckoffSOW      WyckoffPhase = "SOW"      // sign of weakness: confirmed breakdown
	WyckoffSpring   WyckoffPhase = "SPRING"   // false breakdown, bullish reversal
	WyckoffUpthrust WyckoffPhase = "UPTHRUST" // false breakout, distribution
)

// SignalTag is the composite latest-bar signal. Priority: Diamond > Muc > Som > Sell.
type SignalTag string

const (
	SignalNone    SignalTag = "NONE"
	SignalDiamond SignalTag = "DIAMOND" // strong confirmed breakout
	SignalMuc     SignalTag = "MUC"     // safe buy
	SignalSom     SignalTag = "SOM"     // speculative early entry
	SignalSell    SignalTag = "SELL"
)

// EMAAlignment describes the relative ordering of the trend EMAs.
type EMAAlignment string

const (
	EMAAlignedNone EMAAlignment = "NONE"
	EMAAlignedBull EMAAlignment = "BULL" // EMA20 > EMA50 > EMA144 > EMA233
	EMAAlignedBear EMAAlignment = "BEAR"
)

// IndicatorSummary is the flat latest-bar record produced by the indicator
// engine. It is a pure function of the input series and is never persisted.
type IndicatorSummary struct {
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`

	// Trend
	EMA20      float64      `json:"ema20"`
	EMA50      float64      `json:"ema50"`
	EMA144     float64      `json:"ema144"`
	EMA233     float64      `json:"ema233"`
	EMAAligned EMAAlignment `json:"ema_aligned"`

	// Trend strength
	ADX       float64 `json:"adx"`
	DIPlus    float64 `json:"di_plus"`
	DIMinus   float64 `json:"di_minus"`
	ADXStatus string  `json:"adx_status"` // OVERHEATED | STRONG_UP | STRONG_DOWN | WEAK
	IsBullish bool    `json:"is_bullish"` // DI+ > DI-

	// Money flow & momentum
	CMF         float64 `json:"cmf"`
	Chaikin     float64 `json:"chaikin"`
	PrevChaikin float64 `json:"prev_chaikin"`
	RSI         float64 `json:"rsi"`
	MACDHist    float64 `json:"macd_hist"`

	// Volatility & stops
	ATR           float64 `json:"atr"`
	Supertrend    float64 `json:"supertrend"`
	SupertrendDir float64 `json:"supertrend_dir"` // +1 bullish, -1 bearish
	TrailingStop  float64 `json:"trailing_stop"`  // 0 when no bullish stop applies
	Support       float64 `json:"support"`
	Resistance    float64 `json:"resistance"`
	Structure     string  `json:"structure"`

	// Volume spread analysis
	VolAvg          float64 `json:"vol_avg"`
	VolClimax       bool    `json:"vol_climax"`
	VolDry          bool    `json:"vol_dry"`
	VolAccumulation bool    `json:"vol_accumulation"`

	// Pattern heuristics
	Shakeout      bool         `json:"shakeout"`
	Wyckoff       WyckoffPhase `json:"wyckoff_phase"`
	PumpDumpRisk  bool         `json:"pump_dump_risk"`
	ExhaustionTop bool         `json:"exhaustion_top"`

	Signal SignalTag `json:"signal"`
}

// Rating is the categorical outcome of signal scoring, ordered strongest first.
type Rating string

const (
	RatingStrongBuy      Rating = "STRONG_BUY"
	RatingSpeculativeBuy Rating = "SPECULATIVE_BUY"
	RatingWatch          Rating = "WATCH"
	RatingNoBuy          Rating = "NO_BUY"
)

// IsBuy reports whether the rating qualifies as a buy classification.
func (r Rating) IsBuy() bool {
	return r == RatingStrongBuy || r == RatingSpeculativeBuy
}

// AnalysisResult is the scored outcome for one symbol. Produced fresh per
// call; a fetch failure yields a fallback value (WATCH, score 0, Err set)
// rather than an error; the Judge treats that as an automatic reject.
type AnalysisResult struct {
	Symbol  string           `json:"symbol"`
	Rating  Rating           `json:"rating"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
	Summary IndicatorSummary `json:"summary"`
	Err     string           `json:"error,omitempty"`
}

// Degraded reports whether this result is a no-tech-data fallback.
func (a AnalysisResult) Degraded() bool { return a.Err != "" }

// MarketStatus is the broad-index health classification.
type MarketStatus string

const (
	MarketSafe   MarketStatus = "SAFE"
	MarketDanger MarketStatus = "DANGER"
)

// MarketContext is the broad-index health check used as a market-wide veto.
type MarketContext struct {
	Status    MarketStatus `json:"status"`
	Reason    string       `json:"reason"`
	Trend     string       `json:"trend"` // UP | DOWN | SIDEWAY
	ChangePts float64      `json:"change_pts"`
	Close     float64      `json:"close"`
	MA20      float64      `json:"ma20"`
}

// Verdict is the Judge's decision for one detected shark order.
type Verdict struct {
	Approved bool           `json:"approved"`
	Reason   string         `json:"reason"`
	Message  string         `json:"message,omitempty"` // formatted alert, approval only
	Analysis AnalysisResult `json:"analysis"`
}

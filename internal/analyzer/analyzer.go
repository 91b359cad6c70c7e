// Package analyzer scores a symbol's technical picture when the shark
// hunter detects a large order, and checks broad-index health as a
// market-wide veto input for the judge.
package analyzer

import (
	"context"
	"log"
	"time"

	"github.com/lordfcde/sharkwatch/internal/indicator"
	"github.com/lordfcde/sharkwatch/internal/model"
)

// HistoryFetcher supplies OHLCV history for a symbol. Implementations must
// honor ctx deadlines; a timeout is treated the same as a fetch failure.
type HistoryFetcher interface {
	History(ctx context.Context, symbol, interval string, lookbackDays int) (model.Series, error)
}

// ResultCache bounds analysis staleness vs API cost. Implementations may
// be remote (Redis) or in-process; a nil cache disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string) (model.AnalysisResult, bool)
	Set(ctx context.Context, key string, res model.AnalysisResult, ttl time.Duration)
}

// Config holds analyzer tunables.
type Config struct {
	Interval      string        // symbol bar interval, default "15m"
	LookbackDays  int           // history window for the symbol interval
	IndexSymbol   string        // broad index, default "VNINDEX"
	IndexLookback int           // daily bars to fetch for market context
	CacheTTL      time.Duration // max AnalysisResult staleness, <=60s
	FailOpen      bool          // market context on fetch failure: true=SAFE
	PanicDropPts  float64       // single-day index drop treated as panic
}

// DefaultConfig returns the production analyzer settings.
func DefaultConfig() Config {
	return Config{
		Interval:      "15m",
		LookbackDays:  10,
		IndexSymbol:   "VNINDEX",
		IndexLookback: 40,
		CacheTTL:      60 * time.Second,
		FailOpen:      true,
		PanicDropPts:  -10.0,
	}
}

// Analyzer runs the indicator engine over fetched history and produces
// scored AnalysisResults. It never returns an error to callers: data
// problems degrade to an explicit fallback result.
type Analyzer struct {
	fetcher HistoryFetcher
	engine  *indicator.Engine
	weights Weights
	cache   ResultCache
	cfg     Config
}

// New creates an Analyzer. cache may be nil.
func New(fetcher HistoryFetcher, engine *indicator.Engine, weights Weights, cache ResultCache, cfg Config) *Analyzer {
	return &Analyzer{
		fetcher: fetcher,
		engine:  engine,
		weights: weights,
		cache:   cache,
		cfg:     cfg,
	}
}

// CheckSignal fetches history for the symbol at the given interval (empty
// interval uses the configured default) and returns a scored result.
// Fetch failures and short series return the fallback result with Err set.
func (a *Analyzer) CheckSignal(ctx context.Context, symbol, interval string) model.AnalysisResult {
	if interval == "" {
		interval = a.cfg.Interval
	}
	key := symbol + ":" + interval
	if a.cache != nil {
		if res, ok := a.cache.Get(ctx, key); ok {
			return res
		}
	}

	res := a.checkSignal(ctx, symbol, interval)
	if a.cache != nil && !res.Degraded() {
		a.cache.Set(ctx, key, res, a.cfg.CacheTTL)
	}
	return res
}

func (a *Analyzer) checkSignal(ctx context.Context, symbol, interval string) model.AnalysisResult {
	bars, err := a.fetcher.History(ctx, symbol, interval, a.cfg.LookbackDays)
	if err != nil {
		log.Printf("[analyzer] history fetch failed for %s: %v", symbol, err)
		return fallbackResult(symbol, "no tech data: fetch failed")
	}
	if len(bars) < 50 {
		return fallbackResult(symbol, "no tech data: insufficient bars")
	}

	summary, err := a.engine.Summarize(bars)
	if err != nil {
		log.Printf("[analyzer] summarize failed for %s: %v", symbol, err)
		return fallbackResult(symbol, "no tech data: calc error")
	}

	score, reasons := Score(*summary, a.weights)
	rating, overrides := Rate(score, *summary, a.weights)

	return model.AnalysisResult{
		Symbol:  symbol,
		Rating:  rating,
		Score:   score,
		Reasons: append(reasons, overrides...),
		Summary: *summary,
	}
}

// MarketContext checks broad-index health: a panic single-day drop or a
// close below the 20-day SMA flags the whole market as DANGER. Fetch
// failure resolves per the FailOpen flag rather than an implicit default.
func (a *Analyzer) MarketContext(ctx context.Context) model.MarketContext {
	bars, err := a.fetcher.History(ctx, a.cfg.IndexSymbol, "1D", a.cfg.IndexLookback)
	if err != nil || len(bars) < 21 {
		if err != nil {
			log.Printf("[analyzer] market context fetch failed: %v", err)
		}
		return a.contextFallback()
	}

	closes := model.Series(bars).Closes()
	ma20 := indicator.SMA(closes, 20)

	last := len(bars) - 1
	lastClose := closes[last]
	ma := ma20[last]
	changePts := lastClose - closes[last-1]

	mc := model.MarketContext{
		Status:    model.MarketSafe,
		Reason:    "market ok",
		Trend:     "SIDEWAY",
		ChangePts: changePts,
		Close:     lastClose,
		MA20:      ma,
	}
	if lastClose > ma {
		mc.Trend = "UP"
	} else {
		mc.Trend = "DOWN"
	}

	switch {
	case changePts < a.cfg.PanicDropPts:
		mc.Status = model.MarketDanger
		mc.Reason = "index panic drop"
	case lastClose < ma:
		mc.Status = model.MarketDanger
		mc.Reason = "index below MA20"
	}
	return mc
}

func (a *Analyzer) contextFallback() model.MarketContext {
	if a.cfg.FailOpen {
		return model.MarketContext{Status: model.MarketSafe, Reason: "no index data, fail-open", Trend: "SIDEWAY"}
	}
	return model.MarketContext{Status: model.MarketDanger, Reason: "no index data, fail-closed", Trend: "SIDEWAY"}
}

// fallbackResult is the explicit degraded value for missing technical data.
// All numeric fields zeroed, rating WATCH, Err set; the judge rejects it.
func fallbackResult(symbol, reason string) model.AnalysisResult {
	return model.AnalysisResult{
		Symbol:  symbol,
		Rating:  model.RatingWatch,
		Score:   0,
		Summary: model.IndicatorSummary{Wyckoff: model.WyckoffNone, Signal: model.SignalNone},
		Err:     reason,
	}
}

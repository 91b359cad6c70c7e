// Package judge makes the final approve/reject call on a detected shark
// order. It runs an ordered kill-switch cascade: each condition can veto
// independently, and the first failing condition short-circuits so the
// verdict reason is always the earliest applicable one.
package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
)

// Signals is the analyzer surface the judge consumes.
type Signals interface {
	CheckSignal(ctx context.Context, symbol, interval string) model.AnalysisResult
	MarketContext(ctx context.Context) model.MarketContext
}

// Config holds the kill-switch thresholds.
type Config struct {
	MinADX            float64 // below this the market is sideways, no trend to ride
	MaxRSI            float64 // above this there is no room left
	MinLiquidity      float64 // minimum 20-bar average volume in shares
	MinRelativeVol    float64 // session volume vs baseline multiple
	RequireVolConfirm bool    // when false, skip the relative-volume gate entirely
}

// DefaultConfig returns the production judge thresholds.
func DefaultConfig() Config {
	return Config{
		MinADX:            20,
		MaxRSI:            75,
		MinLiquidity:      150000,
		MinRelativeVol:    1.5,
		RequireVolConfirm: true,
	}
}

// Judge applies the kill-switch cascade over analyzer output.
type Judge struct {
	signals Signals
	cfg     Config
	now     func() time.Time
}

// New creates a Judge.
func New(signals Signals, cfg Config) *Judge {
	return &Judge{signals: signals, cfg: cfg, now: time.Now}
}

// Judge evaluates a detected shark order and returns the verdict. Rejections
// carry only a reason; approvals also carry a formatted alert message.
func (j *Judge) Judge(ctx context.Context, symbol string, order model.OrderSnapshot) model.Verdict {
	analysis := j.signals.CheckSignal(ctx, symbol, "")

	// 1. No technical data.
	if analysis.Degraded() {
		return reject(analysis, "no technical data")
	}
	s := analysis.Summary

	// 2. Broad-index health overrides any symbol-level signal.
	market := j.signals.MarketContext(ctx)
	if market.Status == model.MarketDanger {
		return reject(analysis, fmt.Sprintf("market danger: %s", market.Reason))
	}

	// 3. No trend to ride.
	if s.ADX < j.cfg.MinADX {
		return reject(analysis, fmt.Sprintf("ADX weak (%.1f < %.0f), sideways", s.ADX, j.cfg.MinADX))
	}

	// 4. Strong confirmed downtrend.
	if s.ADX > 25 && !s.IsBullish {
		return reject(analysis, fmt.Sprintf("ADX strong downtrend (%.1f)", s.ADX))
	}

	// 5. Overbought, no room.
	if s.RSI > j.cfg.MaxRSI {
		return reject(analysis, fmt.Sprintf("RSI overbought (%.1f > %.0f)", s.RSI, j.cfg.MaxRSI))
	}

	// 6. Liquidity floor.
	if s.VolAvg < j.cfg.MinLiquidity {
		return reject(analysis, fmt.Sprintf("illiquid (avg vol %.0f < %.0f)", s.VolAvg, j.cfg.MinLiquidity))
	}

	// 7. Volume confirmation. A climax bar already proves participation.
	relVol := 0.0
	if s.VolAvg > 0 {
		relVol = order.SessionVolume / s.VolAvg
	}
	if j.cfg.RequireVolConfirm && relVol < j.cfg.MinRelativeVol && !s.VolClimax {
		return reject(analysis, fmt.Sprintf("insufficient volume confirmation (%.1fx < %.1fx)", relVol, j.cfg.MinRelativeVol))
	}

	// 8. Trend confirmation failure.
	aboveEMA20 := s.EMA20 <= 0 || s.Close > s.EMA20
	if !aboveEMA20 && s.SupertrendDir <= 0 {
		return reject(analysis, "downtrend: below EMA20 with bearish Supertrend")
	}

	// 9. Pump and dump.
	if s.PumpDumpRisk {
		return reject(analysis, "pump-and-dump risk")
	}

	// 10. Wyckoff weakness patterns.
	if s.Wyckoff == model.WyckoffSOW || s.Wyckoff == model.WyckoffUpthrust {
		return reject(analysis, fmt.Sprintf("Wyckoff %s", s.Wyckoff))
	}

	// 11. Exhaustion-top divergence.
	if s.ExhaustionTop {
		return reject(analysis, "exhaustion top divergence")
	}

	// 12. Rating gate.
	if !analysis.Rating.IsBuy() {
		return reject(analysis, fmt.Sprintf("rating too weak (%s)", analysis.Rating))
	}

	now := j.now()
	msg := formatAlert(symbol, order, analysis, relVol, markethours.SessionBadge(now), now)
	return model.Verdict{
		Approved: true,
		Reason:   "passed all checks",
		Message:  msg,
		Analysis: analysis,
	}
}

func reject(analysis model.AnalysisResult, reason string) model.Verdict {
	return model.Verdict{Approved: false, Reason: reason, Analysis: analysis}
}

package judge

import (
	"fmt"
	"strings"
	"time"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
)

const alertRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// formatAlert builds the approved-signal alert text. Layout mirrors the
// production Telegram message: session badge, shark order summary, the
// 15m technical dashboard, then rating, top reasons and trailing stop.
func formatAlert(symbol string, order model.OrderSnapshot, analysis model.AnalysisResult, relVol float64, badge markethours.Badge, now time.Time) string {
	s := analysis.Summary

	badgeLabel, badgeIcon := badgeLabel(badge)
	valueBn := order.OrderValue / 1_000_000_000
	changeIcon := "📈"
	if order.ChangePercent < 0 {
		changeIcon = "📉"
	}
	trendLabel := "SIDEWAY"
	if s.SupertrendDir > 0 {
		trendLabel = "UPTREND"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s BREAKOUT SIGNAL • %s\n%s\n", alertRule, badgeIcon, badgeLabel, alertRule)
	fmt.Fprintf(&b, "📌 #%s   ⏰ %s\n", symbol, now.In(markethours.ICT).Format("15:04"))
	fmt.Fprintf(&b, "💰 Shark order: %.1f bn VND   %s %+.2f%%\n", valueBn, changeIcon, order.ChangePercent)
	fmt.Fprintf(&b, "📊 Volume: %.1fx the 20-bar average\n\n", relVol)

	fmt.Fprintf(&b, "🧠 TECHNICAL (15M)\n")
	fmt.Fprintf(&b, "• Trend: %s  |  ADX: %.0f%s\n", trendLabel, s.ADX, emaBadge(s.EMAAligned))
	fmt.Fprintf(&b, "• RSI: %.0f  |  CMF: %.2f\n", s.RSI, s.CMF)
	if wb := wyckoffBadge(s.Wyckoff); wb != "" {
		fmt.Fprintf(&b, "• %s\n", wb)
	}

	fmt.Fprintf(&b, "\n🎯 Rating: %s (score %d)\n", analysis.Rating, analysis.Score)

	if len(analysis.Reasons) > 0 {
		fmt.Fprintf(&b, "\n📋 Detail:\n")
		top := analysis.Reasons
		if len(top) > 4 {
			top = top[:4]
		}
		for _, r := range top {
			fmt.Fprintf(&b, "  • %s\n", r)
		}
	}

	if s.TrailingStop > 0 && s.Close > 0 {
		stopPct := (s.Close - s.TrailingStop) / s.Close * 100
		fmt.Fprintf(&b, "🛡️ Trailing stop: %.0f (%.1f%% below price)\n", s.TrailingStop, stopPct)
	}

	b.WriteString(alertRule)
	return b.String()
}

func badgeLabel(badge markethours.Badge) (label, icon string) {
	switch badge {
	case markethours.BadgePrimeOpen:
		return "PRIME (morning drive)", "🔥"
	case markethours.BadgePrimeATC:
		return "PRIME (pre-ATC)", "🔥"
	case markethours.BadgeLunch:
		return "LUNCH (low trust)", "🟡"
	default:
		return "REGULAR SESSION", "🟢"
	}
}

func emaBadge(a model.EMAAlignment) string {
	if a == model.EMAAlignedBull {
		return "  |  EMA stack bullish"
	}
	return ""
}

func wyckoffBadge(w model.WyckoffPhase) string {
	switch w {
	case model.WyckoffSOS:
		return "💎 Wyckoff: SOS (strength confirmed)"
	case model.WyckoffSpring:
		return "🟢 Wyckoff: SPRING (shakeout absorbed)"
	case model.WyckoffNone:
		return ""
	default:
		return fmt.Sprintf("📊 Wyckoff: %s", w)
	}
}

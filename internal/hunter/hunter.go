// Package hunter is the streaming tick classifier: it filters the raw feed
// down to genuine large-order ("shark") events, accumulates buy pressure
// per symbol, and gates evaluation behind a per-(symbol, side) cooldown
// before handing qualified orders to the judge on a worker pool.
package hunter

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lordfcde/sharkwatch/internal/logger"
	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/metrics"
	"github.com/lordfcde/sharkwatch/internal/model"
	"github.com/lordfcde/sharkwatch/internal/notification"
)

// Judger renders the final verdict for a detected shark order.
type Judger interface {
	Judge(ctx context.Context, symbol string, order model.OrderSnapshot) model.Verdict
}

// Watchlist persists approved symbols.
type Watchlist interface {
	Upsert(ctx context.Context, order model.OrderSnapshot, analysis model.AnalysisResult) error
}

// Publisher fans approved verdicts out to downstream consumers.
type Publisher interface {
	PublishApproval(ctx context.Context, verdict model.Verdict)
}

// Config holds the classifier tunables. Everything here is feed- or
// product-calibration and must stay externally configurable.
type Config struct {
	SharkThreshold float64       // minimum notional order value, VND
	DominantMult   float64       // single-order bypass multiple of the threshold
	PressureWindow time.Duration // rolling buy-pressure window
	PressureMin    int           // buys inside the window required to fire
	Cooldown       time.Duration // per-(symbol, side) alert cooldown
	TradingStart   string        // "09:00"
	TradingEnd     string        // "15:15"
	MaxSymbolLen   int           // longer tickers are warrants/derivatives
	SuppressLunch  bool          // demote the 11:30-13:00 window entirely
	HistoryCap     int           // stats ring capacity
	Workers        int           // evaluation worker goroutines
	QueueSize      int           // evaluation queue depth
	Scale          ScaleConfig
}

// DefaultConfig returns the production classifier settings.
func DefaultConfig() Config {
	return Config{
		SharkThreshold: 1_000_000_000,
		DominantMult:   3,
		PressureWindow: 600 * time.Second,
		PressureMin:    2,
		Cooldown:       60 * time.Second,
		TradingStart:   "09:00",
		TradingEnd:     "15:15",
		MaxSymbolLen:   3,
		SuppressLunch:  true,
		HistoryCap:     256,
		Workers:        4,
		QueueSize:      64,
		Scale:          DefaultScaleConfig(),
	}
}

// Hunter drives the tick → classify → pressure → cooldown → judge pipeline.
type Hunter struct {
	cfg      Config
	judge    Judger
	watch    Watchlist
	notifier notification.Notifier
	pub      Publisher
	prom     *metrics.Metrics

	pressure *PressureTracker
	cooldown *CooldownGate
	stats    *Stats

	startMin, endMin int
	jobs             chan model.OrderSnapshot
	now              func() time.Time
}

// New creates a Hunter. watch and notifier may be nil (detection still runs).
func New(cfg Config, judge Judger, watch Watchlist, notifier notification.Notifier, prom *metrics.Metrics) (*Hunter, error) {
	startMin, err := parseHM(cfg.TradingStart)
	if err != nil {
		return nil, fmt.Errorf("hunter: trading start: %w", err)
	}
	endMin, err := parseHM(cfg.TradingEnd)
	if err != nil {
		return nil, fmt.Errorf("hunter: trading end: %w", err)
	}
	if cfg.SharkThreshold <= 0 {
		return nil, fmt.Errorf("hunter: shark threshold must be positive, got %v", cfg.SharkThreshold)
	}
	if cfg.Scale.VolumeScale <= 0 {
		return nil, fmt.Errorf("hunter: volume scale must be positive, got %v", cfg.Scale.VolumeScale)
	}

	return &Hunter{
		cfg:      cfg,
		judge:    judge,
		watch:    watch,
		notifier: notifier,
		prom:     prom,
		pressure: NewPressureTracker(cfg.PressureWindow),
		cooldown: NewCooldownGate(cfg.Cooldown),
		stats:    NewStats(cfg.HistoryCap),
		startMin: startMin,
		endMin:   endMin,
		jobs:     make(chan model.OrderSnapshot, cfg.QueueSize),
		now:      time.Now,
	}, nil
}

// Stats exposes the reporting side-channel.
func (h *Hunter) Stats() *Stats { return h.stats }

// SetPublisher attaches an optional downstream fan-out for approvals.
// Must be called before Run.
func (h *Hunter) SetPublisher(p Publisher) { h.pub = p }

// Run starts the evaluation workers and the maintenance timer.
// Blocks until ctx is done.
func (h *Hunter) Run(ctx context.Context) {
	for i := 0; i < h.cfg.Workers; i++ {
		go h.worker(ctx)
	}

	maint := time.NewTicker(time.Minute)
	defer maint.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-maint.C:
			now := h.now()
			h.pressure.Prune(now)
			h.cooldown.Prune(now)
			h.stats.MaybeReset(now)
		}
	}
}

// OnTick classifies one raw feed payload. Called synchronously from the
// stream callback: it never blocks on network I/O, evaluation is handed
// to the worker pool.
func (h *Hunter) OnTick(raw []byte) {
	if h.prom != nil {
		h.prom.TicksTotal.Inc()
	}
	now := h.now()

	tick, err := ParseTick(raw, h.cfg.Scale, now)
	if err != nil {
		// Skipped, not an error state: the stream goes on.
		if h.prom != nil {
			h.prom.MalformedTicks.Inc()
		}
		return
	}
	h.onTick(tick, now)
}

func (h *Hunter) onTick(tick model.Tick, now time.Time) {
	// Warrants and derivatives are excluded from shark detection.
	if len(tick.Symbol) > h.cfg.MaxSymbolLen {
		return
	}

	// Outside the trading window nothing happens: no analysis, no state.
	if !h.inTradingWindow(now) {
		return
	}

	value := tick.NotionalValue()
	if value < h.cfg.SharkThreshold {
		return // not interesting, not a reject
	}
	if h.prom != nil {
		h.prom.SharkOrders.WithLabelValues(string(tick.Side)).Inc()
	}

	// Statistics side-channel: every qualifying order, fire or not.
	h.stats.Record(model.TradeEvent{
		Symbol:        tick.Symbol,
		Value:         value,
		ChangePercent: tick.ChangePercent,
		Side:          tick.Side,
		Time:          tick.Time,
	})

	// Only buy-side orders build pressure and trigger evaluation.
	if tick.Side != model.SideBuy {
		return
	}

	count := h.pressure.Record(tick.Symbol, now)
	dominant := value >= h.cfg.DominantMult*h.cfg.SharkThreshold
	if count < h.cfg.PressureMin && !dominant {
		return
	}

	if h.cfg.SuppressLunch && markethours.IsLunchBreak(now) {
		if h.prom != nil {
			h.prom.LunchSuppressed.Inc()
		}
		return
	}

	// Cooldown check-and-set happens BEFORE dispatch: a concurrent tick
	// for the same (symbol, side) loses here, not after the async work.
	if !h.cooldown.TryAcquire(tick.Symbol, tick.Side, now) {
		if h.prom != nil {
			h.prom.CooldownSuppressed.Inc()
		}
		return
	}

	order := model.OrderSnapshot{
		Symbol:        tick.Symbol,
		Price:         tick.Price,
		ChangePercent: tick.ChangePercent,
		OrderValue:    value,
		MatchedVolume: tick.MatchedVolume,
		SessionVolume: tick.SessionVolume,
		Side:          tick.Side,
		Time:          tick.Time,
	}

	select {
	case h.jobs <- order:
		if h.prom != nil {
			h.prom.EvaluationsFired.Inc()
		}
	default:
		// Queue full: drop rather than stall the tick path.
		log.Printf("[hunter] evaluation queue full, dropping %s", tick.Symbol)
		if h.prom != nil {
			h.prom.EvaluationsDropped.Inc()
		}
	}
}

func (h *Hunter) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case order := <-h.jobs:
			h.evaluate(ctx, order)
		}
	}
}

// evaluate runs the full analysis + judge pass for one shark order.
// Runs on a worker: blocking I/O here never delays the tick path.
func (h *Hunter) evaluate(ctx context.Context, order model.OrderSnapshot) {
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(order.Symbol, order.Time))
	start := time.Now()
	verdict := h.judge.Judge(ctx, order.Symbol, order)
	if h.prom != nil {
		h.prom.JudgeDuration.Observe(time.Since(start).Seconds())
	}

	if !verdict.Approved {
		// Rejections are silent: only the log and metrics see them.
		log.Printf("[hunter] %s rejected: %s", order.Symbol, verdict.Reason)
		if h.prom != nil {
			h.prom.Rejections.WithLabelValues(rejectLabel(verdict.Reason)).Inc()
		}
		return
	}

	log.Printf("[hunter] %s APPROVED (score %d)", order.Symbol, verdict.Analysis.Score)
	if h.prom != nil {
		h.prom.Approvals.Inc()
	}

	// Delivery is best-effort: a failed send never loses the watchlist entry.
	if h.notifier != nil {
		alert := notification.Alert{
			Level:   notification.AlertInfo,
			Title:   "Breakout signal " + order.Symbol,
			Message: verdict.Message,
		}
		if err := h.notifier.Send(ctx, alert); err != nil {
			log.Printf("[hunter] notify failed for %s: %v", order.Symbol, err)
			if h.prom != nil {
				h.prom.NotifyFailures.Inc()
			}
		}
	}
	if h.watch != nil {
		if err := h.watch.Upsert(ctx, order, verdict.Analysis); err != nil {
			log.Printf("[hunter] watchlist upsert failed for %s: %v", order.Symbol, err)
		}
	}
	if h.pub != nil {
		h.pub.PublishApproval(ctx, verdict)
	}
}

func (h *Hunter) inTradingWindow(now time.Time) bool {
	if !markethours.IsWeekday(now) {
		return false
	}
	local := now.In(markethours.ICT)
	m := local.Hour()*60 + local.Minute()
	return m >= h.startMin && m <= h.endMin
}

// rejectLabel collapses a free-form rejection reason to a bounded metric
// label.
func rejectLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, "no technical data"):
		return "no_data"
	case strings.HasPrefix(reason, "market danger"):
		return "market_danger"
	case strings.HasPrefix(reason, "ADX weak"):
		return "adx_weak"
	case strings.HasPrefix(reason, "ADX strong downtrend"):
		return "adx_downtrend"
	case strings.HasPrefix(reason, "RSI overbought"):
		return "rsi_overbought"
	case strings.HasPrefix(reason, "illiquid"):
		return "illiquid"
	case strings.HasPrefix(reason, "insufficient volume"):
		return "volume"
	case strings.HasPrefix(reason, "downtrend"):
		return "downtrend"
	case strings.HasPrefix(reason, "pump-and-dump"):
		return "pump_dump"
	case strings.HasPrefix(reason, "Wyckoff"):
		return "wyckoff"
	case strings.HasPrefix(reason, "exhaustion"):
		return "exhaustion"
	case strings.HasPrefix(reason, "rating"):
		return "rating"
	default:
		return "other"
	}
}

// parseHM parses "HH:MM" into minutes from midnight.
func parseHM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hh*60 + mm, nil
}

package hunter

import (
	"context"
	"testing"
	"time"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
	"github.com/lordfcde/sharkwatch/internal/notification"
)

type nopJudge struct{}

func (nopJudge) Judge(ctx context.Context, symbol string, order model.OrderSnapshot) model.Verdict {
	return model.Verdict{Approved: false, Reason: "rating too weak (NO_BUY)"}
}

type approveJudge struct{}

func (approveJudge) Judge(ctx context.Context, symbol string, order model.OrderSnapshot) model.Verdict {
	return model.Verdict{
		Approved: true,
		Reason:   "passed all checks",
		Message:  "#" + symbol,
		Analysis: model.AnalysisResult{Symbol: symbol, Rating: model.RatingStrongBuy, Score: 12},
	}
}

type recordingSinks struct {
	upserts   int
	alerts    []notification.Alert
	published int
}

func (r *recordingSinks) Upsert(ctx context.Context, order model.OrderSnapshot, analysis model.AnalysisResult) error {
	r.upserts++
	return nil
}

func (r *recordingSinks) Send(ctx context.Context, alert notification.Alert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingSinks) PublishApproval(ctx context.Context, verdict model.Verdict) {
	r.published++
}

// Monday, inside the morning session.
var tradingNow = time.Date(2025, 3, 3, 9, 30, 0, 0, markethours.ICT)

func newTestHunter(t *testing.T, mutate func(*Config)) *Hunter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 0 // jobs stay queued so tests can observe them
	if mutate != nil {
		mutate(&cfg)
	}
	h, err := New(cfg, nopJudge{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func buyTick(symbol string, value float64) model.Tick {
	return model.Tick{
		Symbol:        symbol,
		Price:         27500,
		MatchedVolume: value / 27500,
		SessionVolume: 500000,
		Side:          model.SideBuy,
		Time:          tradingNow,
	}
}

func TestHunter_PressureGate(t *testing.T) {
	h := newTestHunter(t, nil)
	tick := buyTick("HPG", 1.2e9)

	h.onTick(tick, tradingNow)
	if len(h.jobs) != 0 {
		t.Fatalf("single buy below pressure minimum should not fire")
	}
	h.onTick(tick, tradingNow.Add(time.Minute))
	if len(h.jobs) != 1 {
		t.Fatalf("second buy inside the window should fire, queue len = %d", len(h.jobs))
	}
}

func TestHunter_DominantOrderBypassesPressure(t *testing.T) {
	h := newTestHunter(t, nil)

	// 3x the threshold fires on the first hit.
	h.onTick(buyTick("HPG", 3.5e9), tradingNow)
	if len(h.jobs) != 1 {
		t.Fatalf("dominant order should bypass the pressure gate, queue len = %d", len(h.jobs))
	}
}

func TestHunter_SkipsBelowThreshold(t *testing.T) {
	h := newTestHunter(t, nil)

	h.onTick(buyTick("HPG", 0.5e9), tradingNow)
	h.onTick(buyTick("HPG", 0.5e9), tradingNow)
	if len(h.jobs) != 0 {
		t.Fatalf("sub-threshold orders should never fire")
	}
	if buy, _ := h.stats.Totals(); buy != 0 {
		t.Fatalf("sub-threshold orders should not be recorded, got %v", buy)
	}
}

func TestHunter_SkipsLongSymbols(t *testing.T) {
	h := newTestHunter(t, nil)

	// Warrant-style tickers are longer than 3 characters.
	h.onTick(buyTick("CHPG2501", 5e9), tradingNow)
	if len(h.jobs) != 0 {
		t.Fatalf("warrant symbol should be ignored")
	}
	if buy, _ := h.stats.Totals(); buy != 0 {
		t.Fatalf("warrant symbol should not reach stats, got %v", buy)
	}
}

func TestHunter_TradingWindow(t *testing.T) {
	h := newTestHunter(t, nil)
	cases := []struct {
		name string
		now  time.Time
	}{
		{"before open", time.Date(2025, 3, 3, 8, 30, 0, 0, markethours.ICT)},
		{"after close", time.Date(2025, 3, 3, 15, 30, 0, 0, markethours.ICT)},
		{"saturday", time.Date(2025, 3, 1, 10, 0, 0, 0, markethours.ICT)},
		{"sunday", time.Date(2025, 3, 2, 10, 0, 0, 0, markethours.ICT)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h.onTick(buyTick("HPG", 5e9), tc.now)
			if len(h.jobs) != 0 {
				t.Fatalf("tick outside the trading window should be ignored")
			}
		})
	}
}

func TestHunter_SellSideNeverFires(t *testing.T) {
	h := newTestHunter(t, nil)
	tick := buyTick("HPG", 5e9)
	tick.Side = model.SideSell

	h.onTick(tick, tradingNow)
	h.onTick(tick, tradingNow)
	if len(h.jobs) != 0 {
		t.Fatalf("sell orders must not trigger evaluation")
	}
	// Sells still count for the tape.
	if _, sell := h.stats.Totals(); sell != 10e9 {
		t.Fatalf("sell total = %v, want 10e9", sell)
	}
}

func TestHunter_LunchSuppression(t *testing.T) {
	lunch := time.Date(2025, 3, 3, 12, 0, 0, 0, markethours.ICT)

	h := newTestHunter(t, nil)
	h.onTick(buyTick("HPG", 5e9), lunch)
	if len(h.jobs) != 0 {
		t.Fatalf("lunch-break order should be suppressed")
	}

	h = newTestHunter(t, func(cfg *Config) { cfg.SuppressLunch = false })
	h.onTick(buyTick("HPG", 5e9), lunch)
	if len(h.jobs) != 1 {
		t.Fatalf("with suppression off the lunch order should fire")
	}
}

func TestHunter_CooldownBlocksRepeatFires(t *testing.T) {
	h := newTestHunter(t, nil)

	h.onTick(buyTick("HPG", 5e9), tradingNow)
	h.onTick(buyTick("HPG", 5e9), tradingNow.Add(10*time.Second))
	if len(h.jobs) != 1 {
		t.Fatalf("repeat fire inside the cooldown should be suppressed, queue len = %d", len(h.jobs))
	}

	h.onTick(buyTick("HPG", 5e9), tradingNow.Add(2*time.Minute))
	if len(h.jobs) != 2 {
		t.Fatalf("fire after cooldown expiry should pass, queue len = %d", len(h.jobs))
	}
}

func TestHunter_QueueFullDropsNotBlocks(t *testing.T) {
	h := newTestHunter(t, func(cfg *Config) { cfg.QueueSize = 1 })

	h.onTick(buyTick("HPG", 5e9), tradingNow)
	h.onTick(buyTick("SSI", 5e9), tradingNow) // queue already full
	if len(h.jobs) != 1 {
		t.Fatalf("full queue should drop, not grow, queue len = %d", len(h.jobs))
	}
}

func TestHunter_OnTickMalformedPayload(t *testing.T) {
	h := newTestHunter(t, nil)
	h.now = func() time.Time { return tradingNow }

	h.OnTick([]byte(`not json`))
	h.OnTick([]byte(`{"matchPrice":27.5}`))
	if len(h.jobs) != 0 {
		t.Fatalf("malformed payloads must be skipped")
	}
}

func TestHunter_ConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad trading start", func(c *Config) { c.TradingStart = "9am" }},
		{"bad trading end", func(c *Config) { c.TradingEnd = "25:00" }},
		{"zero threshold", func(c *Config) { c.SharkThreshold = 0 }},
		{"zero volume scale", func(c *Config) { c.Scale.VolumeScale = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := New(cfg, nopJudge{}, nil, nil, nil); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}

func TestHunter_ApprovalFansOut(t *testing.T) {
	sinks := &recordingSinks{}
	cfg := DefaultConfig()
	cfg.Workers = 0
	h, err := New(cfg, approveJudge{}, sinks, sinks, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.SetPublisher(sinks)

	h.evaluate(context.Background(), model.OrderSnapshot{
		Symbol: "HPG", Price: 27500, OrderValue: 2e9, Side: model.SideBuy, Time: tradingNow,
	})

	if sinks.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", sinks.upserts)
	}
	if len(sinks.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(sinks.alerts))
	}
	if got := sinks.alerts[0].Message; got != "#HPG" {
		t.Fatalf("alert message = %q", got)
	}
	if sinks.published != 1 {
		t.Fatalf("published = %d, want 1", sinks.published)
	}
}

func TestHunter_RejectionIsSilent(t *testing.T) {
	sinks := &recordingSinks{}
	cfg := DefaultConfig()
	cfg.Workers = 0
	h, err := New(cfg, nopJudge{}, sinks, sinks, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h.evaluate(context.Background(), model.OrderSnapshot{
		Symbol: "HPG", Price: 27500, OrderValue: 2e9, Side: model.SideBuy, Time: tradingNow,
	})

	if sinks.upserts != 0 || len(sinks.alerts) != 0 {
		t.Fatalf("rejected orders must not notify or persist: %+v", sinks)
	}
}

func TestRejectLabel(t *testing.T) {
	cases := []struct {
		reason string
		want   string
	}{
		{"no technical data", "no_data"},
		{"ADX weak (12.0 < 20), sideways", "adx_weak"},
		{"RSI overbought (82.1 > 70)", "rsi_overbought"},
		{"insufficient volume confirmation (1.1x < 1.5x)", "volume"},
		{"pump-and-dump risk", "pump_dump"},
		{"rating too weak (WATCH)", "rating"},
		{"something novel", "other"},
	}
	for _, tc := range cases {
		if got := rejectLabel(tc.reason); got != tc.want {
			t.Fatalf("rejectLabel(%q) = %q, want %q", tc.reason, got, tc.want)
		}
	}
}

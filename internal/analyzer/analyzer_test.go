package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lordfcde/sharkwatch/internal/indicator"
	"github.com/lordfcde/sharkwatch/internal/model"
)

type fakeFetcher struct {
	series model.Series
	err    error
	calls  int
}

func (f *fakeFetcher) History(ctx context.Context, symbol, interval string, lookbackDays int) (model.Series, error) {
	f.calls++
	return f.series, f.err
}

type fakeCache struct {
	entries map[string]model.AnalysisResult
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]model.AnalysisResult)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (model.AnalysisResult, bool) {
	res, ok := c.entries[key]
	return res, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, res model.AnalysisResult, ttl time.Duration) {
	c.sets++
	c.entries[key] = res
}

// barSeries builds n bars with per-bar close delta and constant volume.
func barSeries(n int, start, delta, volume float64) model.Series {
	bars := make(model.Series, 0, n)
	ts := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		next := price + delta
		high := price
		low := next
		if next > high {
			high, low = next, price
		}
		bars = append(bars, model.Bar{
			TS:     ts.Add(time.Duration(i) * 15 * time.Minute),
			Open:   price,
			High:   high * 1.001,
			Low:    low * 0.999,
			Close:  next,
			Volume: volume,
		})
		price = next
	}
	return bars
}

func newTestAnalyzer(f *fakeFetcher, cache ResultCache) *Analyzer {
	return New(f, indicator.NewEngine(indicator.DefaultConfig()), DefaultWeights(), cache, DefaultConfig())
}

func TestCheckSignal_FetchFailureDegrades(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	a := newTestAnalyzer(f, nil)

	res := a.CheckSignal(context.Background(), "HPG", "")
	if !res.Degraded() {
		t.Fatalf("fetch failure must degrade, got %+v", res)
	}
	if res.Rating != model.RatingWatch || res.Score != 0 {
		t.Fatalf("fallback rating/score = %v/%d", res.Rating, res.Score)
	}
}

func TestCheckSignal_ShortSeriesDegrades(t *testing.T) {
	f := &fakeFetcher{series: barSeries(30, 27000, 10, 100000)}
	a := newTestAnalyzer(f, nil)

	res := a.CheckSignal(context.Background(), "HPG", "15m")
	if !res.Degraded() {
		t.Fatalf("short series must degrade, got %+v", res)
	}
}

func TestCheckSignal_CachesGoodResults(t *testing.T) {
	f := &fakeFetcher{series: barSeries(120, 27000, 10, 100000)}
	cache := newFakeCache()
	a := newTestAnalyzer(f, cache)

	first := a.CheckSignal(context.Background(), "HPG", "15m")
	if first.Degraded() {
		t.Fatalf("expected a scored result, got %+v", first)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	second := a.CheckSignal(context.Background(), "HPG", "15m")
	if f.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1 (second read served from cache)", f.calls)
	}
	if second.Score != first.Score {
		t.Fatalf("cached score = %d, want %d", second.Score, first.Score)
	}
}

func TestCheckSignal_DegradedResultsNotCached(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	cache := newFakeCache()
	a := newTestAnalyzer(f, cache)

	a.CheckSignal(context.Background(), "HPG", "15m")
	a.CheckSignal(context.Background(), "HPG", "15m")
	if cache.sets != 0 {
		t.Fatalf("degraded results must not be cached, sets = %d", cache.sets)
	}
	if f.calls != 2 {
		t.Fatalf("fetcher calls = %d, want 2", f.calls)
	}
}

func TestMarketContext(t *testing.T) {
	cases := []struct {
		name       string
		series     model.Series
		wantStatus model.MarketStatus
		wantReason string
	}{
		{
			name:       "rising index is safe",
			series:     barSeries(25, 1200, 1, 5e8),
			wantStatus: model.MarketSafe,
			wantReason: "market ok",
		},
		{
			name:       "grinding decline below MA20",
			series:     barSeries(25, 1280, -1, 5e8),
			wantStatus: model.MarketDanger,
			wantReason: "index below MA20",
		},
		{
			name: "panic drop",
			series: append(barSeries(24, 1200, 1, 5e8), model.Bar{
				TS: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Open: 1224, High: 1224, Low: 1205, Close: 1206, Volume: 5e8,
			}),
			wantStatus: model.MarketDanger,
			wantReason: "index panic drop",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAnalyzer(&fakeFetcher{series: tc.series}, nil)
			mc := a.MarketContext(context.Background())
			if mc.Status != tc.wantStatus {
				t.Fatalf("status = %v, want %v (reason %q)", mc.Status, tc.wantStatus, mc.Reason)
			}
			if mc.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", mc.Reason, tc.wantReason)
			}
		})
	}
}

func TestMarketContext_FailModes(t *testing.T) {
	f := &fakeFetcher{err: errors.New("timeout")}
	engine := indicator.NewEngine(indicator.DefaultConfig())

	cfg := DefaultConfig()
	cfg.FailOpen = true
	open := New(f, engine, DefaultWeights(), nil, cfg)
	if mc := open.MarketContext(context.Background()); mc.Status != model.MarketSafe {
		t.Fatalf("fail-open status = %v, want SAFE", mc.Status)
	}

	cfg.FailOpen = false
	closed := New(f, engine, DefaultWeights(), nil, cfg)
	if mc := closed.MarketContext(context.Background()); mc.Status != model.MarketDanger {
		t.Fatalf("fail-closed status = %v, want DANGER", mc.Status)
	}
}

package memcache

import (
	"context"
	"testing"
	"time"

	"github.com/lordfcde/sharkwatch/internal/model"
)

func TestCache_GetSet(t *testing.T) {
	c := New()
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if _, ok := c.Get(ctx, "HPG:15m"); ok {
		t.Fatalf("empty cache should miss")
	}

	want := model.AnalysisResult{Symbol: "HPG", Rating: model.RatingStrongBuy, Score: 12}
	c.Set(ctx, "HPG:15m", want, 60*time.Second)

	got, ok := c.Get(ctx, "HPG:15m")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.Symbol != "HPG" || got.Score != 12 {
		t.Fatalf("got %+v", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New()
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set(ctx, "HPG:15m", model.AnalysisResult{Symbol: "HPG"}, 60*time.Second)

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := c.Get(ctx, "HPG:15m"); !ok {
		t.Fatalf("entry should still be live before the TTL")
	}

	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, ok := c.Get(ctx, "HPG:15m"); ok {
		t.Fatalf("entry should expire after the TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired read should evict, len = %d", c.Len())
	}
}

func TestCache_SetSweepsExpired(t *testing.T) {
	c := New()
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set(ctx, "HPG:15m", model.AnalysisResult{Symbol: "HPG"}, time.Second)
	c.Set(ctx, "SSI:15m", model.AnalysisResult{Symbol: "SSI"}, time.Hour)

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Set(ctx, "VND:15m", model.AnalysisResult{Symbol: "VND"}, time.Hour)

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2 (HPG swept)", c.Len())
	}
}

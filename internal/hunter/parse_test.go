package hunter

import (
	"errors"
	"testing"
	"time"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
)

var testNow = time.Date(2025, 3, 3, 9, 30, 0, 0, markethours.ICT)

func TestParseTick_FullPayload(t *testing.T) {
	raw := []byte(`{"symbol":"HPG","matchPrice":27.5,"matchVol":5000,
		"totalVolumeTraded":1200000,"changedRatio":2.4,"side":1,"time":"09:15:30"}`)

	tick, err := ParseTick(raw, DefaultScaleConfig(), testNow)
	if err != nil {
		t.Fatalf("ParseTick: %v", err)
	}
	if tick.Symbol != "HPG" {
		t.Fatalf("symbol = %q", tick.Symbol)
	}
	if tick.Price != 27500 {
		t.Fatalf("price = %v, want 27500 (thousands normalized)", tick.Price)
	}
	if tick.MatchedVolume != 50000 {
		t.Fatalf("volume = %v, want 50000 (scaled x10)", tick.MatchedVolume)
	}
	if tick.SessionVolume != 1200000 {
		t.Fatalf("session volume = %v", tick.SessionVolume)
	}
	if tick.Side != model.SideBuy {
		t.Fatalf("side = %v, want Buy", tick.Side)
	}
	want := time.Date(2025, 3, 3, 9, 15, 30, 0, markethours.ICT)
	if !tick.Time.Equal(want) {
		t.Fatalf("time = %v, want %v", tick.Time, want)
	}
}

func TestParseTick_KeyFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		price  float64
		volume float64
	}{
		{"lastPrice wins", `{"symbol":"SSI","lastPrice":30.0,"price":99.0,"lastVol":100}`, 30000, 1000},
		{"price fallback", `{"symbol":"SSI","price":30.0,"vol":100}`, 30000, 1000},
		{"matchQuantity fallback", `{"symbol":"SSI","matchPrice":30.0,"matchQuantity":100}`, 30000, 1000},
		{"missing fields resolve to zero", `{"symbol":"SSI"}`, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tick, err := ParseTick([]byte(tc.raw), DefaultScaleConfig(), testNow)
			if err != nil {
				t.Fatalf("ParseTick: %v", err)
			}
			if tick.Price != tc.price {
				t.Fatalf("price = %v, want %v", tick.Price, tc.price)
			}
			if tick.MatchedVolume != tc.volume {
				t.Fatalf("volume = %v, want %v", tick.MatchedVolume, tc.volume)
			}
		})
	}
}

func TestParseTick_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"symbol":`},
		{"missing symbol", `{"matchPrice":27.5,"matchVol":5000}`},
		{"empty payload", ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTick([]byte(tc.raw), DefaultScaleConfig(), testNow)
			if !errors.Is(err, errMalformedTick) {
				t.Fatalf("err = %v, want errMalformedTick", err)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	sc := DefaultScaleConfig()
	cases := []struct {
		raw, want float64
	}{
		{27.5, 27500},   // thousands quote
		{999, 999000},   // just under the bound
		{27500, 27500},  // already full VND
		{1000, 1000},    // at the bound, untouched
		{0, 0},
	}
	for _, tc := range cases {
		if got := sc.NormalizePrice(tc.raw); got != tc.want {
			t.Fatalf("NormalizePrice(%v) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseSideCodes(t *testing.T) {
	cases := []struct {
		raw  string
		want model.Side
	}{
		{`{"symbol":"HPG","side":1}`, model.SideBuy},
		{`{"symbol":"HPG","side":2}`, model.SideSell},
		{`{"symbol":"HPG","side":9}`, model.SideUnknown},
		{`{"symbol":"HPG"}`, model.SideUnknown},
	}
	for _, tc := range cases {
		tick, err := ParseTick([]byte(tc.raw), DefaultScaleConfig(), testNow)
		if err != nil {
			t.Fatalf("ParseTick: %v", err)
		}
		if tick.Side != tc.want {
			t.Fatalf("side for %s = %v, want %v", tc.raw, tick.Side, tc.want)
		}
	}
}

func TestParseMatchTime_Fallback(t *testing.T) {
	tick, err := ParseTick([]byte(`{"symbol":"HPG","time":"garbage"}`), DefaultScaleConfig(), testNow)
	if err != nil {
		t.Fatalf("ParseTick: %v", err)
	}
	if !tick.Time.Equal(testNow) {
		t.Fatalf("unparseable match time should fall back to now, got %v", tick.Time)
	}
}

package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHistory_FetchAndParse(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"symbol":     r.URL.Query().Get("symbol"),
			"resolution": r.URL.Query().Get("resolution"),
		}
		w.Write([]byte(`{"s":"ok","t":[1700000000,1700000900],"o":[27.0,27.2],"h":[27.5,27.6],"l":[26.8,27.1],"c":[27.2,27.5],"v":[120000,95000]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	series, err := c.History(context.Background(), "HPG", "15m", 30)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotQuery["symbol"] != "HPG" || gotQuery["resolution"] != "15" {
		t.Fatalf("query = %v", gotQuery)
	}
	if len(series) != 2 {
		t.Fatalf("bars = %d, want 2", len(series))
	}
	if series[0].Close != 27200 {
		t.Fatalf("close = %v, want 27200 (thousands scaled)", series[0].Close)
	}
	if series[1].Volume != 95000 {
		t.Fatalf("volume = %v", series[1].Volume)
	}
	if !series[0].TS.Before(series[1].TS) {
		t.Fatalf("bars must be oldest first")
	}
}

func TestHistory_UnsupportedInterval(t *testing.T) {
	c := NewClient("http://unused", nil)
	if _, err := c.History(context.Background(), "HPG", "42m", 30); err == nil {
		t.Fatalf("expected unsupported interval error")
	}
	if _, err := c.History(context.Background(), "HPG", "15m", 0); err == nil {
		t.Fatalf("expected lookback validation error")
	}
}

func TestHistory_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"s":"ok","t":[1700000000],"o":[27.0],"h":[27.5],"l":[26.8],"c":[27.2],"v":[120000]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	series, err := c.History(context.Background(), "HPG", "15m", 30)
	if err != nil {
		t.Fatalf("History after retries: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(series) != 1 {
		t.Fatalf("bars = %d, want 1", len(series))
	}
}

func TestParseSeries(t *testing.T) {
	c := NewClient("http://unused", nil)

	cases := []struct {
		name    string
		body    string
		wantN   int
		wantErr string
	}{
		{
			name:  "happy path",
			body:  `{"s":"ok","t":[1,2],"o":[27,28],"h":[29,29],"l":[26,27],"c":[28,28.5],"v":[100,200]}`,
			wantN: 2,
		},
		{
			name:  "short column truncates",
			body:  `{"s":"ok","t":[1,2,3],"o":[27,28],"h":[29,29],"l":[26,27],"c":[28,28.5],"v":[100,200]}`,
			wantN: 2,
		},
		{
			name:  "zero close skipped",
			body:  `{"s":"ok","t":[1,2],"o":[27,28],"h":[29,29],"l":[26,27],"c":[0,28.5],"v":[100,200]}`,
			wantN: 1,
		},
		{
			name:    "no_data status",
			body:    `{"s":"no_data"}`,
			wantErr: "chart status",
		},
		{
			name:    "invalid json",
			body:    `{"s":`,
			wantErr: "invalid JSON",
		},
		{
			name:    "empty columns",
			body:    `{"s":"ok","t":[],"o":[],"h":[],"l":[],"c":[],"v":[]}`,
			wantErr: "empty history",
		},
		{
			name:    "all closes unusable",
			body:    `{"s":"ok","t":[1],"o":[27],"h":[29],"l":[26],"c":[0],"v":[100]}`,
			wantErr: "no usable bars",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := c.parseSeries([]byte(tc.body), "HPG")
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSeries: %v", err)
			}
			if len(series) != tc.wantN {
				t.Fatalf("bars = %d, want %d", len(series), tc.wantN)
			}
		})
	}
}

func TestScalePrice(t *testing.T) {
	c := NewClient("http://unused", nil)
	cases := []struct {
		in, want float64
	}{
		{27.2, 27200}, // thousands quote
		{27200, 27200},
		{1254.3, 1254.3}, // index level passes through
		{0, 0},
	}
	for _, tc := range cases {
		if got := c.scalePrice(tc.in); got != tc.want {
			t.Fatalf("scalePrice(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

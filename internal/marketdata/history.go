// Package marketdata fetches historical OHLCV bars over the broker chart API.
package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lordfcde/sharkwatch/internal/metrics"
	"github.com/lordfcde/sharkwatch/internal/model"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxRetries         = 3
	retryDelay         = 500 * time.Millisecond
	retryDelay429      = 5 * time.Second
)

const userAgent = "sharkwatch/1.0"

// resolution maps bar intervals to the chart API resolution parameter.
var resolution = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"1D":  "1D",
}

// Client fetches bar history from a TradingView-style chart endpoint.
// The endpoint returns parallel column arrays t/o/h/l/c/v with a status field.
type Client struct {
	baseURL    string
	httpClient *http.Client
	prom       *metrics.Metrics

	// PriceThousands rescales quotes delivered in thousands of VND.
	PriceThousands float64
}

// NewClient creates a history client against the given chart API base URL.
func NewClient(baseURL string, prom *metrics.Metrics) *Client {
	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: defaultHTTPTimeout},
		prom:           prom,
		PriceThousands: 1000,
	}
}

// History fetches OHLCV bars for symbol at the given interval covering
// lookbackDays calendar days, oldest bar first.
func (c *Client) History(ctx context.Context, symbol, interval string, lookbackDays int) (model.Series, error) {
	res, ok := resolution[interval]
	if !ok {
		return nil, fmt.Errorf("marketdata: unsupported interval %q", interval)
	}
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("marketdata: lookbackDays must be positive, got %d", lookbackDays)
	}

	now := time.Now()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", res)
	q.Set("from", fmt.Sprintf("%d", now.AddDate(0, 0, -lookbackDays).Unix()))
	q.Set("to", fmt.Sprintf("%d", now.Unix()))

	start := time.Now()
	body, err := c.doWithRetry(ctx, c.baseURL+"?"+q.Encode())
	if c.prom != nil {
		c.prom.HistoryFetchDur.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch %s %s: %w", symbol, interval, err)
	}

	return c.parseSeries(body, symbol)
}

func (c *Client) doWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryDelay
			if lastErr != nil && lastErr == errTooManyRequests {
				backoff = retryDelay429
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = errTooManyRequests
			} else {
				lastErr = fmt.Errorf("http %d", resp.StatusCode)
			}
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

var errTooManyRequests = fmt.Errorf("http 429")

// parseSeries decodes the column-array chart payload into a bar series.
// Bars with non-positive close are skipped; short columns truncate the row set.
func (c *Client) parseSeries(body []byte, symbol string) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("marketdata: invalid JSON for %s", symbol)
	}
	if status := gjson.GetBytes(body, "s"); status.Exists() && status.String() != "ok" {
		return nil, fmt.Errorf("marketdata: chart status %q for %s", status.String(), symbol)
	}

	ts := gjson.GetBytes(body, "t").Array()
	opens := gjson.GetBytes(body, "o").Array()
	highs := gjson.GetBytes(body, "h").Array()
	lows := gjson.GetBytes(body, "l").Array()
	closes := gjson.GetBytes(body, "c").Array()
	vols := gjson.GetBytes(body, "v").Array()

	n := len(ts)
	for _, col := range [][]gjson.Result{opens, highs, lows, closes, vols} {
		if len(col) < n {
			n = len(col)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("marketdata: empty history for %s", symbol)
	}

	bars := make(model.Series, 0, n)
	for i := 0; i < n; i++ {
		cl := c.scalePrice(closes[i].Float())
		if cl <= 0 {
			continue
		}
		bars = append(bars, model.Bar{
			TS:     time.Unix(ts[i].Int(), 0),
			Open:   c.scalePrice(opens[i].Float()),
			High:   c.scalePrice(highs[i].Float()),
			Low:    c.scalePrice(lows[i].Float()),
			Close:  cl,
			Volume: vols[i].Float(),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("marketdata: no usable bars for %s", symbol)
	}
	return bars, nil
}

// scalePrice brings thousands-of-VND quotes to full VND. Index levels and
// already-scaled prices pass through untouched.
func (c *Client) scalePrice(p float64) float64 {
	if p > 0 && p < c.PriceThousands {
		return p * c.PriceThousands
	}
	return p
}

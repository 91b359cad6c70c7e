// Package feed streams real-time trade ticks from the market data
// WebSocket gateway and hands raw payloads to the detection pipeline.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lordfcde/sharkwatch/internal/metrics"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	pongWait         = 60 * time.Second
	pingInterval     = 25 * time.Second

	reconnectMin  = 1 * time.Second
	reconnectMax  = 60 * time.Second
	reconnectMult = 2
)

// Config holds the feed connection settings.
type Config struct {
	URL     string
	Token   string   // optional bearer token for the gateway
	Symbols []string // stock symbols to subscribe
	Indexes []string // index topics to subscribe (market context)
}

// Client maintains a WebSocket subscription to per-symbol trade topics.
// It reconnects with exponential backoff and resubscribes after each
// successful dial.
type Client struct {
	cfg     Config
	handler func(raw []byte)
	prom    *metrics.Metrics
	health  *metrics.HealthStatus
}

// New creates a feed client. handler is invoked for every data frame and
// must not block.
func New(cfg Config, handler func(raw []byte), prom *metrics.Metrics, health *metrics.HealthStatus) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed: URL is required")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("feed: at least one symbol is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("feed: handler is required")
	}
	return &Client{cfg: cfg, handler: handler, prom: prom, health: health}, nil
}

// Run connects and streams until ctx is cancelled. Transient failures are
// retried with exponential backoff; the error return is always ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	backoff := reconnectMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		connectedAt := time.Now()
		err := c.runOnce(ctx)
		if c.health != nil {
			c.health.SetFeedConnected(false)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A session that survived a while earns a fresh backoff.
		if time.Since(connectedAt) > reconnectMax {
			backoff = reconnectMin
		}
		log.Printf("[feed] session ended: %v, reconnecting in %s", err, backoff)
		if c.prom != nil {
			c.prom.FeedReconnects.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= reconnectMult
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial: %w (status %s)", err, resp.Status)
		}
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	log.Printf("[feed] connected to %s, subscribing %d symbols", c.cfg.URL, len(c.cfg.Symbols))
	if err := c.subscribe(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if c.health != nil {
		c.health.SetFeedConnected(true)
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go c.keepAlive(ctx, conn, done)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if c.health != nil {
			c.health.SetLastTickTime(time.Now())
		}
		c.handler(msg)
	}
}

// subscribe registers one topic per symbol plus the index topics.
func (c *Client) subscribe(conn *websocket.Conn) error {
	topics := make([]string, 0, len(c.cfg.Symbols)+len(c.cfg.Indexes))
	for _, sym := range c.cfg.Symbols {
		topics = append(topics, "quotes/stockinfo/symbol/"+sym)
	}
	for _, idx := range c.cfg.Indexes {
		topics = append(topics, "quotes/index/"+idx)
	}

	sub := struct {
		Type   string   `json:"type"`
		Topics []string `json:"topics"`
	}{Type: "subscribe", Topics: topics}

	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[feed] ping write error: %v", err)
				conn.Close()
				return
			}
		}
	}
}

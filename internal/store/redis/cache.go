// Package redis caches analysis results so repeated shark hits on the same
// symbol within the TTL reuse one history fetch. A down Redis degrades to
// cache misses behind a circuit breaker; it never blocks detection.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/lordfcde/sharkwatch/internal/model"
)

const (
	keyPrefix       = "sharkwatch:analysis:"
	approvalChannel = "sharkwatch:approvals"

	breakerMaxFailures  = 5
	breakerResetTimeout = 10 * time.Second
)

// CacheConfig configures the Redis analysis cache.
type CacheConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache stores scored analysis results with a TTL and publishes approved
// signals for external consumers.
type Cache struct {
	client  *goredis.Client
	breaker *CircuitBreaker
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates the cache and pings the server.
func New(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	breaker := NewCircuitBreaker(breakerMaxFailures, breakerResetTimeout)
	breaker.OnStateChange = func(from, to State) {
		log.Printf("[redis] circuit breaker %s -> %s", from, to)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client, breaker: breaker}, nil
}

// Get returns the cached result for key, or ok=false on miss or any
// Redis failure.
func (c *Cache) Get(ctx context.Context, key string) (model.AnalysisResult, bool) {
	var res model.AnalysisResult
	found := false
	err := c.breaker.Execute(func() error {
		raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
		if err == goredis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &res); err != nil {
			// Stale or foreign payload, treat as a miss.
			log.Printf("[redis] undecodable cache entry for %s: %v", key, err)
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		if err != ErrCircuitOpen {
			log.Printf("[redis] get %s: %v", key, err)
		}
		return model.AnalysisResult{}, false
	}
	return res, found
}

// Set stores res under key with the given TTL. Failures are logged only.
func (c *Cache) Set(ctx context.Context, key string, res model.AnalysisResult, ttl time.Duration) {
	err := c.breaker.Execute(func() error {
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return c.client.Set(ctx, keyPrefix+key, raw, ttl).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] set %s: %v", key, err)
	}
}

// PublishApproval pushes an approved verdict onto the approvals channel so
// external tools can follow the signal stream. Best effort.
func (c *Cache) PublishApproval(ctx context.Context, verdict model.Verdict) {
	err := c.breaker.Execute(func() error {
		raw, err := json.Marshal(verdict)
		if err != nil {
			return err
		}
		return c.client.Publish(ctx, approvalChannel, raw).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] publish approval %s: %v", verdict.Analysis.Symbol, err)
	}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

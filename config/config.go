package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Market data feed
	FeedURL     string
	FeedToken   string
	Symbols     string // comma-separated, e.g. "HPG,SSI,VND"
	IndexSymbol string

	// History chart API
	HistoryURL string

	// Detection thresholds
	SharkMinValue    float64 // VND notional per order
	SharkVolumeScale float64 // raw feed volume multiplier
	DominantMult     float64
	PressureWindow   int // seconds
	PressureMin      int
	CooldownSeconds  int
	TradingStart     string // "HH:MM"
	TradingEnd       string
	SuppressLunch    bool

	// Judge
	RequireVolumeConfirmation bool
	MarketContextFailOpen     bool
	MinLiquidity              float64
	MaxRSI                    float64

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string

	// Notification
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string
}

// Load reads configuration from environment variables with sensible defaults.
// Only the feed endpoint and symbol list are mandatory.
func Load() *Config {
	return &Config{
		FeedURL:     mustEnv("FEED_URL"),
		FeedToken:   getEnv("FEED_TOKEN", ""),
		Symbols:     mustEnv("SYMBOLS"),
		IndexSymbol: getEnv("INDEX_SYMBOL", "VNINDEX"),

		HistoryURL: mustEnv("HISTORY_API_URL"),

		SharkMinValue:    getEnvFloat("SHARK_MIN_VALUE", 1_000_000_000),
		SharkVolumeScale: getEnvFloat("SHARK_VOLUME_SCALE", 10),
		DominantMult:     getEnvFloat("SHARK_DOMINANT_MULT", 3),
		PressureWindow:   getEnvInt("PRESSURE_WINDOW_SECONDS", 600),
		PressureMin:      getEnvInt("PRESSURE_MIN_COUNT", 2),
		CooldownSeconds:  getEnvInt("COOLDOWN_SECONDS", 60),
		TradingStart:     getEnv("TRADING_START", "09:00"),
		TradingEnd:       getEnv("TRADING_END", "15:15"),
		SuppressLunch:    getEnvBool("SUPPRESS_LUNCH", true),

		RequireVolumeConfirmation: getEnvBool("REQUIRE_VOLUME_CONFIRMATION", true),
		MarketContextFailOpen:     getEnvBool("MARKET_CONTEXT_FAIL_OPEN", true),
		MinLiquidity:              getEnvFloat("MIN_LIQUIDITY_SHARES", 150_000),
		MaxRSI:                    getEnvFloat("MAX_RSI", 75),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/watchlist.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// ParseSymbols splits the Symbols string into a cleaned, uppercased slice.
func (c *Config) ParseSymbols() []string {
	parts := strings.Split(c.Symbols, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid bool for %s: %q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

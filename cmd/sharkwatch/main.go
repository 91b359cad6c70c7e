package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lordfcde/sharkwatch/config"
	"github.com/lordfcde/sharkwatch/internal/analyzer"
	"github.com/lordfcde/sharkwatch/internal/feed"
	"github.com/lordfcde/sharkwatch/internal/hunter"
	"github.com/lordfcde/sharkwatch/internal/indicator"
	"github.com/lordfcde/sharkwatch/internal/judge"
	"github.com/lordfcde/sharkwatch/internal/logger"
	"github.com/lordfcde/sharkwatch/internal/marketdata"
	"github.com/lordfcde/sharkwatch/internal/metrics"
	"github.com/lordfcde/sharkwatch/internal/notification"
	"github.com/lordfcde/sharkwatch/internal/store/memcache"
	redisstore "github.com/lordfcde/sharkwatch/internal/store/redis"
	"github.com/lordfcde/sharkwatch/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[sharkwatch] starting...")

	// ---- Load .env if present, then config from env ----
	if err := godotenv.Load(); err == nil {
		log.Println("[sharkwatch] loaded .env")
	}
	cfg := config.Load()
	logger.Init("sharkwatch", slog.LevelInfo)

	symbols := cfg.ParseSymbols()
	if len(symbols) == 0 {
		log.Fatal("[sharkwatch] SYMBOLS resolved to an empty list")
	}
	log.Printf("[sharkwatch] watching %d symbols, index %s", len(symbols), cfg.IndexSymbol)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Watchlist store (SQLite, single writer) ----
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	store, err := watchlist.New(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[sharkwatch] watchlist init failed: %v", err)
	}
	defer store.Close()
	health.SetSQLiteOK(true)

	// ---- Redis analysis cache (optional) ----
	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		cache, err = redisstore.New(redisstore.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[sharkwatch] WARNING: redis init failed: %v (continuing without cache)", err)
		} else {
			health.SetRedisConnected(true)
			defer cache.Close()
		}
	}

	// ---- Periodic liveness checks ----
	if cache != nil {
		health.StartLivenessChecker(ctx, cache.Client(), store.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 10*time.Second)
	}

	// ---- Analysis stack: history -> indicators -> scoring -> judge ----
	history := marketdata.NewClient(cfg.HistoryURL, prom)

	anaCfg := analyzer.DefaultConfig()
	anaCfg.IndexSymbol = cfg.IndexSymbol
	anaCfg.FailOpen = cfg.MarketContextFailOpen

	engine := indicator.NewEngine(indicator.DefaultConfig())

	var resultCache analyzer.ResultCache = memcache.New()
	if cache != nil {
		resultCache = cache
	}
	ana := analyzer.New(history, engine, analyzer.DefaultWeights(), resultCache, anaCfg)

	judgeCfg := judge.DefaultConfig()
	judgeCfg.MaxRSI = cfg.MaxRSI
	judgeCfg.MinLiquidity = cfg.MinLiquidity
	judgeCfg.RequireVolConfirm = cfg.RequireVolumeConfirmation
	jdg := judge.New(ana, judgeCfg)

	// ---- Notification backends ----
	var backends notification.MultiNotifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		tg, err := notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("[sharkwatch] telegram init failed: %v", err)
		}
		backends = append(backends, tg)
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	var notifier notification.Notifier
	switch len(backends) {
	case 0:
		log.Println("[sharkwatch] no alert channel configured, logging alerts only")
		notifier = notification.NewLogNotifier()
	case 1:
		notifier = backends[0]
	default:
		notifier = backends
	}

	// ---- Hunter: the streaming detection pipeline ----
	huntCfg := hunter.DefaultConfig()
	huntCfg.SharkThreshold = cfg.SharkMinValue
	huntCfg.DominantMult = cfg.DominantMult
	huntCfg.PressureWindow = time.Duration(cfg.PressureWindow) * time.Second
	huntCfg.PressureMin = cfg.PressureMin
	huntCfg.Cooldown = time.Duration(cfg.CooldownSeconds) * time.Second
	huntCfg.TradingStart = cfg.TradingStart
	huntCfg.TradingEnd = cfg.TradingEnd
	huntCfg.SuppressLunch = cfg.SuppressLunch
	huntCfg.Scale.VolumeScale = cfg.SharkVolumeScale

	hunt, err := hunter.New(huntCfg, jdg, store, notifier, prom)
	if err != nil {
		log.Fatalf("[sharkwatch] hunter init failed: %v", err)
	}
	if cache != nil {
		hunt.SetPublisher(cache)
	}
	go hunt.Run(ctx)

	// ---- Feed: WebSocket tick stream ----
	stream, err := feed.New(feed.Config{
		URL:     cfg.FeedURL,
		Token:   cfg.FeedToken,
		Symbols: symbols,
		Indexes: []string{cfg.IndexSymbol},
	}, hunt.OnTick, prom, health)
	if err != nil {
		log.Fatalf("[sharkwatch] feed init failed: %v", err)
	}
	go func() {
		if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[sharkwatch] feed stopped: %v", err)
		}
	}()

	log.Printf("[sharkwatch] pipeline ready: threshold %.0f VND, cooldown %ds, pressure %d in %ds",
		cfg.SharkMinValue, cfg.CooldownSeconds, cfg.PressureMin, cfg.PressureWindow)

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[sharkwatch] shutdown signal received, cleaning up...")
	cancel()

	// Final session report before the process exits.
	log.Printf("[sharkwatch] session stats:\n%s", hunt.Stats().Report())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)

	log.Println("[sharkwatch] shutdown complete.")
}

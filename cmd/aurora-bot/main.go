package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/aurora-bot/internal/api/http"
	"github.com/i474232898/aurora-bot/internal/bot"
	"github.com/i474232898/aurora-bot/internal/config"
	"github.com/i474232898/aurora-bot/internal/monitor"
	"github.com/i474232898/aurora-bot/internal/notify"
	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/scheduler"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
	"github.com/i474232898/aurora-bot/internal/spaceweather/sources"
	"github.com/i474232898/aurora-bot/internal/store"
	"github.com/i474232898/aurora-bot/internal/telegram"
)

func main() {
	os.Exit(run())
}

// run wires and serves the bot. Returning instead of exiting lets deferred
// cleanup run on bootstrap failures.
func run() int {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound source calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	if cfg.WeatherAPIToken == "" {
		log.Warn("WEATHER_API_TOKEN is not set; weather data will be unavailable")
	}

	clock := clockwork.NewRealClock()
	aggregator := spaceweather.NewAggregator(spaceweather.Sources{
		Aurora:    sources.NewOvationSource(httpClient, log, metrics),
		Planetary: sources.NewKpIndexSource(httpClient, log, metrics),
		Regional:  sources.NewRxIndexSource(httpClient, cfg.RegionalStation, log, metrics),
		Weather:   sources.NewOpenWeatherSource(httpClient, cfg.WeatherAPIToken, cfg.WeatherStationID, log, metrics),
	}, clock, log)

	tg, err := telegram.New(cfg.TelegramToken, log)
	if err != nil {
		log.Error("failed to start telegram bot", "error", err)
		return 1
	}

	subscribers, closeStore, err := newSubscriberStore(cfg, log)
	if err != nil {
		log.Error("failed to open subscriber store", "error", err)
		return 1
	}
	defer closeStore()

	dispatcher := notify.NewDispatcher(tg, subscribers, log, metrics)
	bot.New(aggregator, subscribers, tg, cfg.Place(), log, metrics).Register(tg)

	// Scheduler that periodically checks the K-index.
	mon := monitor.New(aggregator, dispatcher, clock, log, metrics)
	sched := scheduler.New(scheduler.TickerFunc(func(ctx context.Context) {
		mon.Tick(ctx)
	}), cfg.MonitorInterval, cfg.TickTimeout, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		return 1
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "aurora-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Snapshots:   aggregator,
		Index:       aggregator,
		Subscribers: subscribers,
		Place:       cfg.Place(),
	})

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tg.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sched.Stop()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
		return 1
	}
	return 0
}

// newSubscriberStore opens the configured backend. The returned func releases it.
func newSubscriberStore(cfg *config.AppConfig, log *slog.Logger) (spaceweather.SubscriberStore, func(), error) {
	switch cfg.SubscriberBackend {
	case config.BackendRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		rs := store.NewRedisStore(client, cfg.RedisKey)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info("subscriber store ready", "backend", config.BackendRedis, "key", cfg.RedisKey)
		return rs, func() { _ = client.Close() }, nil

	case config.BackendMemory:
		log.Warn("subscriber store is in-memory; subscriptions will not survive a restart")
		return store.NewMemoryStore(), func() {}, nil

	default:
		log.Info("subscriber store ready", "backend", config.BackendFile, "path", cfg.SubscribersFile)
		return store.NewFileStore(cfg.SubscribersFile), func() {}, nil
	}
}

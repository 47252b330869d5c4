package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turfkiosk/internal/config"
	"turfkiosk/internal/domain"
	"turfkiosk/internal/events"
	"turfkiosk/internal/history"
	"turfkiosk/internal/logging"
	"turfkiosk/internal/metrics"
	"turfkiosk/internal/models"
	"turfkiosk/internal/repository"
	"turfkiosk/internal/service"
	"turfkiosk/internal/turfzone"
	"turfkiosk/internal/web"
	"turfkiosk/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger("kiosk-main")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	redisClient, sessionRepo := initSessionRepository(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	client := turfzone.NewClient(cfg.Upstream.BaseURL, turfzone.StaticToken(cfg.Upstream.CSRFToken), logging.Component(logger, "turfzone"))
	client.SetTimeout(time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second)

	eventBus := events.NewEventBus()
	flow := service.NewFlowService(client, sessionRepo, eventBus, logging.Component(logger, "flow"))

	var historyStore *history.Store
	if cfg.History.Enabled {
		historyStore, err = history.Open(cfg.History.Path, logging.Component(logger, "history"))
		if err != nil {
			return err
		}
		defer historyStore.Close()
		history.SubscribeConfirmations(eventBus, historyStore, logging.Component(logger, "history"))
	}

	retryPolicy := worker.RetryPolicy{MaxRetries: 3, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	refresher := worker.NewRefresher(
		flow,
		time.Duration(cfg.Sessions.RefreshIntervalSeconds)*time.Second,
		time.Duration(models.SessionIdleTimeout)*time.Second,
		retryPolicy,
		logging.Component(logger, "refresher"),
	)
	go refresher.Start(ctx)

	server := web.NewServer(cfg.Kiosk, cfg.Sessions, flow, cfg.Facilities, logging.Component(logger, "web"))
	if historyStore != nil {
		server.EnableHistory(historyStore, cfg.History.ExportPath)
	}
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("Kiosk server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger(component string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logging.Component(baseLogger, component), closer, nil
}

func initSessionRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SessionRepository) {
	ttl := time.Duration(cfg.Sessions.TTLSeconds) * time.Second
	fallback := repository.NewMemorySessionRepository(ttl)

	if cfg.Redis.Address == "" {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	return redisClient, repository.NewFailoverSessionRepository(primary, fallback, logger)
}

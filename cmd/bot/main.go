package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turfkiosk/internal/bot"
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
	"turfkiosk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger("bot-main")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if !cfg.Telegram.Enabled {
		logger.Error().Msg("Telegram is disabled in configuration")
		return os.ErrInvalid
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

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, logging.Component(logger, "history"))
		if err != nil {
			return err
		}
		defer store.Close()
		history.SubscribeConfirmations(eventBus, store, logging.Component(logger, "history"))
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

	return startBot(ctx, cfg, flow, logger)
}

func startBot(ctx context.Context, cfg *config.Config, flow domain.FlowManager, logger *zerolog.Logger) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	telegramBot := bot.NewBot(bot.Wrap(botAPI), cfg, flow, logging.Component(logger, "bot"))

	logger.Info().Msg("Bot started...")
	telegramBot.Start(ctx)

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

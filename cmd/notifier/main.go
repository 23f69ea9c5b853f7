package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	appcfg "pw-announcer/internal/config"
	"pw-announcer/internal/domain/entity"
	fileRepo "pw-announcer/internal/infra/adapter/persistence/file"
	pgRepo "pw-announcer/internal/infra/adapter/persistence/postgres"
	"pw-announcer/internal/infra/db"
	"pw-announcer/internal/infra/notifier"
	"pw-announcer/internal/infra/remote"
	workerPkg "pw-announcer/internal/infra/worker"
	"pw-announcer/internal/repository"
	"pw-announcer/internal/usecase/deliver"
	"pw-announcer/internal/usecase/poll"
	"pw-announcer/internal/usecase/track"
	envcfg "pw-announcer/pkg/config"
)

// bootstrapTimeout bounds the startup credential verification.
const bootstrapTimeout = 30 * time.Second

func main() {
	logger := initLogger()

	configPath := envcfg.GetEnvString("CONFIG_PATH", "config.yaml")
	store, err := appcfg.NewStore(configPath)
	if err != nil {
		logger.Error("failed to load configuration",
			slog.String("path", configPath),
			slog.Any("error", err))
		os.Exit(1)
	}
	cfg := store.Current()
	logger.Info("configuration loaded",
		slog.String("path", configPath),
		slog.Duration("interval", cfg.Interval.Std()),
		slog.String("scope_mode", cfg.ScopeMode),
		slog.String("ledger_driver", cfg.Ledger.Driver),
		slog.Int("selected_batches", len(cfg.SelectedBatchIDs)))

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerConfig := workerPkg.LoadConfigFromEnv(logger)
	workerMetrics := workerPkg.NewWorkerMetrics()
	logger.Info("worker configuration loaded",
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort),
		slog.Duration("cycle_timeout", workerConfig.CycleTimeout))

	seenRepo, repoCleanup := openSeenRepo(ctx, logger, cfg)
	defer repoCleanup()

	client := buildRemoteClient(cfg)
	sinks := buildSinks(logger, cfg)
	deliverer := deliver.NewService(sinks)
	pollService := poll.NewService(store, client, track.NewService(seenRepo), deliverer)

	// Bootstrap validates the credential and the batch selection before
	// any schedule is registered. Fatal conditions carry operator
	// guidance and stop the process here.
	bootCtx, bootCancel := context.WithTimeout(ctx, bootstrapTimeout)
	err = pollService.Bootstrap(bootCtx)
	bootCancel()
	if err != nil {
		exitFatal(logger, err)
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	// Start health check server
	healthAddr := ":" + strconv.Itoa(workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, pollService, cfg.Interval.Std(), workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildRemoteClient creates the platform API client from the runtime
// configuration. Unset API fields fall back to the production endpoints.
func buildRemoteClient(cfg *appcfg.RuntimeConfig) *remote.Client {
	rc := remote.DefaultConfig()
	if cfg.API.BaseURL != "" {
		rc.BaseURL = cfg.API.BaseURL
	}
	if cfg.API.Referer != "" {
		rc.Referer = cfg.API.Referer
	}
	if cfg.API.Timeout > 0 {
		rc.Timeout = cfg.API.Timeout.Std()
	}
	rc.Token = entity.Credential(cfg.Token)
	return remote.NewClient(rc)
}

// openSeenRepo opens the seen-announcement ledger selected by the
// configuration. Returns the repository and a cleanup function for
// graceful shutdown.
func openSeenRepo(ctx context.Context, logger *slog.Logger, cfg *appcfg.RuntimeConfig) (repository.SeenRepository, func()) {
	if cfg.Ledger.Driver == appcfg.LedgerDriverPostgres {
		database, err := db.Open(ctx, cfg.Ledger.DSN)
		if err != nil {
			logger.Error("failed to open ledger database", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("seen ledger opened", slog.String("driver", "postgres"))
		cleanup := func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close ledger database", slog.Any("error", err))
			}
		}
		return pgRepo.NewSeenRepo(database), cleanup
	}

	logger.Info("seen ledger opened",
		slog.String("driver", "file"),
		slog.String("dir", cfg.Ledger.Dir))
	return fileRepo.NewSeenRepo(cfg.Ledger.Dir), func() {}
}

// buildSinks assembles the delivery sinks from the runtime configuration.
// Invalid sink configuration disables that sink; it never stops the process.
func buildSinks(logger *slog.Logger, cfg *appcfg.RuntimeConfig) []deliver.Sink {
	var sinks []deliver.Sink

	discordConfig := loadDiscordConfig(logger, cfg.Discord)
	sinks = append(sinks, deliver.NewDiscordSink(discordConfig))
	if discordConfig.Enabled {
		logger.Info("Discord sink initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord sink disabled")
	}

	telegramSink, err := deliver.NewTelegramSink(notifier.TelegramConfig{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  cfg.Telegram.Timeout.Std(),
	})
	if err != nil {
		logger.Warn("Telegram sink misconfigured, disabling", slog.Any("error", err))
		telegramSink, _ = deliver.NewTelegramSink(notifier.TelegramConfig{Enabled: false})
	}
	sinks = append(sinks, telegramSink)
	if telegramSink.IsEnabled() {
		logger.Info("Telegram sink initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Telegram sink disabled")
	}

	return sinks
}

// loadDiscordConfig validates the Discord webhook configuration.
//
// Returns:
//   - notifier.DiscordConfig: Configuration with validation applied
func loadDiscordConfig(logger *slog.Logger, cfg appcfg.DiscordConfig) notifier.DiscordConfig {
	if !cfg.Enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	// Validate webhook URL format
	if cfg.WebhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(cfg.WebhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: cfg.WebhookURL,
		Timeout:    cfg.Timeout.Std(),
	}
}

// startCronWorker registers the poll schedule and blocks forever. Interval
// changes in the config file require a restart; pause and selection changes
// are picked up at the start of every cycle.
func startCronWorker(logger *slog.Logger, svc *poll.Service, interval time.Duration, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	c := cron.New()

	var running atomic.Bool
	schedule := "@every " + interval.String()

	_, err := c.AddFunc(schedule, func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous poll cycle still running, skipping")
			metrics.RecordCycle("skipped")
			return
		}
		defer running.Store(false)
		runPollJob(logger, svc, cfg, metrics, healthServer)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", schedule))
	select {}
}

// runPollJob executes a single poll cycle with timeout and error handling.
// A fatal cycle error stops the process: the operator has to act before
// polling can make progress again.
func runPollJob(logger *slog.Logger, svc *poll.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CycleTimeout)
	defer cancel()

	stats, err := svc.RunCycle(ctx)
	if err != nil {
		metrics.RecordCycle("failure")
		metrics.RecordCycleDuration(time.Since(startTime).Seconds())
		healthServer.SetReady(false)
		exitFatal(logger, err)
	}

	if stats.Skipped {
		metrics.RecordCycle("skipped")
		return
	}

	metrics.RecordCycle("success")
	metrics.RecordCycleDuration(time.Since(startTime).Seconds())
	metrics.RecordNewAnnouncements(stats.NewAnnouncements)
	metrics.RecordLastSuccess()
}

// exitFatal logs an error and terminates. Fatal poll errors carry operator
// guidance, which is logged as a separate field so it stands out.
func exitFatal(logger *slog.Logger, err error) {
	var fatalErr *poll.FatalError
	if errors.As(err, &fatalErr) {
		logger.Error("stopping: operator action required",
			slog.String("reason", fatalErr.Reason),
			slog.String("action", fatalErr.Action))
	} else {
		logger.Error("stopping on unexpected error", slog.Any("error", err))
	}
	os.Exit(1)
}

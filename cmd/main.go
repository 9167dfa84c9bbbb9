package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rewriter/internal/bot"
	"rewriter/internal/config"
	"rewriter/internal/database"
	"rewriter/internal/fetcher"
	"rewriter/internal/pipeline"
	"rewriter/internal/prompts"
	"rewriter/internal/provider"
	"rewriter/internal/scheduler"
	"rewriter/internal/session"
)

const pageFetchTimeout = 20 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	sink, closeSink := initLogSink(ctx, cfg.DBPath, log)
	defer closeSink()

	catalog, err := prompts.Load(cfg.PromptsPath)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load prompts",
			"error", err,
			"promptsPath", cfg.PromptsPath)

		return
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	router := provider.NewRouter(
		provider.NewOpenAIClient(cfg.OpenAIBaseURL, httpClient),
		provider.NewAnthropicClient(cfg.AnthropicBaseURL, httpClient),
	)
	keys := map[provider.Provider]string{
		provider.OpenAI:    cfg.OpenAIAPIKey,
		provider.Anthropic: cfg.AnthropicAPIKey,
	}

	orchestrator := pipeline.New(router, catalog, keys, sink, cfg.Location(), log)
	log.InfoContext(ctx, "Pipeline is initialized",
		"providerTimeout", cfg.ProviderTimeout,
		"logTimezone", cfg.Location().String())

	pageFetcher, err := fetcher.New(pageFetchTimeout)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize page fetcher",
			"error", err)

		return
	}

	sessions := session.NewStore()

	botInst, err := bot.New(cfg.Token, cfg.AppPassword, cfg.AllowedUsers, orchestrator, sessions, pageFetcher, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	sched := scheduler.New(ctx, sessions, cfg.SessionIdleTTL, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.EvictIdleSessionsSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.EvictIdleSessionsSpec,
		"sessionIdleTTL", cfg.SessionIdleTTL)

	go botInst.Start(ctx)
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

// initLogSink opens the audit database. Generation keeps working without
// it, so a failure only downgrades to a sink that drops records.
func initLogSink(ctx context.Context, dbPath string, log *slog.Logger) (pipeline.LogSink, func()) {
	db, err := database.New(ctx, dbPath, log)
	if err != nil {
		log.WarnContext(ctx, "Failed to initialize db, rewrite logs are disabled",
			"error", err,
			"dbPath", dbPath)

		return pipeline.NopSink{}, func() {}
	}

	log.InfoContext(ctx, "DB is initialized",
		"dbPath", dbPath)

	return db, func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", dbPath)
		}
	}
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsPrep/internal/config"
	"NewsPrep/internal/httpapi"
	"NewsPrep/internal/infrastructure/extract"
	"NewsPrep/internal/infrastructure/feed"
	"NewsPrep/internal/infrastructure/llm"
	"NewsPrep/internal/infrastructure/scheduler"
	"NewsPrep/internal/infrastructure/storage"
	"NewsPrep/internal/infrastructure/telegram"
	"NewsPrep/internal/logging"
	"NewsPrep/internal/ports"
	"NewsPrep/internal/usecase"

	_ "github.com/lib/pq"
)

// Application wires configuration into the running service: database,
// pipeline, recurring jobs and the HTTP surface.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New builds the full object graph. The database must be reachable:
// migrations run during construction.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repository := storage.NewPostgresRepository(db, logging.Component(baseLogger, "storage"))
	if err := repository.Migrate(cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var generator ports.Generator
	if cfg.OpenAI.APIKey != "" {
		generator = llm.NewOpenAIClient(cfg.OpenAI)
	} else {
		baseLogger.Warn("no API key configured, categorization and enrichment degraded")
	}

	source := feed.NewReader(cfg.Sources, cfg.Pipeline.PerFeedLimit, logging.Component(baseLogger, "feed"))
	fetcher := extract.NewFetcher(nil, cfg.Extraction, cfg.Pipeline.MinContentLength, logging.Component(baseLogger, "extract"))

	categorizer := usecase.NewCategorizer(generator, cfg.Pipeline.Temperature, logging.Component(baseLogger, "categorizer"))
	scorer := usecase.NewScorer(cfg.Pipeline.ImportantKeywords, cfg.Pipeline.ImportantTitleKeywords, cfg.Pipeline.ImportanceThreshold)
	enricher := usecase.NewEnricher(generator, usecase.EnricherOptions{
		MaxMCQs:          cfg.Pipeline.MaxMCQs,
		MaxFlashcards:    cfg.Pipeline.MaxFlashcards,
		MaxSummaryLength: cfg.Pipeline.MaxSummaryLength,
		Temperature:      cfg.Pipeline.Temperature,
	}, logging.Component(baseLogger, "enricher"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:           source,
		Fetcher:          fetcher,
		Repository:       repository,
		Categorizer:      categorizer,
		Scorer:           scorer,
		Enricher:         enricher,
		Logger:           logging.Component(baseLogger, "pipeline"),
		BatchSize:        cfg.Pipeline.BatchSize,
		BatchDelay:       cfg.Pipeline.BatchDelay(),
		MaxSummaryLength: cfg.Pipeline.MaxSummaryLength,
	})

	loc := cfg.Scheduler.Location()
	ingestTrigger, err := scheduler.NewDailyTrigger(usecase.JobIngest, cfg.Scheduler.IngestAt, loc, logging.Component(baseLogger, "scheduler"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ingest trigger: %w", err)
	}
	cleanupTrigger, err := scheduler.NewWeeklyTrigger(usecase.JobCleanup, cfg.Scheduler.CleanupDay, cfg.Scheduler.CleanupAt, loc, logging.Component(baseLogger, "scheduler"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cleanup trigger: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	jobs := usecase.NewScheduler(usecase.SchedulerDeps{
		Pipeline:       pipeline,
		Repository:     repository,
		Notifier:       notifier,
		IngestTrigger:  ingestTrigger,
		CleanupTrigger: cleanupTrigger,
		RetentionDays:  cfg.Pipeline.RetentionDays,
		Logger:         logging.Component(baseLogger, "jobs"),
	})

	study := usecase.NewStudyAids(generator)
	api := httpapi.NewServer(repository, jobs, study, logging.Component(baseLogger, "http"))

	// Manual ingestion runs synchronously inside its handler and can
	// take several minutes with many feeds; the write timeout must
	// outlast a full run.
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Minute,
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		scheduler: jobs,
		server:    server,
	}, nil
}

// Run starts the recurring jobs and serves HTTP until ctx is cancelled,
// then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	a.scheduler.Start()
	defer a.scheduler.Stop()
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.cfg.Server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

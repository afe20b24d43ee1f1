package bootstrap

import (
	"context"
	"fmt"

	"github.com/sjlee-dev/ragdocs/internal/config"
	"github.com/sjlee-dev/ragdocs/internal/core/ports"
	"github.com/sjlee-dev/ragdocs/internal/core/usecase"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/aiservice"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/hashing"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/pdfmeta"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/queue/nats"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/repository/postgres"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/resilience"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/storage/localfs"
)

// App wires the full dependency graph once for both binaries. The API
// serves the inbound ports; the worker consumes progress events.
type App struct {
	Config config.Config

	Events     ports.StatusEventBus
	AiClient   ports.AiProcessor
	IngestUC   *usecase.IngestDocumentUseCase
	CollectUC  *usecase.CollectionUseCase
	ProgressUC *usecase.ProgressUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	collections := postgres.NewCollectionRepository(db)
	users := postgres.NewUserRepository(db)

	store, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryDelay:       cfg.RetryDelay,
		BreakerEnabled:   true,
	})

	aiClient := aiservice.New(aiservice.Config{
		BaseURL:       cfg.AiServiceURL,
		Timeout:       cfg.AiServiceTimeout,
		HealthTimeout: cfg.AiServiceHealthTimeout,
	}, executor)

	events, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSStatusSubject, cfg.NATSProgressSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init event bus: %w", err)
	}

	ingestUC := usecase.NewIngestDocumentUseCase(
		documents,
		collections,
		users,
		store,
		hashing.NewSHA256Hasher(),
		pdfmeta.NewProber(),
		aiClient,
		events,
		usecase.IngestConfig{
			MaxFileSize:       cfg.MaxFileSizeBytes,
			AllowedExtensions: cfg.AllowedExtensions,
		},
	)
	collectUC := usecase.NewCollectionUseCase(collections, users, aiClient)
	progressUC := usecase.NewProgressUseCase(documents)

	return &App{
		Config: cfg,

		Events:     events,
		AiClient:   aiClient,
		IngestUC:   ingestUC,
		CollectUC:  collectUC,
		ProgressUC: progressUC,

		closeFn: func() {
			events.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"echosignal/internal/config"
	"echosignal/internal/domain"
	"echosignal/internal/infrastructure/storage"
	"echosignal/internal/metrics"
	"echosignal/internal/scrape"
	"echosignal/internal/usecase"
)

// Application wires configuration into the ingestion pipeline.
type Application struct {
	cfg      config.Config
	db       *sql.DB
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New opens the database, registers the known source strategies, and builds
// the pipeline. Registration order matters: the dispatcher resolves URLs by
// first substring match.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresStore(db, logger.With("component", "storage"))
	if err := store.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	registry := scrape.NewRegistry(logger.With("component", "registry"))
	registry.Register("rootsofloneliness.com", scrape.NewRoots(logger.With("component", "scrape.roots")))
	registry.Register("cnbc.com", scrape.NewCNBC(logger.With("component", "scrape.cnbc")))

	fetcher := scrape.NewHTTPFetcher(cfg.HTTP, logger.With("component", "fetcher"))
	committer := usecase.NewCommitter(store, logger.With("component", "committer"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:  registry,
		Fetcher:   fetcher,
		Committer: committer,
		Logger:    logger.With("component", "pipeline"),
	})

	if cfg.Metrics.ListenAddr != "" {
		metrics.Serve(cfg.Metrics.ListenAddr, logger.With("component", "metrics"))
	}

	return &Application{cfg: cfg, db: db, pipeline: pipeline, logger: logger}, nil
}

// Run processes the URLs and returns the per-URL results.
func (a *Application) Run(ctx context.Context, urls []string) map[string]*domain.Article {
	return a.pipeline.ParseMany(ctx, urls)
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finshare-ai/internal/catalog"
	"github.com/Veraticus/finshare-ai/internal/categorizer"
	"github.com/Veraticus/finshare-ai/internal/config"
	"github.com/Veraticus/finshare-ai/internal/copilot"
	"github.com/Veraticus/finshare-ai/internal/feedback"
	"github.com/Veraticus/finshare-ai/internal/lexicon"
	"github.com/Veraticus/finshare-ai/internal/llm"
	"github.com/Veraticus/finshare-ai/internal/personalize"
	"github.com/Veraticus/finshare-ai/internal/redisstore"
	"github.com/Veraticus/finshare-ai/internal/service"
	"github.com/Veraticus/finshare-ai/internal/storage"
)

// backend is the persistence selected by storage.backend. The memory backend
// keeps feedback only; overlays and the catalog then live for the process.
type backend struct {
	feedback   service.FeedbackRepository
	overlays   service.OverlayRepository
	categories service.CategoryRepository
	close      func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return &backend{
			feedback: feedback.NewMemoryRepository(),
			close:    func() error { return nil },
		}, nil

	case config.BackendSQLite:
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Debug("using SQLite storage", "path", store.Path())
		return &backend{feedback: store, overlays: store, categories: store, close: store.Close}, nil

	case config.BackendRedis:
		store, err := redisstore.New(ctx, cfg.Redis.Store())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Debug("using redis storage", "addr", cfg.Redis.Addr)
		return &backend{feedback: store, overlays: store, categories: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// app wires every component from configuration.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	backend     *backend
	lexicon     *lexicon.Lexicon
	overlay     *lexicon.Overlay
	catalog     *catalog.Catalog
	adapter     *personalize.Adapter
	feedback    *feedback.Store
	categorizer *categorizer.Categorizer
	generator   *llm.Generator
	refiner     *copilot.Refiner
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.LoadFile(path)
}

// newApp builds the components. Overlays are not warmed; call warm.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	lex, err := loadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return nil, err
	}

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		backend: be,
		lexicon: lex,
		overlay: lexicon.NewOverlay(),
		catalog: catalog.New(lex.Categories()...),
	}

	if err := a.syncCatalog(ctx); err != nil {
		_ = be.close()
		return nil, err
	}

	adapterOpts := []personalize.Option{
		personalize.WithMaxNewTokens(cfg.Personalization.MaxNewTokens),
		personalize.WithLogger(logger),
	}
	if be.overlays != nil {
		adapterOpts = append(adapterOpts, personalize.WithOverlayRepository(be.overlays))
	}
	a.adapter = personalize.NewAdapter(be.feedback, lex, a.overlay, adapterOpts...)

	a.feedback = feedback.NewStore(be.feedback,
		feedback.Config{
			BatchSize:   cfg.Personalization.BatchSize,
			MinExamples: cfg.Personalization.MinExamples,
		},
		feedback.WithAdapter(a.adapter),
		feedback.WithCatalog(a.catalog),
		feedback.WithLogger(logger))

	a.categorizer = categorizer.New(lex, a.overlay, categorizer.WithAlternatives(cfg.Categorizer.Alternatives))

	gen, err := llm.Open(ctx, cfg.LLM.Generator(), logger)
	if err != nil {
		// Generative features are optional; the rule result always stands.
		logger.Warn("generative provider disabled", "provider", cfg.LLM.Provider, "error", err)
		gen = nil
	}
	a.generator = gen
	a.refiner = copilot.NewRefiner(gen, a.catalog, cfg.LLM.RefineBelow, logger)

	return a, nil
}

// syncCatalog merges persisted categories into the catalog and writes the
// result back so additions survive restarts.
func (a *app) syncCatalog(ctx context.Context) error {
	repo := a.backend.categories
	if repo == nil {
		return nil
	}

	persisted, err := repo.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	for _, c := range persisted {
		a.catalog.Register(c)
	}
	if err := repo.SaveCategories(ctx, a.catalog.List()); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// warm loads persisted overlays into memory.
func (a *app) warm(ctx context.Context) error {
	n, err := a.adapter.Warm(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm overlays: %w", err)
	}
	a.logger.Info("warmed personal overlays", "tokens", n)
	return nil
}

// assistant builds the co-pilot assistant, reading spending data from the
// analytics service when one is configured.
func (a *app) assistant() *copilot.Assistant {
	var spending copilot.SpendingSource
	if a.cfg.Analytics.URL != "" {
		spending = copilot.NewAnalyticsClient(a.cfg.Analytics.URL, a.logger)
	}
	return copilot.NewAssistant(a.generator, spending, a.logger)
}

func (a *app) Close() error {
	if a == nil || a.backend == nil {
		return nil
	}
	if err := a.backend.close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openApp loads configuration and builds the app for a command.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, slog.Default())
}

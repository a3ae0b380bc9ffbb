// Package app wires adapters into the core services for each command.
//
// Every constructor returns a driving port plus an io.Closer that releases
// the stores and provider clients it opened.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/ai"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/web"
	"github.com/custodia-labs/fragmenter/internal/classifier"
	"github.com/custodia-labs/fragmenter/internal/config"
	"github.com/custodia-labs/fragmenter/internal/connectors/filesystem"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/core/services"
	"github.com/custodia-labs/fragmenter/internal/logger"
	"github.com/custodia-labs/fragmenter/internal/metadata"
	"github.com/custodia-labs/fragmenter/internal/normalisers/html"
	"github.com/custodia-labs/fragmenter/internal/postprocessors"
	"github.com/custodia-labs/fragmenter/internal/splitters"
)

// Default directories, relative to the working directory.
const (
	DefaultDataDir    = "data"
	DefaultStorageDir = "storage"
)

// IndexOptions locates the inputs and outputs of an index run.
type IndexOptions struct {
	// DataDir is the tree to index. Empty means DefaultDataDir.
	DataDir string

	// StorageDir receives the vector store and docstore. Empty means DefaultStorageDir.
	StorageDir string

	// ProjectRoot anchors relative paths in metadata. Empty means DataDir.
	ProjectRoot string

	// DryRun skips provider setup; the service can only produce chunks.
	DryRun bool
}

// Closers releases resources in reverse order of acquisition.
type Closers []io.Closer

// Close closes every resource and joins the errors.
func (c Closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if c[i] != nil {
			errs = append(errs, c[i].Close())
		}
	}
	return errors.Join(errs...)
}

// LoadConfig loads settings for the CLI. The validator pings providers when
// settings are changed through the settings service.
func LoadConfig(configPath, envFile string) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	return config.Load(config.Options{
		ConfigPath: configPath,
		EnvFile:    envFile,
		WorkDir:    wd,
		Validator:  ai.NewConfigValidator(),
	})
}

// NewIndexer builds the index service.
func NewIndexer(ctx context.Context, cfg *config.Config, opts IndexOptions) (driving.IndexService, io.Closer, error) {
	settings := &cfg.Settings
	dataDir := orDefault(opts.DataDir, DefaultDataDir)
	storageDir := orDefault(opts.StorageDir, DefaultStorageDir)
	projectRoot := orDefault(opts.ProjectRoot, dataDir)

	cls := classifier.New(settings.Chunking.Thresholds,
		classifier.WithExtraExtensions(settings.Index.ExtraExtensions...))
	source, err := filesystem.New(dataDir, cls)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: project root %s: %v", domain.ErrInvalidInput, projectRoot, err)
	}

	producer := services.NewProducer(
		source,
		cls,
		splitters.NewSelector(settings.Chunking),
		metadata.NewEnricher(abs, metadata.WithSettings(settings.Metadata)),
		settings.Index.NumWorkers,
	)
	if opts.DryRun {
		return services.NewIndexService(producer, nil, nil), Closers{}, nil
	}

	var closers Closers
	providers := ai.Init(ctx, settings, false)
	closers = append(closers, providers)
	if providers.EmbeddingErr != nil {
		_ = closers.Close()
		return nil, nil, providers.EmbeddingErr
	}

	store, err := OpenStore(ctx, settings, storageDir, providers.EmbeddingService.Dimensions())
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}
	closers = append(closers, store)

	names, processorCfg := cfg.Service.Processors(settings)
	processor, err := buildProcessor(names, processorCfg, providers)
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}

	ingestion := services.NewIngestionService(
		providers.EmbeddingService,
		store,
		jsonfile.NewDocStore(storageDir),
		processor,
		settings.Embedding.BatchSize,
		settings.Index.NumWorkers,
	)
	return services.NewIndexService(producer, ingestion, store), closers, nil
}

// NewQuerier builds the query service. A missing LLM is only an error when
// needLLM is set; retrieval works without one.
func NewQuerier(ctx context.Context, cfg *config.Config, storageDir string, needLLM bool) (driving.QueryService, io.Closer, error) {
	settings := &cfg.Settings
	storageDir = orDefault(storageDir, DefaultStorageDir)

	providers := ai.Init(ctx, settings, false)
	closers := Closers{providers}
	if providers.EmbeddingErr != nil {
		_ = closers.Close()
		return nil, nil, providers.EmbeddingErr
	}
	if needLLM && providers.LLMErr != nil {
		_ = closers.Close()
		return nil, nil, providers.LLMErr
	}

	store, err := OpenStore(ctx, settings, storageDir, providers.EmbeddingService.Dimensions())
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}
	closers = append(closers, store)

	svc := services.NewQueryService(
		providers.EmbeddingService,
		store,
		providers.LLMService,
		ai.GenerateOptions(&settings.LLM),
	)
	return svc, closers, nil
}

// NewInspector builds the inspect service. No provider is contacted.
func NewInspector(ctx context.Context, cfg *config.Config, storageDir string) (driving.InspectService, io.Closer, error) {
	storageDir = orDefault(storageDir, DefaultStorageDir)

	store, err := OpenStore(ctx, &cfg.Settings, storageDir, 0)
	if err != nil {
		return nil, nil, err
	}
	return services.NewInspectService(store, jsonfile.NewDocStore(storageDir), store), store, nil
}

// NewScraper builds the scrape service.
func NewScraper(cfg web.Config) driving.ScrapeService {
	return services.NewScrapeService(web.NewFetcher(cfg), html.New())
}

// Store is a vector store that also records runs.
type Store interface {
	driven.VectorStore
	driven.RunStore
}

// OpenStore opens the configured vector store backend. dimensions types the
// postgres vector column; zero leaves it untyped.
func OpenStore(ctx context.Context, settings *domain.Settings, storageDir string, dimensions int) (Store, error) {
	switch settings.Store.Backend {
	case domain.StoreBackendPostgres:
		s, err := postgres.NewStore(ctx, settings.Store.PostgresDSN,
			postgres.WithCollection(settings.Index.Collection),
			postgres.WithDimensions(dimensions))
		if err != nil {
			return nil, err
		}
		logger.Debug("Using postgres collection %s", s.Collection())
		return s, nil
	case domain.StoreBackendSQLite, "":
		s, err := sqlite.NewStore(storageDir, sqlite.WithCollection(settings.Index.Collection))
		if err != nil {
			return nil, err
		}
		logger.Debug("Using %s collection %s", s.Path(), s.Collection())
		return s, nil
	default:
		return nil, fmt.Errorf("%w: store backend %q (use sqlite or postgres)",
			domain.ErrInvalidInput, settings.Store.Backend)
	}
}

// buildProcessor returns the enrichment pipeline, or nil when no processor is named.
func buildProcessor(names []string, cfg map[string]any, providers *ai.InitResult) (driven.ChunkProcessor, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if providers.LLMErr != nil {
		logger.Warn("Extractors enabled but no LLM is available, skipping: %v", providers.LLMErr)
		return nil, nil
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, providers.LLMService)
	pipeline, err := registry.BuildPipeline(names, cfg)
	if err != nil {
		return nil, fmt.Errorf("build processors: %w", err)
	}
	logger.Debug("Enrichment processors: %v", pipeline.Names())
	return pipeline, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

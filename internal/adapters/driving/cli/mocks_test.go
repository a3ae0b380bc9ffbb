package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/web"
	"github.com/custodia-labs/fragmenter/internal/app"
	"github.com/custodia-labs/fragmenter/internal/config"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/core/services"
)

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	report  *domain.IndexReport
	err     error
	watched []*domain.IndexReport

	requests []driving.IndexRequest
}

func (m *mockIndexService) Run(_ context.Context, req driving.IndexRequest) (*domain.IndexReport, error) {
	m.requests = append(m.requests, req)
	return m.report, m.err
}

func (m *mockIndexService) Watch(
	_ context.Context, req driving.IndexRequest, onRun func(*domain.IndexReport, error),
) error {
	m.requests = append(m.requests, req)
	for _, r := range m.watched {
		onRun(r, nil)
	}
	return m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	hits   []domain.RetrievedChunk
	answer *domain.Answer
	err    error

	question string
	opts     domain.QueryOptions
}

func (m *mockQueryService) Retrieve(
	_ context.Context, question string, opts domain.QueryOptions,
) ([]domain.RetrievedChunk, error) {
	m.question, m.opts = question, opts
	return m.hits, m.err
}

func (m *mockQueryService) Ask(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	m.question, m.opts = question, opts
	return m.answer, m.err
}

// mockInspectService is a mock implementation of driving.InspectService.
type mockInspectService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockInspectService) Inspect(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

// mockScrapeService is a mock implementation of driving.ScrapeService.
type mockScrapeService struct {
	report *domain.ScrapeReport
	err    error

	request driving.ScrapeRequest
}

func (m *mockScrapeService) Scrape(_ context.Context, req driving.ScrapeRequest) (*domain.ScrapeReport, error) {
	m.request = req
	return m.report, m.err
}

// testEnv records what commands passed to the service constructors.
type testEnv struct {
	cfg *config.Config

	// settings are the effective settings a constructor received.
	settings domain.Settings

	indexer   *mockIndexService
	querier   *mockQueryService
	inspector *mockInspectService
	scraper   *mockScrapeService

	indexOpts    app.IndexOptions
	storageDir   string
	needLLM      bool
	scrapeConfig web.Config
	constructErr error
}

// setupTestServices replaces every service constructor with mocks backed
// by a config file in a temp dir. Flags and constructors are restored
// when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	store, err := file.NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	env := &testEnv{
		cfg: &config.Config{
			Settings: domain.DefaultSettings(),
			Store:    store,
			Service:  services.NewSettingsService(store, nil),
		},
		indexer:   &mockIndexService{report: &domain.IndexReport{}},
		querier:   &mockQueryService{},
		inspector: &mockInspectService{},
		scraper:   &mockScrapeService{report: &domain.ScrapeReport{}},
	}

	oldLoad, oldIndexer, oldQuerier := loadConfig, newIndexer, newQuerier
	oldInspector, oldScraper := newInspector, newScraper
	t.Cleanup(func() {
		loadConfig, newIndexer, newQuerier = oldLoad, oldIndexer, oldQuerier
		newInspector, newScraper = oldInspector, oldScraper
	})

	loadConfig = func(_, _ string) (*config.Config, error) {
		// Each load sees the stored file, like a fresh process would.
		settings, err := env.cfg.Service.Get()
		if err != nil {
			return nil, err
		}
		cfg := *env.cfg
		cfg.Settings = *settings
		return &cfg, nil
	}
	newIndexer = func(_ context.Context, cfg *config.Config, opts app.IndexOptions) (driving.IndexService, io.Closer, error) {
		env.settings = cfg.Settings
		env.indexOpts = opts
		if env.constructErr != nil {
			return nil, nil, env.constructErr
		}
		return env.indexer, app.Closers{}, nil
	}
	newQuerier = func(_ context.Context, cfg *config.Config, storageDir string, needLLM bool) (driving.QueryService, io.Closer, error) {
		env.settings = cfg.Settings
		env.storageDir, env.needLLM = storageDir, needLLM
		if env.constructErr != nil {
			return nil, nil, env.constructErr
		}
		return env.querier, app.Closers{}, nil
	}
	newInspector = func(_ context.Context, _ *config.Config, storageDir string) (driving.InspectService, io.Closer, error) {
		env.storageDir = storageDir
		if env.constructErr != nil {
			return nil, nil, env.constructErr
		}
		return env.inspector, app.Closers{}, nil
	}
	newScraper = func(cfg web.Config) driving.ScrapeService {
		env.scrapeConfig = cfg
		return env.scraper
	}

	return env
}

// execute runs rootCmd with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags returns every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

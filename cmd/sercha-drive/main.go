// Command sercha-drive mirrors users' Google Drive files into a vector index.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/lock"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/sercha-drive/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-drive/internal/connectors/google"
	"github.com/custodia-labs/sercha-drive/internal/connectors/google/drive"
	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/core/services"
	"github.com/custodia-labs/sercha-drive/internal/logger"
	"github.com/custodia-labs/sercha-drive/internal/normalisers"
	"github.com/custodia-labs/sercha-drive/internal/postprocessors/chunker"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	dataDir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	credsPath := settings.Drive.CredentialsFile
	if credsPath == "" {
		credsPath = filepath.Join(dataDir, "credentials.json")
	}
	creds, err := google.LoadCredentials(credsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	svcs := cli.Services{
		Settings:   settingsService,
		Tokens:     creds,
		TokensPath: credsPath,
		Lock:       lock.New(dataDir),
	}

	a, err := newApp(dataDir, settings, creds)
	if err != nil {
		// Settings and auth commands still work; the rest report this error.
		logger.Debug("Sync services unavailable: %v", err)
		svcs.Unavailable = err
	} else {
		defer a.close()
		svcs.Sync = a.sync
		svcs.Selection = a.selection
		svcs.Sharing = a.sharing
		svcs.Scheduler = a.scheduler
		svcs.Metrics = a.metrics.Handler()
	}

	cli.SetServices(svcs)
	return cli.Execute(version)
}

// app holds the sync side of the program and the resources it must release.
type app struct {
	store    *sqlite.Store
	index    driven.VectorIndex
	embedder driven.EmbeddingService

	sync      *services.SyncOrchestrator
	selection *services.SelectionService
	sharing   *services.SharingService
	scheduler *services.SyncScheduler
	metrics   *prometheus.Metrics
}

func newApp(dataDir string, settings *domain.AppSettings, creds *google.Credentials) (*app, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	index, err := newVectorIndex(settings)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(settings)
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	cachedEmbedder, err := cached.New(embedder, cached.DefaultSize)
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	extractor := normalisers.Defaults()
	remotes := drive.NewFactory(creds, drive.Config{
		PageSize:     int64(settings.Drive.PageSize),
		Downloadable: extractor.Supports,
	})

	splitter := chunker.New(chunker.WithMaxBytes(settings.Index.MaxChunkBytes))
	indexer := services.NewDocumentIndexer(splitter, cachedEmbedder, index, store.ChunkRegistry())

	orchestrator := services.NewSyncOrchestrator(
		remotes,
		extractor,
		indexer,
		store.SyncLogStore(),
		store.SyncStateStore(),
		settings.Drive.RootFolderID,
	)
	metrics := prometheus.New()
	orchestrator.SetMetrics(metrics)

	users := settings.Users
	if len(users) == 0 {
		users = creds.UserIDs()
	}

	return &app{
		store:     store,
		index:     index,
		embedder:  cachedEmbedder,
		sync:      orchestrator,
		selection: services.NewSelectionService(indexer),
		sharing:   services.NewSharingService(remotes),
		scheduler: services.NewSyncScheduler(settings.Scheduler, orchestrator, users),
		metrics:   metrics,
	}, nil
}

func newEmbedder(settings *domain.AppSettings) (driven.EmbeddingService, error) {
	switch settings.Embedding.Provider {
	case domain.EmbeddingProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		}), nil
	case domain.EmbeddingProviderOpenAI:
		embedder, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  settings.Embedding.APIKey,
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
}

func newVectorIndex(settings *domain.AppSettings) (driven.VectorIndex, error) {
	switch settings.Index.Provider {
	case domain.VectorProviderMemory:
		return memory.New(), nil
	case domain.VectorProviderPinecone:
		index, err := pinecone.New(pinecone.Config{
			APIKey:          settings.Pinecone.APIKey,
			IndexHost:       settings.Pinecone.IndexHost,
			NamespacePrefix: settings.Pinecone.NamespacePrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone: %w", err)
		}
		return index, nil
	default:
		return nil, fmt.Errorf("%w: vector provider %q", domain.ErrInvalidInput, settings.Index.Provider)
	}
}

func (a *app) close() {
	err := errors.Join(a.embedder.Close(), a.index.Close(), a.store.Close())
	if err != nil {
		logger.Warn("shutdown: %v", err)
	}
}

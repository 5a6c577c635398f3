// Package cli provides the command-line interface for Alexandria.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/config/file"
	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/embedding/ollama"
	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/embedding/openai"
	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/memory"
	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/qdrant"
	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/sqlite"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/core/services"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Wired services. Tests may swap these for mocks before calling
// Execute; initServices leaves pre-set services alone.
var (
	retrievalService     driving.RetrievalService
	catalogService       driving.CatalogService
	canonicalizerService driving.CanonicalizerService
	ingestService        driving.IngestService
	auditService         driving.AuditService
)

var (
	libraryStore driven.LibraryStore
	embedder     driven.EmbeddingService
	appConfig    *file.Config
)

var rootCmd = &cobra.Command{
	Use:   "alexandria",
	Short: "Hierarchical retrieval over a personal library",
	Long: `Alexandria indexes books as works, documents, chunks and section
summaries, and answers queries either flat (chunks directly) or
hierarchically (section summaries first, then chunks within the
winning sections).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices(cmd.Context())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.alexandria/config.toml)")
}

// initServices wires the store, embedder and core services from the
// config file. Any pre-set service (injected by tests) skips the wiring
// entirely.
func initServices(ctx context.Context) error {
	if retrievalService != nil || catalogService != nil || canonicalizerService != nil ||
		ingestService != nil || auditService != nil {
		return nil
	}

	cfg, err := file.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	embedder, err = newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	libraryStore, err = newStore(ctx, cfg.Store)
	if err != nil {
		return err
	}

	table, err := file.NewCorrectionFile(cfg.CorrectionsPath).Load()
	if err != nil {
		return err
	}

	canonicalizer := services.NewCanonicalizerService(libraryStore, table)

	retrievalService = services.NewRetrievalService(libraryStore)
	catalogService = services.NewCatalogService(libraryStore)
	canonicalizerService = canonicalizer
	ingestService = services.NewIngestService(libraryStore, canonicalizer)
	auditService = services.NewAuditService(libraryStore)
	return nil
}

func newEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "ollama", "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

func newStore(ctx context.Context, cfg file.StoreConfig) (driven.LibraryStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "qdrant":
		return qdrant.Connect(ctx, qdrant.Config{
			URL:               cfg.URL,
			APIKey:            cfg.APIKey,
			CollectionPrefix:  cfg.CollectionPrefix,
			Timeout:           cfg.Timeout(),
			RequestsPerSecond: cfg.RequestsPerSecond,
			ServerSideFilters: cfg.ServerSideFilters,
		}, embedder)
	case "sqlite", "":
		return sqlite.NewStore(cfg.DataDir, embedder)
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

func closeServices() {
	if libraryStore != nil {
		if err := libraryStore.Close(); err != nil {
			logger.Warn("Closing store: %v", err)
		}
		libraryStore = nil
	}
	if embedder != nil {
		if err := embedder.Close(); err != nil {
			logger.Warn("Closing embedder: %v", err)
		}
		embedder = nil
	}
}

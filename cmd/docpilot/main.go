// Command docpilot is a document copilot: upload documents, then ask
// questions answered from their content.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docpilot/internal/adapters/driven/ai"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/extract"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docpilot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docpilot/internal/adapters/driving/cli"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/core/services"
	"github.com/custodia-labs/docpilot/internal/logger"
	"github.com/custodia-labs/docpilot/internal/postprocessors/chunker"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetServices(cli.Services{Settings: settingsService})

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// The settings command must work even when providers are down, so a
	// failed init leaves only the settings service wired.
	aiServices, err := ai.Init(settings)
	if err != nil {
		logger.Warn("AI providers unavailable: %v", err)
		logger.Warn("Run 'docpilot settings wizard' to configure them")
		return cli.Execute(ctx)
	}
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	copilot, sessions, closeStorage, err := buildCopilot(ctx, settings, aiServices)
	if err != nil {
		return err
	}
	defer closeStorage()

	extractors := extract.Default()
	cli.SetServices(cli.Services{
		Copilot:  copilot,
		Sessions: sessions,
		Settings: settingsService,
		Supports: extractors.Supports,
	})
	return cli.Execute(ctx)
}

func buildCopilot(
	ctx context.Context,
	settings *domain.AppSettings,
	aiServices *ai.InitResult,
) (*services.CopilotService, *services.SessionManager, func(), error) {
	embedder := services.NewEmbeddingClient(aiServices.EmbeddingService)

	var (
		docStore driven.DocumentStore
		index    driven.VectorIndex
		closer   = func() {}
	)
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		docStore = memory.NewDocumentStore()
		index = memory.NewVectorIndex(embedder.Dimensions())
	default:
		store, err := sqlite.NewStore("")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening storage: %w", err)
		}
		idx, err := store.VectorIndex(ctx, embedder.Dimensions())
		if err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("opening vector index: %w", err)
		}
		logger.Debug("Using database %s", store.Path())
		docStore, index = store.DocumentStore(), idx
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing storage: %v", err)
			}
		}
	}

	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.RAG.ChunkSize),
		chunker.WithOverlap(settings.RAG.ChunkOverlap),
	)
	if err != nil {
		closer()
		return nil, nil, nil, err
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		closer()
		return nil, nil, nil, fmt.Errorf("opening prompts: %w", err)
	}
	system, err := prompts.Load(driven.PromptSystem)
	if err != nil {
		closer()
		return nil, nil, nil, fmt.Errorf("loading system prompt: %w", err)
	}

	registry := services.NewDocumentRegistry(docStore, index, embedder, chunks, settings.RAG.MaxDocuments)
	sessions := services.NewSessionManager(cache.NewSessionStore(settings.Session.TTL), registry, settings.RAG.HistoryLength)

	retriever := services.NewRetriever(embedder, index, docStore)
	retriever.MinSimilarity = settings.RAG.MinSimilarity

	copilot := services.NewCopilotService(
		registry,
		sessions,
		retriever,
		services.NewPromptBuilder(system, settings.RAG.PromptBudget),
		services.NewAnswerSynthesizer(aiServices.LLMService),
		settings.RAG.TopK,
	)
	copilot.SetExtractor(extract.Default())
	copilot.SetPromptStore(prompts)

	return copilot, sessions, closer, nil
}

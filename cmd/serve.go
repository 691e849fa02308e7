package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tale-server/internal/config"
	"tale-server/internal/logger"
	"tale-server/internal/provider"
	"tale-server/internal/rag"
	"tale-server/internal/server"
	"tale-server/internal/story"
	"tale-server/internal/tale"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tale generation HTTP server",
	Long: `Run the HTTP server that drives interactive story turns.

The server needs an ingested tale corpus (see the ingest command), a
reachable Milvus instance for context retrieval, and credentials for
at least one text-generation backend.

Required environment variables depend on LLM_TYPE:
  OPENAI_API_KEY       - embeddings, and generation for openai_compatible
  OPENROUTER_API_KEY   - generation for openrouter and deepseek_api
  ANTHROPIC_API_KEY    - generation for anthropic
  MILVUS_ADDRESS       - Milvus server address (default: localhost:19530)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedderModel, cfg.EmbedderDimension)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	milvusConfig := rag.DefaultMilvusConfig()
	milvusConfig.Address = cfg.MilvusAddress
	milvusConfig.CollectionName = cfg.MilvusCollection
	milvusConfig.Dimension = cfg.EmbedderDimension

	store, err := rag.NewMilvusStore(ctx, milvusConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to vector store: %w", err)
	}
	defer store.Close()

	retriever, err := rag.NewRetriever(embedder, store, log)
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	gateway, err := provider.NewGateway(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create provider gateway: %w", err)
	}

	summarizer := story.NewSummarizer(gateway, cfg.SummaryTimeout, log)
	engine, err := story.NewEngine(gateway, retriever, summarizer, cfg.GenerateTimeout, log)
	if err != nil {
		return fmt.Errorf("failed to create turn engine: %w", err)
	}

	tales := tale.LoadTable(cfg.TaleMetadataPath)
	if len(tales.Titles()) == 0 {
		log.Warn("no tale metadata loaded, run ingest first",
			zap.String("path", cfg.TaleMetadataPath))
	}

	srv := server.New(cfg, engine, tales, log)
	log.Info("starting tale server",
		zap.String("port", cfg.Port),
		zap.String("llm_type", cfg.LLMType),
		zap.String("model", cfg.LLMModelName))

	return srv.Run(ctx)
}

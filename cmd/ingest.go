package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tale-server/internal/config"
	"tale-server/internal/rag"
	"tale-server/internal/tale"
)

var (
	talesPath string
	batchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index tale texts into the vector store",
	Long: `Ingest a corpus of tale texts for retrieval.

This command:
1. Loads tales from a JSON corpus file
2. Splits each tale into overlapping chunks
3. Embeds the chunks (OpenAI) and stores them in Milvus
4. Writes the tale metadata table used by the server

Re-ingesting a tale replaces its existing chunks.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  tale-server ingest --tales ./data/tales.json
  tale-server ingest --tales ./corpus/grimm.json --batch-size 20`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&talesPath, "tales", "./data/tales.json", "Path to the tale corpus JSON file")
	ingestCmd.Flags().IntVar(&batchSize, "batch-size", 10, "Number of chunks to embed per API call")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Styling
	var (
		headerColor  = lipgloss.Color("#F780FF") // Bright pink
		detailColor  = lipgloss.Color("#6272A4") // Muted purple
		errorColor   = lipgloss.Color("#FF5555") // Red
		successColor = lipgloss.Color("#50FA7B") // Green
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(detailColor).
		Italic(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(successColor)

	fmt.Println()
	fmt.Println(headerStyle.Render("Ingesting tale corpus"))
	fmt.Println(detailStyle.Render(fmt.Sprintf("→ Loading tales from %s", talesPath)))

	tales, err := tale.LoadTales(talesPath)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	if len(tales) == 0 {
		return fmt.Errorf("%s No tales found in corpus file", errorStyle.Render("Error:"))
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Loaded %d tales", len(tales))))

	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedderModel, cfg.EmbedderDimension)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	milvusConfig := rag.DefaultMilvusConfig()
	milvusConfig.Address = cfg.MilvusAddress
	milvusConfig.CollectionName = cfg.MilvusCollection
	milvusConfig.Dimension = cfg.EmbedderDimension

	fmt.Println(detailStyle.Render(fmt.Sprintf("→ Connecting to Milvus at %s", milvusConfig.Address)))
	store, err := rag.NewMilvusStore(ctx, milvusConfig)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	opts := rag.DefaultIndexOptions()
	opts.BatchSize = batchSize

	entries := make(map[string]tale.Metadata, len(tales))
	for _, t := range tales {
		fmt.Println(detailStyle.Render(fmt.Sprintf("→ Indexing %q...", t.Title)))

		meta, err := rag.IndexTale(ctx, t, embedder, store, opts)
		if err != nil {
			return fmt.Errorf("%s failed to index %q: %w", errorStyle.Render("Error:"), t.Title, err)
		}

		entries[meta.Title] = meta
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s: %d chunks", meta.Title, meta.ChunkCount)))
	}

	if err := tale.SaveTable(cfg.TaleMetadataPath, entries); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Ingested %d tales, metadata written to %s", len(entries), cfg.TaleMetadataPath)))
	return nil
}

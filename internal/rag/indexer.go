package rag

import (
	"context"
	"fmt"
	"strings"

	"tale-server/internal/chunker"
	"tale-server/internal/tale"
)

// IndexOptions provides configuration for tale indexing.
type IndexOptions struct {
	// BatchSize determines how many chunks to embed per API call.
	BatchSize int

	// Chunking controls chunk sizing for the source text.
	Chunking chunker.Config
}

// DefaultIndexOptions returns sensible defaults for indexing.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize: 10,
		Chunking:  chunker.DefaultConfig(),
	}
}

// IndexTale chunks one tale, embeds the chunks in batches, and
// replaces the tale's chunks in the vector store (recreate semantics:
// existing chunks for the title are deleted first). Returns the
// metadata record for the tale.
//
// This is the offline ingestion job; it is not safe to run
// concurrently with itself against the same tale.
func IndexTale(
	ctx context.Context,
	t tale.Tale,
	embedder Embedder,
	store VectorStore,
	opts IndexOptions,
) (tale.Metadata, error) {
	if t.Title == "" || t.FullText == "" {
		return tale.Metadata{}, fmt.Errorf("tale requires a title and full text")
	}
	if embedder == nil {
		return tale.Metadata{}, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return tale.Metadata{}, fmt.Errorf("vector store cannot be nil")
	}

	chunks := chunker.Split(t.FullText, opts.Chunking)
	if len(chunks) == 0 {
		return tale.Metadata{}, fmt.Errorf("no chunks generated for tale %q", t.Title)
	}

	if err := store.DeleteTale(ctx, t.Title); err != nil {
		return tale.Metadata{}, fmt.Errorf("failed to delete existing chunks for %q: %w", t.Title, err)
	}

	for start := 0; start < len(chunks); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		records, err := embedder.Embed(ctx, texts)
		if err != nil {
			return tale.Metadata{}, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}

		chunkRecords := make([]ChunkRecord, len(batch))
		for i, c := range batch {
			chunkRecords[i] = ChunkRecord{
				ID:          chunkID(t.Title, c.Index),
				TaleTitle:   t.Title,
				Text:        c.Text,
				Embedding:   records[i].Embedding,
				ChunkIndex:  c.Index,
				Position:    c.Position,
				TotalChunks: c.TotalChunks,
			}
		}

		if err := store.Insert(ctx, chunkRecords); err != nil {
			return tale.Metadata{}, fmt.Errorf("failed to insert batch starting at %d: %w", start, err)
		}
	}

	if err := store.Flush(ctx); err != nil {
		return tale.Metadata{}, fmt.Errorf("failed to flush chunks for %q: %w", t.Title, err)
	}

	return tale.Metadata{
		Title:           t.Title,
		ChunkCount:      len(chunks),
		OriginalSummary: t.OriginalSummary,
	}, nil
}

// chunkID builds the deterministic primary key for one chunk.
func chunkID(title string, index int) string {
	return fmt.Sprintf("%s_%04d", strings.ReplaceAll(title, " ", "_"), index)
}

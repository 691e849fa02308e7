package rag

import "context"

// ChunkRecord is one stored tale passage with its embedding and the
// chunk metadata produced during ingestion.
type ChunkRecord struct {
	ID          string    `json:"id"`
	TaleTitle   string    `json:"tale_title"`
	Text        string    `json:"text"`
	Embedding   []float32 `json:"embedding"`
	ChunkIndex  int       `json:"chunk_index"`
	Position    string    `json:"position"`
	TotalChunks int       `json:"total_chunks"`
}

// VectorStore defines the interface for chunk storage and similarity
// search, always scoped to a single tale.
type VectorStore interface {
	// Ready reports whether the backing collection can be accessed.
	Ready(ctx context.Context) error

	// Insert adds chunk records in a single operation.
	Insert(ctx context.Context, records []ChunkRecord) error

	// DeleteTale removes every chunk belonging to the given tale.
	DeleteTale(ctx context.Context, taleTitle string) error

	// Search returns the texts of the topK most similar chunks within
	// one tale, in backend rank order.
	Search(ctx context.Context, taleTitle string, queryVector []float32, topK int) ([]string, error)

	// Flush ensures all pending data is persisted.
	Flush(ctx context.Context) error

	// Close releases resources and closes connections.
	Close() error
}

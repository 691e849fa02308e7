package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension  = errors.New("invalid vector dimension")
	ErrEmptyRecords      = errors.New("no records provided for insertion")
	ErrConnectionFailed  = errors.New("failed to connect to Milvus")
	ErrInsertFailed      = errors.New("failed to insert records")
	ErrSearchFailed      = errors.New("failed to search vectors")
	ErrCollectionMissing = errors.New("chunk collection not available")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 1536 for text-embedding-3-small)
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns the default chunk collection configuration.
func DefaultMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Address:        "localhost:19530",
		CollectionName: "tale_chunks",
		Dimension:      1536,
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore using Milvus. Chunks carry their
// tale title so every search can be restricted to one tale with an
// equality filter.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the chunk collection
// exists with the proper schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil
	}

	// Chunk IDs are deterministic ("<title>_<index>"), so the primary
	// key is explicit rather than auto-generated; re-ingesting a tale
	// produces the same IDs.
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         false,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "tale_title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "position",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "16",
				},
			},
			{
				Name:     "total_chunks",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Ready reports whether the chunk collection can be accessed.
func (m *MilvusStore) Ready(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollectionMissing, err)
	}
	if !has {
		return ErrCollectionMissing
	}
	return nil
}

// Insert adds chunk records to Milvus.
func (m *MilvusStore) Insert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	ids := make([]string, len(records))
	titles := make([]string, len(records))
	indexes := make([]int64, len(records))
	positions := make([]string, len(records))
	totals := make([]int64, len(records))
	texts := make([]string, len(records))
	embeddings := make([][]float32, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(record.Embedding))
		}
		ids[i] = record.ID
		titles[i] = record.TaleTitle
		indexes[i] = int64(record.ChunkIndex)
		positions[i] = record.Position
		totals[i] = int64(record.TotalChunks)
		texts[i] = record.Text
		embeddings[i] = record.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("tale_title", titles),
		entity.NewColumnInt64("chunk_index", indexes),
		entity.NewColumnVarChar("position", positions),
		entity.NewColumnInt64("total_chunks", totals),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	return nil
}

// DeleteTale removes every chunk belonging to the given tale.
func (m *MilvusStore) DeleteTale(ctx context.Context, taleTitle string) error {
	expr := fmt.Sprintf(`tale_title == "%s"`, taleTitle)
	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete tale chunks: %w", err)
	}
	return nil
}

// Search performs top-K similarity search restricted to one tale and
// returns the stored chunk texts in backend rank order. Scores are not
// surfaced; rank order is all the retriever needs.
func (m *MilvusStore) Search(ctx context.Context, taleTitle string, queryVector []float32, topK int) ([]string, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	expr := fmt.Sprintf(`tale_title == "%s"`, taleTitle)

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		[]string{"text"},
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []string{}, nil
	}

	texts := make([]string, 0, results[0].ResultCount)
	for _, field := range results[0].Fields {
		if field.Name() != "text" {
			continue
		}
		if col, ok := field.(*entity.ColumnVarChar); ok {
			texts = append(texts, col.Data()...)
		}
	}

	return texts, nil
}

// Flush ensures all pending data is persisted.
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Marker strings returned instead of errors. Grounding context is
// best-effort enrichment: its absence must never abort a turn, so
// every failure mode degrades to a fixed marker that flows into the
// prompt as-is.
const (
	NoQueryContext         = "No query provided for context retrieval."
	CollectionErrorContext = "Error: Could not access original tale context."
	QueryErrorContext      = "Error retrieving context from original tale."
	NoMatchContext         = "No specific context found in the original tale for this situation."

	contextPrefix = "Relevant context from the original tale: "
)

// Retriever embeds a query and returns the most similar stored
// passages for one tale. It never returns an error to the caller.
type Retriever struct {
	embedder Embedder
	store    VectorStore
	log      *zap.Logger
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, store VectorStore, log *zap.Logger) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("embedder cannot be nil")
	}
	if store == nil {
		return nil, errors.New("vector store cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Retriever{
		embedder: embedder,
		store:    store,
		log:      log,
	}, nil
}

// Retrieve returns grounding context for the query, restricted to one
// tale. On success the top-k chunk texts are concatenated in rank
// order with single spaces and prefixed with a fixed label; every
// failure returns one of the marker strings above.
func (r *Retriever) Retrieve(ctx context.Context, taleTitle, query string, k int) string {
	if query == "" {
		return NoQueryContext
	}

	if err := r.store.Ready(ctx); err != nil {
		r.log.Warn("chunk collection not accessible", zap.String("tale", taleTitle), zap.Error(err))
		return CollectionErrorContext
	}

	records, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(records) == 0 {
		r.log.Warn("query embedding failed", zap.String("tale", taleTitle), zap.Error(err))
		return QueryErrorContext
	}

	texts, err := r.store.Search(ctx, taleTitle, records[0].Embedding, k)
	if err != nil {
		r.log.Warn("chunk search failed", zap.String("tale", taleTitle), zap.Error(err))
		return QueryErrorContext
	}

	if len(texts) == 0 {
		r.log.Info("no relevant chunks found", zap.String("tale", taleTitle))
		return NoMatchContext
	}

	r.log.Debug("retrieved chunks", zap.String("tale", taleTitle), zap.Int("count", len(texts)))
	return fmt.Sprintf("%s%s", contextPrefix, strings.Join(texts, " "))
}

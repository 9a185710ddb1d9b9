package searchindex

import (
	"context"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// Index is the capability surface of the managed search service. Hybrid
// queries combine lexical matching on chunk text with vector similarity and
// return fusion-reranked hits.
type Index interface {
	// EnsureCollection provisions the chunk-document collection. An existing
	// collection with a different vector dimensionality is a *review.ConfigError.
	EnsureCollection(ctx context.Context) error

	// Upsert writes chunk documents. Document IDs are stable per
	// (parent, ordinal), so re-upserting an unchanged review is a no-op.
	Upsert(ctx context.Context, docs []review.ChunkDocument) error

	// DeleteByParent removes every document projected from the given review.
	DeleteByParent(ctx context.Context, parentID int64) error

	// Query runs a hybrid search and returns up to topK hits, best first.
	Query(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error)
}

package projector

import (
	"fmt"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/google/uuid"
)

// chunkNamespace seeds UUIDv5 derivation so chunk-document IDs are a pure
// function of (parent id, ordinal). Changing it orphans every stored document.
var chunkNamespace = uuid.MustParse("f3b1f1f2-9c87-45f0-a2d8-6c2f4b4e9d01")

// ChunkID derives the stable identifier for one chunk of one review.
func ChunkID(parentID int64, ordinal int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("review:%d:chunk:%d", parentID, ordinal))).String()
}

// Projector fans one review out into chunk documents carrying denormalized
// parent fields. The configured dimension guards the index invariant: a
// vector of any other length never reaches the search index.
type Projector struct {
	dimension int
}

func New(dimension int) *Projector {
	return &Projector{dimension: dimension}
}

// Project builds one ChunkDocument per chunk. Requires one vector per chunk.
// Re-running on the same inputs yields identical document IDs, so upserts of
// an unchanged review are idempotent. Deleted parents are not projected;
// callers remove their documents with a delete-by-parent request instead.
func (p *Projector) Project(rec review.Review, chunks []string, vectors [][]float32) ([]review.ChunkDocument, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: got %d chunks but %d vectors", review.ErrInvalidParameter, len(chunks), len(vectors))
	}
	if rec.Deleted {
		return nil, fmt.Errorf("%w: review %d is deleted, remove its documents instead", review.ErrInvalidParameter, rec.ID)
	}

	docs := make([]review.ChunkDocument, 0, len(chunks))
	for i, text := range chunks {
		if p.dimension > 0 && len(vectors[i]) != p.dimension {
			return nil, fmt.Errorf("%w: chunk %d vector has %d dimensions, index expects %d",
				review.ErrInvalidInput, i, len(vectors[i]), p.dimension)
		}
		docs = append(docs, review.ChunkDocument{
			ID:           ChunkID(rec.ID, i),
			ParentID:     rec.ID,
			Ordinal:      i,
			Text:         text,
			Vector:       vectors[i],
			ProductID:    rec.ProductID,
			CombinedText: rec.CombinedText,
			Summary:      rec.Summary,
			Score:        rec.Score,
		})
	}
	return docs, nil
}

package answer

import (
	"context"
	"fmt"
	"sort"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/embedding"
	"github.com/akonduru/reviewrag/internal/rag/llm"
	"github.com/akonduru/reviewrag/internal/rag/searchindex"
	"github.com/akonduru/reviewrag/internal/retry"
	"github.com/akonduru/reviewrag/pkg/logx"
)

// Service answers natural-language questions about the indexed reviews.
// Callers branch on the domain errors: review.ErrNoResults means retrieval
// came back empty, review.ErrGenerationFailed means retrieval succeeded but
// the completion call did not.
type Service interface {
	Answer(ctx context.Context, query string, topK int) (review.QueryResult, error)
}

type service struct {
	index    searchindex.Index
	embedder embedding.Embedder
	llm      llm.Provider
	retrier  retry.Policy
	logger   *logx.Logger
}

func NewService(index searchindex.Index, embedder embedding.Embedder, provider llm.Provider, retrier retry.Policy) Service {
	return &service{
		index:    index,
		embedder: embedder,
		llm:      provider,
		retrier:  retrier,
		logger:   logx.NewLogger("Answer Service"),
	}
}

func (s *service) Answer(ctx context.Context, query string, topK int) (review.QueryResult, error) {
	result := review.QueryResult{Question: query}

	if query == "" {
		return result, fmt.Errorf("%w: empty query", review.ErrInvalidParameter)
	}
	if topK <= 0 {
		return result, fmt.Errorf("%w: topK must be positive", review.ErrInvalidParameter)
	}

	queryVector, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		return result, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.executeRetrievalStep(ctx, query, queryVector, topK)
	if err != nil {
		return result, fmt.Errorf("hybrid retrieval: %w", err)
	}
	if len(hits) == 0 {
		return result, review.ErrNoResults
	}

	orderHits(hits)
	result.Hits = hits

	generated, err := s.executeGenerationStep(ctx, query, hits)
	if err != nil {
		return result, err
	}
	result.Answer = generated
	result.CitedParents = citedParents(generated, hits)

	return result, nil
}

// orderHits enforces the deterministic ordering contract: descending combined
// score, ties broken by rerank score, then chunk id.
func orderHits(hits []review.QueryHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].RerankScore != hits[j].RerankScore {
			return hits[i].RerankScore > hits[j].RerankScore
		}
		return hits[i].Doc.ID < hits[j].Doc.ID
	})
}

package answer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	var vector []float32
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		vector, callErr = s.embedder.GetEmbedding(ctx, query)
		return callErr
	})
	return vector, err
}

func (s *service) executeRetrievalStep(ctx context.Context, query string, vector []float32, topK int) ([]review.QueryHit, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("hybrid_query", time.Since(start)) }()

	var hits []review.QueryHit
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		hits, callErr = s.index.Query(ctx, query, vector, topK)
		return callErr
	})
	return hits, err
}

func (s *service) executeGenerationStep(ctx context.Context, query string, hits []review.QueryHit) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	grounding := make([]string, 0, len(hits))
	for _, h := range hits {
		grounding = append(grounding, groundingLine(h.Doc))
	}

	var generated string
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		generated, callErr = s.llm.Generate(ctx, query, grounding)
		return callErr
	})
	if err != nil {
		s.logger.Error("generation failed after retrieval succeeded", "error", err)
		if errors.Is(err, review.ErrGenerationFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", review.ErrGenerationFailed, err)
	}
	return generated, nil
}

// groundingLine renders one retrieved chunk the way the model is told to cite
// it: review id first, then product id, then the excerpt.
func groundingLine(doc review.ChunkDocument) string {
	return fmt.Sprintf("Review %d (product %s, score %d/5): %s", doc.ParentID, doc.ProductID, doc.Score, doc.Text)
}

// citedParents extracts the parent ids the generated text actually mentions,
// in hit order, deduplicated.
func citedParents(generated string, hits []review.QueryHit) []int64 {
	seen := make(map[int64]bool, len(hits))
	var cited []int64
	for _, h := range hits {
		id := h.Doc.ParentID
		if seen[id] {
			continue
		}
		if strings.Contains(generated, strconv.FormatInt(id, 10)) {
			seen[id] = true
			cited = append(cited, id)
		}
	}
	return cited
}

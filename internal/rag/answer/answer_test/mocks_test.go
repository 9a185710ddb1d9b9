package answer_test

import (
	"context"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// MockIndex implements searchindex.Index
type MockIndex struct {
	OnEnsureCollection func(ctx context.Context) error
	OnUpsert           func(ctx context.Context, docs []review.ChunkDocument) error
	OnDeleteByParent   func(ctx context.Context, parentID int64) error
	OnQuery            func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error)
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx)
	}
	return nil
}

func (m *MockIndex) Upsert(ctx context.Context, docs []review.ChunkDocument) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, docs)
	}
	return nil
}

func (m *MockIndex) DeleteByParent(ctx context.Context, parentID int64) error {
	if m.OnDeleteByParent != nil {
		return m.OnDeleteByParent(ctx, parentID)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, text, vector, topK)
	}
	return nil, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int { return 2 }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, grounding []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, query string, grounding []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, grounding)
	}
	return "mocked llm response", nil
}

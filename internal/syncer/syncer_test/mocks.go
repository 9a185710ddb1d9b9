package syncer_test

import (
	"context"
	"sync"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// MockSource implements syncer.RecordSource over an in-memory slice, serving
// records the way the review store does: ascending change marker, capped at
// limit.
type MockSource struct {
	mu      sync.Mutex
	Records []review.Review
	Calls   int
}

func (m *MockSource) ListChangedSince(ctx context.Context, marker int64, limit int) ([]review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	var out []review.Review
	for _, rec := range m.Records {
		if rec.LastModified > marker {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// MockIndex records upserts and deletes, optionally failing per parent id.
type MockIndex struct {
	mu        sync.Mutex
	Upserted  map[int64][]review.ChunkDocument
	DeletedBy []int64
	FailOn    map[int64]error
}

func NewMockIndex() *MockIndex {
	return &MockIndex{
		Upserted: make(map[int64][]review.ChunkDocument),
		FailOn:   make(map[int64]error),
	}
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockIndex) Upsert(ctx context.Context, docs []review.ChunkDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		if err := m.FailOn[doc.ParentID]; err != nil {
			return err
		}
	}
	for _, doc := range docs {
		m.Upserted[doc.ParentID] = append(m.Upserted[doc.ParentID], doc)
	}
	return nil
}

func (m *MockIndex) DeleteByParent(ctx context.Context, parentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn[parentID]; err != nil {
		return err
	}
	m.DeletedBy = append(m.DeletedBy, parentID)
	delete(m.Upserted, parentID)
	return nil
}

func (m *MockIndex) Query(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
	return nil, nil
}

func (m *MockIndex) UpsertCount(parentID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Upserted[parentID])
}

func (m *MockIndex) DeleteCount(parentID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range m.DeletedBy {
		if id == parentID {
			n++
		}
	}
	return n
}

// MockEmbedder returns fixed-size vectors and can block or fail on demand.
type MockEmbedder struct {
	mu         sync.Mutex
	BatchCalls int
	FailText   string
	FailErr    error
	Release    chan struct{}
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	m.BatchCalls++
	failText, failErr := m.FailText, m.FailErr
	m.mu.Unlock()

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		if failErr != nil && chunk == failText {
			return nil, failErr
		}
		vectors[i] = []float32{float32(len(chunk)), 0.5}
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int { return 2 }

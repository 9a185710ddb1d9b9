package answer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/answer"
	"github.com/akonduru/reviewrag/internal/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func catFoodHits() []review.QueryHit {
	return []review.QueryHit{
		{
			Doc: review.ChunkDocument{
				ID:        "chunk-a",
				ParentID:  101,
				Ordinal:   0,
				Text:      "My cat loved this food, will order again.",
				ProductID: "B001",
				Summary:   "Great!",
				Score:     5,
			},
			Score:       0.91,
			RerankScore: 0.91,
		},
		{
			Doc: review.ChunkDocument{
				ID:        "chunk-b",
				ParentID:  205,
				Ordinal:   0,
				Text:      "Decent kibble but the bag arrived torn.",
				ProductID: "B002",
				Summary:   "Okay",
				Score:     3,
			},
			Score:       0.44,
			RerankScore: 0.44,
		},
	}
}

func TestAnswerSuccess(t *testing.T) {
	ctx := context.Background()

	embedder := &MockEmbedder{}
	index := &MockIndex{
		OnQuery: func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
			if text != "Cat food" {
				t.Errorf("expected query text to reach the index, got %q", text)
			}
			if topK != 5 {
				t.Errorf("expected topK 5, got %d", topK)
			}
			return catFoodHits(), nil
		},
	}
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, grounding []string) (string, error) {
			if len(grounding) != 2 {
				t.Fatalf("expected 2 grounding lines, got %d", len(grounding))
			}
			return "Review 101 for product B001 says the cat loved it.", nil
		},
	}

	svc := answer.NewService(index, embedder, llm, testPolicy())
	result, err := svc.Answer(ctx, "Cat food", 5)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.Answer == "" {
		t.Fatal("expected a non-empty answer")
	}
	if len(result.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(result.Hits))
	}
	if result.Hits[0].Doc.ProductID != "B001" {
		t.Errorf("expected top hit product B001, got %s", result.Hits[0].Doc.ProductID)
	}
	if len(result.CitedParents) != 1 || result.CitedParents[0] != 101 {
		t.Errorf("expected cited parents [101], got %v", result.CitedParents)
	}
}

func TestAnswerOrdersHitsDeterministically(t *testing.T) {
	hits := []review.QueryHit{
		{Doc: review.ChunkDocument{ID: "z", ParentID: 3}, Score: 0.5, RerankScore: 0.2},
		{Doc: review.ChunkDocument{ID: "a", ParentID: 1}, Score: 0.5, RerankScore: 0.2},
		{Doc: review.ChunkDocument{ID: "m", ParentID: 2}, Score: 0.9, RerankScore: 0.1},
		{Doc: review.ChunkDocument{ID: "k", ParentID: 4}, Score: 0.5, RerankScore: 0.7},
	}
	index := &MockIndex{
		OnQuery: func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
			out := make([]review.QueryHit, len(hits))
			copy(out, hits)
			return out, nil
		},
	}

	svc := answer.NewService(index, &MockEmbedder{}, &MockLLM{}, testPolicy())
	result, err := svc.Answer(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	wantIDs := []string{"m", "k", "a", "z"}
	for i, want := range wantIDs {
		if result.Hits[i].Doc.ID != want {
			t.Errorf("hit %d: expected id %s, got %s", i, want, result.Hits[i].Doc.ID)
		}
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	svc := answer.NewService(&MockIndex{}, &MockEmbedder{}, &MockLLM{}, testPolicy())

	_, err := svc.Answer(context.Background(), "", 5)
	if !errors.Is(err, review.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	_, err = svc.Answer(context.Background(), "valid", 0)
	if !errors.Is(err, review.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for topK 0, got %v", err)
	}
}

func TestAnswerNoResults(t *testing.T) {
	index := &MockIndex{
		OnQuery: func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
			return nil, nil
		},
	}
	llmCalled := false
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, grounding []string) (string, error) {
			llmCalled = true
			return "", nil
		},
	}

	svc := answer.NewService(index, &MockEmbedder{}, llm, testPolicy())
	_, err := svc.Answer(context.Background(), "obscure question", 5)
	if !errors.Is(err, review.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if llmCalled {
		t.Error("generation must not run when retrieval is empty")
	}
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	embedder := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			return nil, review.ErrInvalidInput
		},
	}

	svc := answer.NewService(&MockIndex{}, embedder, &MockLLM{}, testPolicy())
	_, err := svc.Answer(context.Background(), "query", 5)
	if !errors.Is(err, review.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswerRetriesTransientRetrieval(t *testing.T) {
	calls := 0
	index := &MockIndex{
		OnQuery: func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
			calls++
			if calls == 1 {
				return nil, review.ErrServiceUnavailable
			}
			return catFoodHits(), nil
		},
	}

	svc := answer.NewService(index, &MockEmbedder{}, &MockLLM{}, testPolicy())
	_, err := svc.Answer(context.Background(), "Cat food", 5)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 query attempts, got %d", calls)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	index := &MockIndex{
		OnQuery: func(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
			return catFoodHits(), nil
		},
	}
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, grounding []string) (string, error) {
			return "", errors.New("model refused")
		},
	}

	svc := answer.NewService(index, &MockEmbedder{}, llm, testPolicy())
	result, err := svc.Answer(context.Background(), "Cat food", 5)
	if !errors.Is(err, review.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if len(result.Hits) != 2 {
		t.Errorf("expected hits to survive a generation failure, got %d", len(result.Hits))
	}
}

package projector

import (
	"errors"
	"testing"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

func sampleReview() review.Review {
	return review.Review{
		ID:           1,
		ProductID:    "B001",
		Score:        5,
		Summary:      "Great!",
		Body:         "My cat loved it.",
		CombinedText: "Summary: Great! | Review: My cat loved it.",
	}
}

func vectorsFor(chunks []string, dim int) [][]float32 {
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = make([]float32, dim)
	}
	return out
}

func TestProject_OnePerChunkWithParentFields(t *testing.T) {
	p := New(4)
	chunks := []string{"Summary: Great! | Re", "at! | Review: My cat", " cat loved it."}

	docs, err := p.Project(sampleReview(), chunks, vectorsFor(chunks, 4))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, d := range docs {
		if d.ParentID != 1 {
			t.Errorf("doc %d parent got %d, want 1", i, d.ParentID)
		}
		if d.Ordinal != i {
			t.Errorf("doc %d ordinal got %d", i, d.Ordinal)
		}
		if d.ProductID != "B001" || d.Summary != "Great!" || d.Score != 5 {
			t.Errorf("doc %d denormalized fields wrong: %+v", i, d)
		}
		if d.CombinedText != "Summary: Great! | Review: My cat loved it." {
			t.Errorf("doc %d combined text got %q", i, d.CombinedText)
		}
		if d.Text != chunks[i] {
			t.Errorf("doc %d text got %q", i, d.Text)
		}
	}
}

func TestProject_Idempotent(t *testing.T) {
	p := New(0)
	chunks := []string{"alpha", "beta"}
	vecs := vectorsFor(chunks, 2)

	first, err := p.Project(sampleReview(), chunks, vecs)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	second, err := p.Project(sampleReview(), chunks, vecs)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("doc %d id changed between runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	// Different ordinals and parents land on different ids.
	if ChunkID(1, 0) == ChunkID(1, 1) || ChunkID(1, 0) == ChunkID(2, 0) {
		t.Error("chunk ids are not unique per (parent, ordinal)")
	}
}

func TestProject_LengthMismatch(t *testing.T) {
	p := New(0)
	_, err := p.Project(sampleReview(), []string{"a", "b"}, vectorsFor([]string{"a"}, 2))
	if !errors.Is(err, review.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestProject_DimensionMismatch(t *testing.T) {
	p := New(4)
	_, err := p.Project(sampleReview(), []string{"a"}, vectorsFor([]string{"a"}, 3))
	if !errors.Is(err, review.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProject_DeletedParentRefused(t *testing.T) {
	p := New(0)
	rec := sampleReview()
	rec.Deleted = true
	_, err := p.Project(rec, []string{"a"}, vectorsFor([]string{"a"}, 1))
	if !errors.Is(err, review.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for deleted parent, got %v", err)
	}
}

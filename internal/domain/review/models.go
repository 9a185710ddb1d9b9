package review

import (
	"fmt"
	"time"
)

// Review is a single product review row in the record store. The ID never
// changes once created; LastModified is a strictly increasing change marker
// maintained by the store on every mutation (including soft delete).
type Review struct {
	ID           int64     `json:"id"`
	ProductID    string    `json:"product_id"`
	UserID       string    `json:"user_id"`
	Score        int       `json:"score"`
	Summary      string    `json:"summary"`
	Body         string    `json:"body"`
	CombinedText string    `json:"combined_text"`
	LastModified int64     `json:"last_modified"` //unix nanoseconds
	Deleted      bool      `json:"deleted"`
	CreatedTime  time.Time `json:"created_time,omitempty"`
}

// Combine derives the single searchable string the index is built from.
func Combine(summary, body string) string {
	return fmt.Sprintf("Summary: %s | Review: %s", summary, body)
}

// ChunkDocument is one indexed slice of a review's combined text. The ID is
// derived from parent id + ordinal so re-projection of an unchanged review
// upserts the same documents. Parent fields are denormalized copies taken at
// projection time; the next sync refreshes them.
type ChunkDocument struct {
	ID           string    `json:"chunk_id"`
	ParentID     int64     `json:"parent_id"`
	Ordinal      int       `json:"chunk_order"`
	Text         string    `json:"content"`
	Vector       []float32 `json:"-"`
	ProductID    string    `json:"product_id"`
	CombinedText string    `json:"combined_text"`
	Summary      string    `json:"summary"`
	Score        int       `json:"score"`
}

// QueryHit pairs a retrieved chunk with its combined relevance score and the
// score assigned by the fusion re-ranker.
type QueryHit struct {
	Doc         ChunkDocument `json:"chunk"`
	Score       float32       `json:"score"`
	RerankScore float32       `json:"rerank_score,omitempty"`
}

// QueryResult is the outcome of one answered question.
type QueryResult struct {
	Question     string     `json:"question"`
	Hits         []QueryHit `json:"hits"`
	Answer       string     `json:"answer"`
	CitedParents []int64    `json:"cited_parents"`
}

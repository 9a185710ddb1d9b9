package api

type QueryResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Cited    []int64  `json:"cited_reviews,omitempty"`
	Sources  []Source `json:"sources"`
}

type Source struct {
	ReviewID  int64   `json:"review_id" example:"12345"`
	ProductID string  `json:"product_id" example:"B001E4KFG0"`
	Score     int     `json:"score" example:"5"`
	Excerpt   string  `json:"excerpt"`
	Relevance float32 `json:"relevance"`
}

type SyncResponse struct {
	Cursor   int64   `json:"cursor"`
	Scanned  int     `json:"scanned"`
	Upserted int     `json:"upserted"`
	Deleted  int     `json:"deleted"`
	Skipped  []int64 `json:"skipped,omitempty"`
}

type UploadResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type ErrorResponse struct {
	Status string         `json:"status" example:"Error"`
	Error  *OutgoingError `json:"error,omitempty"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"review not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// requests---------------------

type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k,omitempty"`
}

type ReviewUpload struct {
	ID        int64  `json:"id" validate:"required"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Score     int    `json:"score"`
	Summary   string `json:"summary"`
	Text      string `json:"text"`
}

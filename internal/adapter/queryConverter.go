package adapter

import (
	"github.com/akonduru/reviewrag/internal/api"
	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/syncer"
)

func ToQueryResponse(result review.QueryResult) api.QueryResponse {
	sources := make([]api.Source, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sources = append(sources, api.Source{
			ReviewID:  hit.Doc.ParentID,
			ProductID: hit.Doc.ProductID,
			Score:     hit.Doc.Score,
			Excerpt:   hit.Doc.Text,
			Relevance: hit.Score,
		})
	}
	return api.QueryResponse{
		Question: result.Question,
		Answer:   result.Answer,
		Cited:    result.CitedParents,
		Sources:  sources,
	}
}

func ToSyncResponse(result syncer.Result) api.SyncResponse {
	return api.SyncResponse{
		Cursor:   result.Cursor,
		Scanned:  result.Scanned,
		Upserted: result.Upserted,
		Deleted:  result.Deleted,
		Skipped:  result.Skipped,
	}
}

func ToUploadResponse(inserted, skipped int) api.UploadResponse {
	return api.UploadResponse{Inserted: inserted, Skipped: skipped}
}

func BadRequest(message string, code int, retry bool) api.ErrorResponse {
	return api.ErrorResponse{
		Status: "Error",
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   retry,
		},
	}
}

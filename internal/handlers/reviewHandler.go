package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/akonduru/reviewrag/internal/adapter"
	"github.com/akonduru/reviewrag/internal/adapter/utils"
	"github.com/akonduru/reviewrag/internal/ingest"
)

// PostReviewsHandler bulk-loads reviews, either a multipart CSV export or a
// JSON array of review objects. Malformed rows are skipped and counted, not
// fatal.
func PostReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	const maxUploadSize = 128 << 20 //128mb, the full Amazon export is large

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		inserted, skipped, err := ingest.LoadJSON(r.Context(), http.MaxBytesReader(w, r.Body, maxUploadSize), handlerInstance.reviews)
		if err != nil {
			logRH.Error("json review load failed", "error", err)
			WriteErrorResponse(w, statusForError(err), err.Error())
			return
		}
		writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(inserted, skipped))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("reviews")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	logRH.Info("loading review export", "file", fileMetadata.Filename, "size", fileMetadata.Size)
	inserted, skipped, err := ingest.LoadCSV(r.Context(), fileReader, handlerInstance.reviews)
	if err != nil {
		logRH.Error("review load failed", "file", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(inserted, skipped))
}

// DeleteReviewHandler tombstones a review. The next sync pass removes its
// chunks from the search index.
func DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	id, err := strconv.ParseInt(idString, 10, 64)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "review id must be numeric")
		return
	}

	if err := handlerInstance.reviews.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteErrorResponse(w, http.StatusNotFound, "review not found")
			return
		}
		logRH.Error("soft delete failed", "review", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not delete review")
		return
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "id": idString})
}

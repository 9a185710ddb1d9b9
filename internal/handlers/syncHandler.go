package handlers

import (
	"net/http"

	"github.com/akonduru/reviewrag/internal/adapter"
)

// PostSyncHandler runs one synchronization pass and reports what it did.
// A pass already in flight yields 409 rather than queueing a second one.
func PostSyncHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	result, err := handlerInstance.pipeline.Sync(r.Context())
	if err != nil {
		logRH.Warn("sync pass failed", "error", err)
		WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToSyncResponse(result))
}

// PostSyncResetHandler clears the cursor so the next pass replays the whole
// record store. The index stays intact; replay is idempotent.
func PostSyncResetHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	if err := handlerInstance.cursorStore.Reset(r.Context()); err != nil {
		logRH.Error("cursor reset failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not reset cursor")
		return
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "reset"})
}

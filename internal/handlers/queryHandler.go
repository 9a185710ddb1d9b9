package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/akonduru/reviewrag/internal/adapter"
	"github.com/akonduru/reviewrag/internal/api"
	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/rag/answer"
	"github.com/akonduru/reviewrag/internal/store"
	"github.com/akonduru/reviewrag/internal/syncer"
	"github.com/akonduru/reviewrag/internal/syncer/cursor"
	"github.com/akonduru/reviewrag/pkg/logx"
)

var (
	handlerInstance *serviceHandler //private singleton
	once            sync.Once
	logRH           *logx.Logger
)

type serviceHandler struct {
	answerService answer.Service
	pipeline      *syncer.Pipeline
	cursorStore   cursor.Store
	reviews       *store.ReviewStore
}

func InitHandlers(answerService answer.Service, pipeline *syncer.Pipeline, cursorStore cursor.Store, reviews *store.ReviewStore) {
	once.Do(func() {
		handlerInstance = &serviceHandler{
			answerService: answerService,
			pipeline:      pipeline,
			cursorStore:   cursorStore,
			reviews:       reviews,
		}
		logRH = logx.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostQueryHandler answers a question over the indexed reviews.
func PostQueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the query handler reader :", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logRH.Warn("Bad Query Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	topK := requestData.TopK
	if topK == 0 {
		topK = config.DefaultTopK
	}
	if topK < 0 || topK > config.MaxTopK {
		WriteErrorResponse(w, http.StatusBadRequest, "top_k out of range")
		return
	}

	result, err := handlerInstance.answerService.Answer(r.Context(), requestData.Question, topK)
	if err != nil {
		logRH.Warn("query failed", "error", err)
		WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(result))
}

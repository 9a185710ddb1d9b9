package middleware

import (
	"net/http"
	"strconv"

	"github.com/akonduru/reviewrag/internal/handlers"
	"github.com/akonduru/reviewrag/internal/metrics"
	"github.com/akonduru/reviewrag/pkg/logx"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logx.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var PostQueryHandler = Wrap(handlers.PostQueryHandler)
var PostSyncHandler = Wrap(handlers.PostSyncHandler)
var PostSyncResetHandler = Wrap(handlers.PostSyncResetHandler)
var PostReviewsHandler = Wrap(handlers.PostReviewsHandler)
var DeleteReviewHandler = Wrap(handlers.DeleteReviewHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logx.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	return re
}

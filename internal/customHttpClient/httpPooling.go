package customHttpClient

import (
	"net/http"

	"github.com/akonduru/reviewrag/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns an http.Client that reuses connections across the
// REST-based provider SDKs, so back-to-back embedding batches do not pay a
// handshake per call.
func NewPooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}

package review

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline and query paths. External service failures
// are wrapped with one of these so callers can branch on errors.Is without
// knowing which provider produced them.
var (
	//retryable
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")

	//not retryable: the input itself is the problem, skip and report
	ErrInvalidInput = errors.New("invalid input")

	//bad arguments to a local operation (chunker, projector)
	ErrInvalidParameter = errors.New("invalid parameter")

	//retrieval came back empty; user-visible "no match", not a failure
	ErrNoResults = errors.New("no matching reviews")

	//the completion call failed after retries; distinct from retrieval errors
	ErrGenerationFailed = errors.New("answer generation failed")

	//a sync batch is already running against the cursor
	ErrSyncBusy = errors.New("sync already in progress")
)

// ConfigError reports a startup misconfiguration, e.g. the index collection
// exists with a different vector dimensionality. Always fatal.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}

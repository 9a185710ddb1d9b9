package embedding

import (
	"context"
	"fmt"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// Embedder maps text to fixed-length dense vectors via an external service.
// Implementations classify provider failures into the domain error taxonomy:
// review.ErrRateLimited and review.ErrServiceUnavailable are retryable,
// review.ErrInvalidInput (text too long) is not.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}

// VerifyDimension checks the embedder's vector width against the one the
// index was sized for. A mismatch would corrupt every upsert, so callers
// should treat the returned ConfigError as fatal.
func VerifyDimension(e Embedder, want int) error {
	got := e.Dimension()
	if got != want {
		return &review.ConfigError{
			Field:  "embedding.dimension",
			Reason: fmt.Sprintf("embedder produces %d-dimensional vectors, index expects %d", got, want),
		}
	}
	return nil
}

// ClassifyHTTP maps a provider HTTP status onto the domain taxonomy. Used by
// REST-based providers; gRPC-based ones classify on status codes directly.
func ClassifyHTTP(statusCode int, err error) error {
	switch {
	case statusCode == 429:
		return fmt.Errorf("%w: %v", review.ErrRateLimited, err)
	case statusCode >= 500:
		return fmt.Errorf("%w: %v", review.ErrServiceUnavailable, err)
	case statusCode == 400 || statusCode == 413:
		return fmt.Errorf("%w: %v", review.ErrInvalidInput, err)
	default:
		return err
	}
}

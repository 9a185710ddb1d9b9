package googleEmbedding

import (
	"errors"
	"fmt"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/embedding"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify maps genai transport failures onto the domain error taxonomy.
// The SDK surfaces gRPC status codes on the Vertex transport and APIError
// with an HTTP code on the REST transport; handle both.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return fmt.Errorf("%w: %v", review.ErrRateLimited, err)
		case codes.Unavailable, codes.DeadlineExceeded:
			return fmt.Errorf("%w: %v", review.ErrServiceUnavailable, err)
		case codes.InvalidArgument:
			return fmt.Errorf("%w: %v", review.ErrInvalidInput, err)
		}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return embedding.ClassifyHTTP(apiErr.Code, err)
	}

	return err
}

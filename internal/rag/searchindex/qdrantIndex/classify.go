package qdrantIndex

import (
	"fmt"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify maps qdrant gRPC failures onto the domain taxonomy so the sync
// pipeline retries what is worth retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted:
			return fmt.Errorf("%w: %v", review.ErrRateLimited, err)
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return fmt.Errorf("%w: %v", review.ErrServiceUnavailable, err)
		case codes.InvalidArgument:
			return fmt.Errorf("%w: %v", review.ErrInvalidInput, err)
		}
	}
	return err
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/akonduru/reviewrag/internal/api"
	"github.com/akonduru/reviewrag/internal/domain/review"
)

// LoadJSON reads a JSON array of reviews from r and bulk-inserts them into
// the record store. Entries without a positive id are skipped and counted,
// not fatal. Returns (inserted, skipped).
func LoadJSON(ctx context.Context, r io.Reader, sink ReviewSink) (int, int, error) {
	decoder := json.NewDecoder(r)

	token, err := decoder.Token()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read json body: %v", review.ErrInvalidInput, err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return 0, 0, fmt.Errorf("%w: expected a json array of reviews", review.ErrInvalidInput)
	}

	var (
		batch    []review.Review
		inserted int
		skipped  int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := sink.InsertBatch(ctx, batch)
		inserted += n
		batch = batch[:0]
		return err
	}

	for entry := 1; decoder.More(); entry++ {
		var upload api.ReviewUpload
		if err := decoder.Decode(&upload); err != nil {
			return inserted, skipped, fmt.Errorf("%w: decode review entry %d: %v", review.ErrInvalidInput, entry, err)
		}
		if upload.ID <= 0 {
			logger.Warn("skipping review without a valid id", "entry", entry, "id", upload.ID)
			skipped++
			continue
		}

		batch = append(batch, review.Review{
			ID:           upload.ID,
			ProductID:    upload.ProductID,
			UserID:       upload.UserID,
			Score:        upload.Score,
			Summary:      upload.Summary,
			Body:         upload.Text,
			CombinedText: review.Combine(upload.Summary, upload.Text),
		})

		if len(batch) >= insertBatchSize {
			if err := flush(); err != nil {
				return inserted, skipped, fmt.Errorf("insert batch at entry %d: %w", entry, err)
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, skipped, fmt.Errorf("insert final batch: %w", err)
	}

	logger.Info("json load complete", "inserted", inserted, "skipped", skipped)
	return inserted, skipped, nil
}

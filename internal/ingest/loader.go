package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/pkg/logx"
)

// ReviewSink is the slice of the record store the loader needs.
type ReviewSink interface {
	InsertBatch(ctx context.Context, reviews []review.Review) (int, error)
}

const insertBatchSize = 500

// expected CSV header columns, matched case-insensitively
var columns = []string{"id", "productid", "userid", "score", "summary", "text"}

var logger = logx.NewLogger("Review Loader")

// LoadCSV reads product reviews from r (header row required) and bulk-inserts
// them into the record store. Rows that fail to parse are skipped and counted,
// not fatal. Returns (inserted, skipped).
func LoadCSV(ctx context.Context, r io.Reader, sink ReviewSink) (int, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return 0, 0, err
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

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed csv row", "line", line, "error", err)
			skipped++
			continue
		}

		rev, err := rowToReview(record, idx)
		if err != nil {
			logger.Warn("skipping unparseable review", "line", line, "error", err)
			skipped++
			continue
		}
		batch = append(batch, rev)

		if len(batch) >= insertBatchSize {
			if err := flush(); err != nil {
				return inserted, skipped, fmt.Errorf("insert batch at line %d: %w", line, err)
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, skipped, fmt.Errorf("insert final batch: %w", err)
	}

	logger.Info("csv load complete", "inserted", inserted, "skipped", skipped)
	return inserted, skipped, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range columns {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("%w: csv missing column %q", review.ErrInvalidInput, want)
		}
	}
	return idx, nil
}

func rowToReview(record []string, idx map[string]int) (review.Review, error) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	id, err := strconv.ParseInt(strings.TrimSpace(field("id")), 10, 64)
	if err != nil {
		return review.Review{}, fmt.Errorf("bad id %q: %w", field("id"), err)
	}
	score, err := strconv.Atoi(strings.TrimSpace(field("score")))
	if err != nil {
		return review.Review{}, fmt.Errorf("bad score %q: %w", field("score"), err)
	}

	summary := field("summary")
	body := field("text")

	return review.Review{
		ID:           id,
		ProductID:    field("productid"),
		UserID:       field("userid"),
		Score:        score,
		Summary:      summary,
		Body:         body,
		CombinedText: review.Combine(summary, body),
	}, nil
}

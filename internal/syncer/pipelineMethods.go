package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/metrics"
	"github.com/akonduru/reviewrag/internal/rag/chunker"
)

type recordOutcome struct {
	recordID int64
	marker   int64
	upserted int
	deleted  int
	err      error
}

// processBatch fans the batch out over a bounded worker pool and collects
// one outcome per record.
func (p *Pipeline) processBatch(ctx context.Context, batch []review.Review) []recordOutcome {
	jobs := make(chan review.Review)
	results := make(chan recordOutcome, len(batch))

	workers := p.workers
	if workers < 1 {
		workers = 1
	}

	var waitGroup sync.WaitGroup
	for i := 0; i < workers; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			metrics.IncrementActiveSyncWorkers()
			defer metrics.DecrementActiveSyncWorkers()
			for rec := range jobs {
				results <- p.processRecord(ctx, rec)
			}
		}()
	}

	for _, rec := range batch {
		jobs <- rec
	}
	close(jobs)
	waitGroup.Wait()
	close(results)

	outcomes := make([]recordOutcome, 0, len(batch))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (p *Pipeline) processRecord(ctx context.Context, rec review.Review) recordOutcome {
	start := time.Now()
	out := recordOutcome{recordID: rec.ID, marker: rec.LastModified}
	defer func() { metrics.CaptureExecutionMetrics("sync_record", time.Since(start)) }()

	if rec.Deleted {
		out.err = p.deleteParent(ctx, rec.ID)
		if out.err == nil {
			out.deleted = 1
			metrics.IncrementParentDeletes()
		}
		return out
	}

	chunks, err := chunker.Split(rec.CombinedText, p.chunkMaxLength, p.chunkOverlap)
	if err != nil {
		out.err = fmt.Errorf("chunk review %d: %w", rec.ID, err)
		return out
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			out.err = err
			return out
		}
	}

	var vectors [][]float32
	err = p.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		vectors, callErr = p.embedder.BatchEmbedding(ctx, chunks)
		return callErr
	})
	if err != nil {
		out.err = fmt.Errorf("embed review %d: %w", rec.ID, err)
		return out
	}

	docs, err := p.projector.Project(rec, chunks, vectors)
	if err != nil {
		out.err = fmt.Errorf("project review %d: %w", rec.ID, err)
		return out
	}

	// Re-chunking a shortened text can leave stale ordinals behind, so the
	// old points go first.
	if err := p.deleteParent(ctx, rec.ID); err != nil {
		out.err = err
		return out
	}

	err = p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.index.Upsert(ctx, docs)
	})
	if err != nil {
		out.err = fmt.Errorf("upsert review %d: %w", rec.ID, err)
		return out
	}

	out.upserted = len(docs)
	metrics.AddDocumentsUpserted(len(docs))
	return out
}

func (p *Pipeline) deleteParent(ctx context.Context, parentID int64) error {
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.index.DeleteByParent(ctx, parentID)
	})
	if err != nil {
		return fmt.Errorf("delete chunks of review %d: %w", parentID, err)
	}
	return nil
}

// Package syncer drives the record store to search index synchronization:
// scan changed records, chunk, embed, project, and upsert them, advancing a
// persisted cursor only through consecutive successes.
package syncer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/metrics"
	"github.com/akonduru/reviewrag/internal/rag/embedding"
	"github.com/akonduru/reviewrag/internal/rag/projector"
	"github.com/akonduru/reviewrag/internal/rag/searchindex"
	"github.com/akonduru/reviewrag/internal/retry"
	"github.com/akonduru/reviewrag/internal/syncer/cursor"
	"github.com/akonduru/reviewrag/pkg/logx"
	"golang.org/x/time/rate"
)

type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateProcessing State = "processing"
	StateSaving     State = "saving_cursor"
)

// RecordSource lists records whose change marker is strictly greater than
// the given marker, in ascending marker order.
type RecordSource interface {
	ListChangedSince(ctx context.Context, marker int64, limit int) ([]review.Review, error)
}

// Result reports what one Sync pass did.
type Result struct {
	Cursor   int64   `json:"cursor"`
	Scanned  int     `json:"scanned"`
	Upserted int     `json:"upserted"`
	Deleted  int     `json:"deleted"`
	Skipped  []int64 `json:"skipped,omitempty"`
}

type Params struct {
	Source      RecordSource
	CursorStore cursor.Store
	Embedder    embedding.Embedder
	Index       searchindex.Index
	Projector   *projector.Projector
	Retrier     retry.Policy

	ChunkMaxLength int
	ChunkOverlap   int
	BatchLimit     int
	Workers        int
	EmbedLimiter   *rate.Limiter
}

type Pipeline struct {
	source      RecordSource
	cursorStore cursor.Store
	embedder    embedding.Embedder
	index       searchindex.Index
	projector   *projector.Projector
	retrier     retry.Policy

	chunkMaxLength int
	chunkOverlap   int
	batchLimit     int
	workers        int
	limiter        *rate.Limiter

	runMutex sync.Mutex
	stateMu  sync.RWMutex
	state    State

	logger *logx.Logger
}

func NewPipeline(p Params) *Pipeline {
	return &Pipeline{
		source:         p.Source,
		cursorStore:    p.CursorStore,
		embedder:       p.Embedder,
		index:          p.Index,
		projector:      p.Projector,
		retrier:        p.Retrier,
		chunkMaxLength: p.ChunkMaxLength,
		chunkOverlap:   p.ChunkOverlap,
		batchLimit:     p.BatchLimit,
		workers:        p.Workers,
		limiter:        p.EmbedLimiter,
		state:          StateIdle,
		logger:         logx.NewLogger("Sync Pipeline"),
	}
}

func (p *Pipeline) State() State {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
}

// Sync runs one full pass. Only one pass may run at a time; a second caller
// gets review.ErrSyncBusy instead of queueing.
func (p *Pipeline) Sync(ctx context.Context) (Result, error) {
	if !p.runMutex.TryLock() {
		return Result{}, review.ErrSyncBusy
	}
	defer p.runMutex.Unlock()
	defer p.setState(StateIdle)

	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureSyncBatchMetrics(status, time.Since(start)) }()

	marker, err := p.cursorStore.Load(ctx)
	if err != nil {
		status = "cursor_load_failed"
		return Result{}, err
	}

	result := Result{Cursor: marker}
	for {
		p.setState(StateScanning)
		batch, err := p.source.ListChangedSince(ctx, result.Cursor, p.batchLimit)
		if err != nil {
			status = "scan_failed"
			return result, err
		}
		if len(batch) == 0 {
			break
		}
		// A full batch may have split a run of equal markers at the limit.
		// Hold those rows back so the whole run lands in the next scan;
		// advancing the cursor to a marker some rows still share would
		// strand them behind the strictly-greater scan.
		full := len(batch) == p.batchLimit
		if full {
			batch = trimTrailingMarker(batch)
		}
		result.Scanned += len(batch)

		p.setState(StateProcessing)
		outcomes := p.processBatch(ctx, batch)

		p.setState(StateSaving)
		advanced, stopped := p.applyOutcomes(ctx, outcomes, &result)
		if !advanced {
			status = "partial"
		}
		if stopped || !full {
			break
		}
	}

	p.logger.Info("sync pass complete",
		"cursor", result.Cursor,
		"scanned", result.Scanned,
		"upserted", result.Upserted,
		"deleted", result.Deleted,
		"skipped", len(result.Skipped))
	return result, nil
}

// applyOutcomes advances the cursor through the prefix of consecutive
// successes and persists it. Returns whether the whole batch succeeded and
// whether the pass should stop.
func (p *Pipeline) applyOutcomes(ctx context.Context, outcomes []recordOutcome, result *Result) (allOK bool, stop bool) {
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].marker != outcomes[j].marker {
			return outcomes[i].marker < outcomes[j].marker
		}
		return outcomes[i].recordID < outcomes[j].recordID
	})

	allOK = true
	var firstFailMarker int64
	for _, out := range outcomes {
		if out.err != nil {
			p.logger.Error("record sync failed", "review", out.recordID, "error", out.err)
			metrics.IncrementRecordsSkipped()
			result.Skipped = append(result.Skipped, out.recordID)
			if allOK {
				firstFailMarker = out.marker
			}
			allOK = false
			continue
		}
		result.Upserted += out.upserted
		result.Deleted += out.deleted
		if allOK {
			result.Cursor = out.marker
		}
	}

	// A success sharing the failed record's marker must not pull the cursor
	// up to it, or the strictly-greater scan would never retry the failure.
	if !allOK && result.Cursor >= firstFailMarker {
		result.Cursor = firstFailMarker - 1
	}

	if err := p.cursorStore.Save(ctx, result.Cursor); err != nil {
		p.logger.Error("cursor save failed, next pass will replay", "error", err)
	}
	return allOK, !allOK
}

// trimTrailingMarker drops the trailing run of records sharing the final
// marker of a full batch, so the next scan refetches the complete run. When
// every record shares one marker there is nothing earlier to hold on to, so
// the batch is processed as is.
func trimTrailingMarker(batch []review.Review) []review.Review {
	last := batch[len(batch)-1].LastModified
	cut := len(batch)
	for cut > 0 && batch[cut-1].LastModified == last {
		cut--
	}
	if cut == 0 {
		return batch
	}
	return batch[:cut]
}

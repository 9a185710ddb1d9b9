package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/projector"
	"github.com/akonduru/reviewrag/internal/retry"
	"github.com/akonduru/reviewrag/internal/syncer"
	"github.com/akonduru/reviewrag/internal/syncer/cursor"
)

func testReview(id, marker int64, text string) review.Review {
	return review.Review{
		ID:           id,
		ProductID:    "B000",
		UserID:       "U1",
		Score:        4,
		Summary:      "summary",
		Body:         text,
		CombinedText: text,
		LastModified: marker,
	}
}

func newTestPipeline(source *MockSource, index *MockIndex, embedder *MockEmbedder, cursorStore cursor.Store, workers, batchLimit int) *syncer.Pipeline {
	return syncer.NewPipeline(syncer.Params{
		Source:         source,
		CursorStore:    cursorStore,
		Embedder:       embedder,
		Index:          index,
		Projector:      projector.New(2),
		Retrier:        retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		ChunkMaxLength: 1000,
		ChunkOverlap:   100,
		BatchLimit:     batchLimit,
		Workers:        workers,
	})
}

func TestSyncHappyPath(t *testing.T) {
	source := &MockSource{Records: []review.Review{
		testReview(1, 10, "the dog food smelled fresh"),
		testReview(2, 20, "my cat refused to eat this"),
	}}
	index := NewMockIndex()
	embedder := &MockEmbedder{}
	cursorStore := cursor.InitInMemoryCursorStore()
	pipeline := newTestPipeline(source, index, embedder, cursorStore, 2, 100)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Cursor != 20 {
		t.Errorf("expected cursor 20, got %d", result.Cursor)
	}
	if result.Scanned != 2 || result.Upserted != 2 || result.Deleted != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if index.UpsertCount(1) != 1 || index.UpsertCount(2) != 1 {
		t.Error("expected one chunk per review in the index")
	}

	saved, _ := cursorStore.Load(context.Background())
	if saved != 20 {
		t.Errorf("expected persisted cursor 20, got %d", saved)
	}

	// Nothing changed, so a second pass is a no-op.
	result, err = pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if result.Scanned != 0 || result.Cursor != 20 {
		t.Errorf("expected empty second pass at cursor 20, got %+v", result)
	}
}

func TestSyncPropagatesDeletes(t *testing.T) {
	rec := testReview(7, 15, "returned it")
	rec.Deleted = true
	source := &MockSource{Records: []review.Review{rec}}
	index := NewMockIndex()
	pipeline := newTestPipeline(source, index, &MockEmbedder{}, cursor.InitInMemoryCursorStore(), 1, 100)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Deleted != 1 || result.Upserted != 0 {
		t.Errorf("expected one delete, got %+v", result)
	}
	if index.DeleteCount(7) != 1 {
		t.Errorf("expected DeleteByParent(7) once, got %d", index.DeleteCount(7))
	}
	if result.Cursor != 15 {
		t.Errorf("expected cursor 15, got %d", result.Cursor)
	}
}

func TestSyncCursorNeverPassesSkippedRecord(t *testing.T) {
	badText := "this one breaks the embedder"
	source := &MockSource{Records: []review.Review{
		testReview(1, 10, "first record is fine"),
		testReview(2, 20, badText),
		testReview(3, 30, "third record is also fine"),
	}}
	index := NewMockIndex()
	embedder := &MockEmbedder{FailText: badText, FailErr: review.ErrInvalidInput}
	cursorStore := cursor.InitInMemoryCursorStore()
	pipeline := newTestPipeline(source, index, embedder, cursorStore, 1, 100)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Cursor != 10 {
		t.Errorf("cursor must stop before the failed record, got %d", result.Cursor)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
		t.Errorf("expected skipped [2], got %v", result.Skipped)
	}

	// Once the record embeds cleanly, the next pass replays it and moves on.
	embedder.mu.Lock()
	embedder.FailErr = nil
	embedder.mu.Unlock()

	result, err = pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("replay Sync failed: %v", err)
	}
	if result.Cursor != 30 {
		t.Errorf("expected cursor 30 after replay, got %d", result.Cursor)
	}
	if index.UpsertCount(2) != 1 {
		t.Error("expected the previously skipped record to be indexed on replay")
	}
}

func TestSyncRejectsConcurrentPass(t *testing.T) {
	release := make(chan struct{})
	source := &MockSource{Records: []review.Review{testReview(1, 10, "slow record")}}
	embedder := &MockEmbedder{Release: release}
	pipeline := newTestPipeline(source, NewMockIndex(), embedder, cursor.InitInMemoryCursorStore(), 1, 100)

	done := make(chan error, 1)
	go func() {
		_, err := pipeline.Sync(context.Background())
		done <- err
	}()

	// Wait until the first pass is inside the embedder.
	deadline := time.After(2 * time.Second)
	for pipeline.State() == syncer.StateIdle {
		select {
		case <-deadline:
			t.Fatal("first sync pass never started")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := pipeline.Sync(context.Background())
	if !errors.Is(err, review.ErrSyncBusy) {
		t.Errorf("expected ErrSyncBusy for concurrent pass, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}
}

func TestSyncReplacesStaleChunksOnUpdate(t *testing.T) {
	source := &MockSource{Records: []review.Review{testReview(5, 40, "updated wording")}}
	index := NewMockIndex()
	pipeline := newTestPipeline(source, index, &MockEmbedder{}, cursor.InitInMemoryCursorStore(), 1, 100)

	if _, err := pipeline.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if index.DeleteCount(5) != 1 {
		t.Error("expected old chunks to be dropped before the upsert")
	}
	if index.UpsertCount(5) != 1 {
		t.Errorf("expected 1 fresh chunk, got %d", index.UpsertCount(5))
	}
}

func TestSyncPagesThroughBatches(t *testing.T) {
	source := &MockSource{Records: []review.Review{
		testReview(1, 10, "a"),
		testReview(2, 20, "b"),
		testReview(3, 30, "c"),
	}}
	pipeline := newTestPipeline(source, NewMockIndex(), &MockEmbedder{}, cursor.InitInMemoryCursorStore(), 1, 1)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Cursor != 30 || result.Scanned != 3 {
		t.Errorf("expected all three records over paged batches, got %+v", result)
	}
	if source.Calls < 3 {
		t.Errorf("expected at least 3 scan calls, got %d", source.Calls)
	}
}

func TestSyncCancelledMidBatch(t *testing.T) {
	release := make(chan struct{})
	source := &MockSource{Records: []review.Review{
		testReview(1, 10, "never finishes embedding"),
		testReview(2, 20, "never even starts"),
	}}
	embedder := &MockEmbedder{Release: release}
	cursorStore := cursor.InitInMemoryCursorStore()
	pipeline := newTestPipeline(source, NewMockIndex(), embedder, cursorStore, 1, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan syncer.Result, 1)
	go func() {
		result, _ := pipeline.Sync(ctx)
		done <- result
	}()

	// Wait until the pass is blocked inside the embedder, then pull the plug.
	deadline := time.After(2 * time.Second)
	for pipeline.State() == syncer.StateIdle {
		select {
		case <-deadline:
			t.Fatal("sync pass never started")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	result := <-done
	if result.Cursor != 0 {
		t.Errorf("cancelled pass must not advance the cursor, got %d", result.Cursor)
	}
	if result.Upserted != 0 {
		t.Errorf("expected no upserts after cancellation, got %d", result.Upserted)
	}
	if len(result.Skipped) != 2 {
		t.Errorf("expected both records skipped, got %v", result.Skipped)
	}

	saved, err := cursorStore.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if saved != 0 {
		t.Errorf("persisted cursor must stay 0 after cancellation, got %d", saved)
	}
}

func TestSyncHoldsBackSplitMarkerRun(t *testing.T) {
	// Records 2 and 3 share a change marker that a batch limit of 2 would
	// split at the boundary. Both must still be indexed exactly once.
	source := &MockSource{Records: []review.Review{
		testReview(1, 10, "a"),
		testReview(2, 20, "b"),
		testReview(3, 20, "c"),
		testReview(4, 30, "d"),
	}}
	index := NewMockIndex()
	pipeline := newTestPipeline(source, index, &MockEmbedder{}, cursor.InitInMemoryCursorStore(), 1, 2)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Scanned != 4 || result.Cursor != 30 {
		t.Errorf("expected all four records at cursor 30, got %+v", result)
	}
	for id := int64(1); id <= 4; id++ {
		if index.UpsertCount(id) != 1 {
			t.Errorf("review %d: expected exactly one indexed chunk, got %d", id, index.UpsertCount(id))
		}
	}
}

func TestSyncTiedFailureClampsCursor(t *testing.T) {
	badText := "breaks the embedder"
	source := &MockSource{Records: []review.Review{
		testReview(1, 20, "fine record"),
		testReview(2, 20, badText),
	}}
	embedder := &MockEmbedder{FailText: badText, FailErr: review.ErrInvalidInput}
	cursorStore := cursor.InitInMemoryCursorStore()
	pipeline := newTestPipeline(source, NewMockIndex(), embedder, cursorStore, 2, 100)

	result, err := pipeline.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	// The success shares the failure's marker, so the cursor has to land
	// below it or the failed record would never be rescanned.
	if result.Cursor != 19 {
		t.Errorf("expected cursor clamped to 19, got %d", result.Cursor)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
		t.Errorf("expected skipped [2], got %v", result.Skipped)
	}

	saved, _ := cursorStore.Load(context.Background())
	if saved != 19 {
		t.Errorf("expected persisted cursor 19, got %d", saved)
	}
}

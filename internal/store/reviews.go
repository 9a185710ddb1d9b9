package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akonduru/reviewrag/internal/domain/review"
)

// ReviewStore provides CRUD over the reviews table. Updates never touch
// last_modified directly; the reviews_touch trigger owns the change marker.
type ReviewStore struct {
	db *DB
}

func NewReviewStore(db *DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// InsertBatch inserts reviews in one transaction. CombinedText and the initial
// change marker are filled in here so callers only supply raw fields.
func (s *ReviewStore) InsertBatch(ctx context.Context, reviews []review.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, score, summary, body, combined_text, last_modified, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			product_id = excluded.product_id,
			user_id = excluded.user_id,
			score = excluded.score,
			summary = excluded.summary,
			body = excluded.body,
			combined_text = excluded.combined_text`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range reviews {
		combined := r.CombinedText
		if combined == "" {
			combined = review.Combine(r.Summary, r.Body)
		}
		marker := r.LastModified
		if marker == 0 {
			marker = time.Now().UnixNano()
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.ProductID, r.UserID, r.Score, r.Summary, r.Body, combined, marker); err != nil {
			return inserted, fmt.Errorf("insert review %d: %w", r.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert batch: %w", err)
	}
	return inserted, nil
}

// Get returns the review with the given id, found=false when absent.
func (s *ReviewStore) Get(ctx context.Context, id int64) (review.Review, bool, error) {
	row := s.db.sqlDB.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, score, summary, body, combined_text, last_modified, is_deleted
		FROM reviews WHERE id = ?`, id)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return review.Review{}, false, nil
	}
	if err != nil {
		return review.Review{}, false, fmt.Errorf("get review %d: %w", id, err)
	}
	return r, true, nil
}

// ListChangedSince returns up to limit rows whose change marker is strictly
// greater than marker, oldest first with id as the tie-break so rows sharing
// a marker always come back in the same order. Soft-deleted rows are included:
// deleting bumps the marker, and the pipeline propagates the deletion
// downstream.
func (s *ReviewStore) ListChangedSince(ctx context.Context, marker int64, limit int) ([]review.Review, error) {
	rows, err := s.db.sqlDB.QueryContext(ctx, `
		SELECT id, product_id, user_id, score, summary, body, combined_text, last_modified, is_deleted
		FROM reviews
		WHERE last_modified > ?
		ORDER BY last_modified ASC, id ASC
		LIMIT ?`, marker, limit)
	if err != nil {
		return nil, fmt.Errorf("list changed reviews: %w", err)
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan changed review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an existing review. The trigger bumps
// the change marker so the next sync picks the row up.
func (s *ReviewStore) Update(ctx context.Context, r review.Review) error {
	combined := review.Combine(r.Summary, r.Body)
	res, err := s.db.sqlDB.ExecContext(ctx, `
		UPDATE reviews SET product_id = ?, user_id = ?, score = ?, summary = ?, body = ?, combined_text = ?
		WHERE id = ?`, r.ProductID, r.UserID, r.Score, r.Summary, r.Body, combined, r.ID)
	if err != nil {
		return fmt.Errorf("update review %d: %w", r.ID, err)
	}
	return requireRow(res, r.ID)
}

// SoftDelete marks a review deleted without removing the row.
func (s *ReviewStore) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.sqlDB.ExecContext(ctx, `UPDATE reviews SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("soft delete review %d: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("review %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (review.Review, error) {
	var r review.Review
	var deleted int
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Score, &r.Summary, &r.Body, &r.CombinedText, &r.LastModified, &deleted)
	if err != nil {
		return r, err
	}
	r.Deleted = deleted != 0
	return r, nil
}

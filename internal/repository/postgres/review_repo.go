package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Marketus/internal/domain/goods"
)

var _ goods.ReviewRepo = (*ReviewRepo)(nil)

type ReviewRepo struct{ db *DB }

func NewReviewRepo(db *DB) *ReviewRepo { return &ReviewRepo{db: db} }

const (
	qReviewInsert = `
INSERT INTO reviews (product_id, user_id, rating, text)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	qReviewByID = `
SELECT id, product_id, user_id, rating, text
FROM reviews
WHERE id = $1;`

	qReviewByProductAndUser = `
SELECT id, product_id, user_id, rating, text
FROM reviews
WHERE product_id = $1 AND user_id = $2;`

	qReviewUpdate = `
UPDATE reviews SET rating = $2, text = $3 WHERE id = $1;`

	qReviewDelete = `
DELETE FROM reviews WHERE id = $1;`

	qReviewListByProduct = `
SELECT id, product_id, user_id, rating, text
FROM reviews
WHERE product_id = $1
ORDER BY id
OFFSET $2 LIMIT $3;`
)

func (r *ReviewRepo) Create(ctx context.Context, rv *goods.Review) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.execQueryer(ctx).QueryRow(ctx, qReviewInsert,
		rv.ProductID, rv.UserID, rv.Rating, rv.Text).Scan(&rv.ID); err != nil {
		if uniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("review insert: %w", err)
	}
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (*goods.Review, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rv goods.Review
	if err := scanReview(r.db.execQueryer(ctx).QueryRow(ctx, qReviewByID, id), &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) GetByProductAndUser(ctx context.Context, productID, userID int64) (*goods.Review, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rv goods.Review
	if err := scanReview(r.db.execQueryer(ctx).QueryRow(ctx, qReviewByProductAndUser, productID, userID), &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Update(ctx context.Context, rv *goods.Review) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qReviewUpdate, rv.ID, rv.Rating, rv.Text)
	if err != nil {
		return fmt.Errorf("review update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qReviewDelete, id)
	if err != nil {
		return fmt.Errorf("review delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID int64, offset, limit int32) ([]goods.Review, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qReviewListByProduct, productID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("review list: %w", err)
	}
	defer rows.Close()

	var out []goods.Review
	for rows.Next() {
		var rv goods.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Text); err != nil {
			return nil, fmt.Errorf("review list scan: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func scanReview(row pgx.Row, out *goods.Review) error {
	if err := row.Scan(&out.ID, &out.ProductID, &out.UserID, &out.Rating, &out.Text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan review: %w", err)
	}
	return nil
}

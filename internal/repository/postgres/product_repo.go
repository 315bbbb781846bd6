package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Marketus/internal/domain/goods"
)

var _ goods.ProductRepo = (*ProductRepo)(nil)

type ProductRepo struct{ db *DB }

func NewProductRepo(db *DB) *ProductRepo { return &ProductRepo{db: db} }

const (
	qProductInsert = `
INSERT INTO products (user_id, name, description, price, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, rating, reviews_count;`

	qProductByID = `
SELECT id, user_id, name, description, price, image_url, rating, reviews_count
FROM products
WHERE id = $1;`

	qProductUpdate = `
UPDATE products
SET name = $2, description = $3, price = $4, image_url = $5,
    rating = $6, reviews_count = $7
WHERE id = $1;`

	qProductDelete = `
DELETE FROM products WHERE id = $1;`

	qProductList = `
SELECT id, user_id, name, description, price, image_url, rating, reviews_count
FROM products
ORDER BY id
OFFSET $1 LIMIT $2;`

	qProductRecalc = `
UPDATE products
SET rating        = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0),
    reviews_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
WHERE id = $1;`
)

func (r *ProductRepo) Create(ctx context.Context, p *goods.Product) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.execQueryer(ctx).QueryRow(ctx, qProductInsert,
		p.UserID, p.Name, p.Description, p.Price, p.ImageURL).
		Scan(&p.ID, &p.Rating, &p.ReviewsCount); err != nil {
		return fmt.Errorf("product insert: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*goods.Product, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p goods.Product
	if err := scanProduct(r.db.execQueryer(ctx).QueryRow(ctx, qProductByID, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *goods.Product) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qProductUpdate,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Rating, p.ReviewsCount)
	if err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qProductDelete, id)
	if err != nil {
		return fmt.Errorf("product delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) RecalcRating(ctx context.Context, productID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qProductRecalc, productID); err != nil {
		return fmt.Errorf("product recalc rating: %w", err)
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, offset, limit int32) ([]goods.Product, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qProductList, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}
	defer rows.Close()

	var out []goods.Product
	for rows.Next() {
		var p goods.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Price,
			&p.ImageURL, &p.Rating, &p.ReviewsCount); err != nil {
			return nil, fmt.Errorf("product list scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row, out *goods.Product) error {
	if err := row.Scan(&out.ID, &out.UserID, &out.Name, &out.Description,
		&out.Price, &out.ImageURL, &out.Rating, &out.ReviewsCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan product: %w", err)
	}
	return nil
}

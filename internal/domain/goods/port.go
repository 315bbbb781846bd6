package goods

import "context"

type ProductRepo interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int32) ([]Product, error)
	// RecalcRating refreshes the rating / reviews_count aggregates from
	// the current review rows.
	RecalcRating(ctx context.Context, productID int64) error
}

type ReviewRepo interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	GetByProductAndUser(ctx context.Context, productID, userID int64) (*Review, error)
	Update(ctx context.Context, rv *Review) error
	Delete(ctx context.Context, id int64) error
	ListByProduct(ctx context.Context, productID int64, offset, limit int32) ([]Review, error)
}

package goods

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/goods"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

// Usecase implements the catalog flows. Review mutations and the rating
// aggregate refresh run inside one transaction.
type Usecase struct {
	products goods.ProductRepo
	reviews  goods.ReviewRepo
	tx       pg.Transactor
	log      *zap.Logger
}

func NewUsecase(products goods.ProductRepo, reviews goods.ReviewRepo, tx pg.Transactor, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{products: products, reviews: reviews, tx: tx, log: log}
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

func (u *Usecase) CreateProduct(ctx context.Context, userID int64, in ProductInput) (*goods.Product, error) {
	p := &goods.Product{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
	}
	if err := u.products.Create(ctx, p); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, apperr.New(apperr.Conflict, "Product creation failed")
		}
		return nil, err
	}
	u.log.Info("product created", zap.Int64("product_id", p.ID), zap.Int64("user_id", userID))
	return p, nil
}

func (u *Usecase) GetProduct(ctx context.Context, id int64) (*goods.Product, error) {
	p, err := u.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Product not found")
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) ListProducts(ctx context.Context, offset, limit int32) ([]goods.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return u.products.List(ctx, offset, limit)
}

func (u *Usecase) UpdateProduct(ctx context.Context, userID, id int64, in ProductInput) (*goods.Product, error) {
	p, err := u.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "You can only edit your own products")
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, apperr.New(apperr.Conflict, "Update failed")
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) DeleteProduct(ctx context.Context, userID, id int64) error {
	p, err := u.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return apperr.New(apperr.Forbidden, "You can only delete your own products")
	}
	return u.products.Delete(ctx, id)
}

type ReviewInput struct {
	Rating int32
	Text   string
}

func (u *Usecase) AddReview(ctx context.Context, productID, userID int64, in ReviewInput) (*goods.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.New(apperr.Conflict, "Rating must be between 1 and 5")
	}
	if _, err := u.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := u.reviews.GetByProductAndUser(ctx, productID, userID); err == nil {
		return nil, apperr.New(apperr.Conflict, "User has already reviewed this product")
	} else if !errors.Is(err, pg.ErrNotFound) {
		return nil, err
	}

	rv := &goods.Review{ProductID: productID, UserID: userID, Rating: in.Rating, Text: in.Text}
	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.reviews.Create(ctx, rv); err != nil {
			if errors.Is(err, pg.ErrConflict) {
				return apperr.New(apperr.Conflict, "User has already reviewed this product")
			}
			return err
		}
		return u.products.RecalcRating(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("review added", zap.Int64("review_id", rv.ID), zap.Int64("product_id", productID))
	return rv, nil
}

func (u *Usecase) UpdateReview(ctx context.Context, userID, reviewID int64, in ReviewInput) (*goods.Review, error) {
	rv, err := u.getOwnReview(ctx, userID, reviewID, "Can only update own reviews")
	if err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.New(apperr.Conflict, "Rating must be between 1 and 5")
	}

	rv.Rating = in.Rating
	rv.Text = in.Text
	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.reviews.Update(ctx, rv); err != nil {
			return err
		}
		return u.products.RecalcRating(ctx, rv.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (u *Usecase) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	rv, err := u.getOwnReview(ctx, userID, reviewID, "Can only delete own reviews")
	if err != nil {
		return err
	}
	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.reviews.Delete(ctx, rv.ID); err != nil {
			return err
		}
		return u.products.RecalcRating(ctx, rv.ProductID)
	})
}

func (u *Usecase) ListReviews(ctx context.Context, productID int64, offset, limit int32) ([]goods.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := u.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return u.reviews.ListByProduct(ctx, productID, offset, limit)
}

func (u *Usecase) getOwnReview(ctx context.Context, userID, reviewID int64, denied string) (*goods.Review, error) {
	rv, err := u.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Review not found")
		}
		return nil, err
	}
	if rv.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, denied)
	}
	return rv, nil
}

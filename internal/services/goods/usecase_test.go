package goods

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/goods"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

type fakeStore struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]*goods.Product
	reviews    map[int64]*goods.Review
	txCalls    int
	recalcs    []int64
	recalcFrom []int64 // product ids recalculated inside a tx
	inTx       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[int64]*goods.Product{}, reviews: map[int64]*goods.Review{}}
}

type fakeProductRepo struct{ s *fakeStore }

func (r fakeProductRepo) Create(_ context.Context, p *goods.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	p.ID = r.s.nextID
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) GetByID(_ context.Context, id int64) (*goods.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeProductRepo) Update(_ context.Context, p *goods.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r fakeProductRepo) List(_ context.Context, offset, limit int32) ([]goods.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]goods.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r fakeProductRepo) RecalcRating(_ context.Context, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum, n int64
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			sum += int64(rv.Rating)
			n++
		}
	}
	p, ok := r.s.products[productID]
	if !ok {
		return pg.ErrNotFound
	}
	if n == 0 {
		p.Rating = 0
	} else {
		p.Rating = float64(sum) / float64(n)
	}
	p.ReviewsCount = int32(n)
	r.s.recalcs = append(r.s.recalcs, productID)
	if r.s.inTx {
		r.s.recalcFrom = append(r.s.recalcFrom, productID)
	}
	return nil
}

type fakeReviewRepo struct{ s *fakeStore }

func (r fakeReviewRepo) Create(_ context.Context, rv *goods.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.ProductID == rv.ProductID && existing.UserID == rv.UserID {
			return pg.ErrConflict
		}
	}
	r.s.nextID++
	rv.ID = r.s.nextID
	cp := *rv
	r.s.reviews[rv.ID] = &cp
	return nil
}

func (r fakeReviewRepo) GetByID(_ context.Context, id int64) (*goods.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r fakeReviewRepo) GetByProductAndUser(_ context.Context, productID, userID int64) (*goods.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID && rv.UserID == userID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, pg.ErrNotFound
}

func (r fakeReviewRepo) Update(_ context.Context, rv *goods.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID]; !ok {
		return pg.ErrNotFound
	}
	cp := *rv
	r.s.reviews[rv.ID] = &cp
	return nil
}

func (r fakeReviewRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reviews, id)
	return nil
}

func (r fakeReviewRepo) ListByProduct(_ context.Context, productID int64, offset, limit int32) ([]goods.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []goods.Review
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

type fakeTransactor struct{ s *fakeStore }

func (t fakeTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	t.s.txCalls++
	t.s.inTx = true
	t.s.mu.Unlock()
	err := fn(ctx)
	t.s.mu.Lock()
	t.s.inTx = false
	t.s.mu.Unlock()
	return err
}

func newTestUsecase() (*Usecase, *fakeStore) {
	s := newFakeStore()
	uc := NewUsecase(fakeProductRepo{s}, fakeReviewRepo{s}, fakeTransactor{s}, nil)
	return uc, s
}

func seedProduct(t *testing.T, uc *Usecase, ownerID int64) *goods.Product {
	t.Helper()
	p, err := uc.CreateProduct(context.Background(), ownerID, ProductInput{
		Name:  "Lamp",
		Price: 19.99,
	})
	require.NoError(t, err)
	return p
}

func TestProduct_CRUDOwnership(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	p := seedProduct(t, uc, 1)

	got, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Lamp", got.Name)

	_, err = uc.UpdateProduct(ctx, 2, p.ID, ProductInput{Name: "Hijacked", Price: 1})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "You can only edit your own products")

	updated, err := uc.UpdateProduct(ctx, 1, p.ID, ProductInput{Name: "Desk lamp", Price: 24.99})
	require.NoError(t, err)
	require.Equal(t, "Desk lamp", updated.Name)

	err = uc.DeleteProduct(ctx, 2, p.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, uc.DeleteProduct(ctx, 1, p.ID))

	_, err = uc.GetProduct(ctx, p.ID)
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Contains(t, err.Error(), "Product not found")
}

func TestAddReview_UpdatesAggregatesInTx(t *testing.T) {
	uc, s := newTestUsecase()
	ctx := context.Background()

	p := seedProduct(t, uc, 1)

	_, err := uc.AddReview(ctx, p.ID, 2, ReviewInput{Rating: 5, Text: "great"})
	require.NoError(t, err)
	_, err = uc.AddReview(ctx, p.ID, 3, ReviewInput{Rating: 3})
	require.NoError(t, err)

	got, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, got.Rating)
	require.Equal(t, int32(2), got.ReviewsCount)

	// Every recalc ran inside the review transaction.
	require.Equal(t, 2, s.txCalls)
	require.Equal(t, []int64{p.ID, p.ID}, s.recalcFrom)
}

func TestAddReview_RatingBounds(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	p := seedProduct(t, uc, 1)

	for _, rating := range []int32{0, 6, -1} {
		_, err := uc.AddReview(ctx, p.ID, 2, ReviewInput{Rating: rating})
		require.True(t, apperr.Is(err, apperr.Conflict), "rating %d", rating)
		require.Contains(t, err.Error(), "Rating must be between 1 and 5")
	}
}

func TestAddReview_OnePerUser(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	p := seedProduct(t, uc, 1)

	_, err := uc.AddReview(ctx, p.ID, 2, ReviewInput{Rating: 4})
	require.NoError(t, err)

	_, err = uc.AddReview(ctx, p.ID, 2, ReviewInput{Rating: 5})
	require.True(t, apperr.Is(err, apperr.Conflict))
	require.Contains(t, err.Error(), "User has already reviewed this product")
}

func TestReview_OwnershipAndAggregates(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	p := seedProduct(t, uc, 1)

	rv, err := uc.AddReview(ctx, p.ID, 2, ReviewInput{Rating: 5})
	require.NoError(t, err)

	_, err = uc.UpdateReview(ctx, 3, rv.ID, ReviewInput{Rating: 1})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "Can only update own reviews")

	_, err = uc.UpdateReview(ctx, 2, rv.ID, ReviewInput{Rating: 1})
	require.NoError(t, err)

	got, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1.0, got.Rating)

	err = uc.DeleteReview(ctx, 3, rv.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Contains(t, err.Error(), "Can only delete own reviews")

	require.NoError(t, uc.DeleteReview(ctx, 2, rv.ID))

	got, err = uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Rating)
	require.Equal(t, int32(0), got.ReviewsCount)
}

func TestAddReview_UnknownProduct(t *testing.T) {
	uc, _ := newTestUsecase()

	_, err := uc.AddReview(context.Background(), 99, 2, ReviewInput{Rating: 4})
	require.True(t, apperr.Is(err, apperr.NotFound))
}

package goods

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/goods"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
)

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

type productResponse struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	Rating       float64 `json:"rating"`
	ReviewsCount int32   `json:"reviews_count"`
}

type reviewRequest struct {
	Rating int32  `json:"rating"`
	Text   string `json:"text"`
}

type reviewResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	UserID    int64  `json:"user_id"`
	Rating    int32  `json:"rating"`
	Text      string `json:"text"`
}

type Controller struct {
	uc  *Usecase
	log *zap.Logger
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{uc: uc, log: log}
}

func (c *Controller) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", c.handleCreateProduct)
		r.Get("/", c.handleListProducts)
		r.Get("/{id}", c.handleGetProduct)
		r.Put("/{id}", c.handleUpdateProduct)
		r.Delete("/{id}", c.handleDeleteProduct)
	})
	r.Route("/reviews", func(r chi.Router) {
		r.Post("/product/{productID}", c.handleAddReview)
		r.Get("/product/{productID}", c.handleListReviews)
		r.Put("/{id}", c.handleUpdateReview)
		r.Delete("/{id}", c.handleDeleteReview)
	})
}

func (c *Controller) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}

	log := obs.WithTrace(r.Context(), c.log)
	log.Info("create product", zap.Int64("user_id", userID))

	p, err := c.uc.CreateProduct(r.Context(), userID, ProductInput(req))
	if err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProductResponse(p))
}

func (c *Controller) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	p, err := c.uc.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProductResponse(p))
}

func (c *Controller) handleListProducts(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	products, err := c.uc.ListProducts(r.Context(), offset, limit)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

func (c *Controller) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	p, err := c.uc.UpdateProduct(r.Context(), userID, id, ProductInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProductResponse(p))
}

func (c *Controller) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	if err := c.uc.DeleteProduct(r.Context(), userID, id); err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"detail": "Product deleted"})
}

func (c *Controller) handleAddReview(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	rv, err := c.uc.AddReview(r.Context(), productID, userID, ReviewInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toReviewResponse(rv))
}

func (c *Controller) handleListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	offset, limit := pagination(r)
	reviews, err := c.uc.ListReviews(r.Context(), productID, offset, limit)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	out := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

func (c *Controller) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	rv, err := c.uc.UpdateReview(r.Context(), userID, id, ReviewInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toReviewResponse(rv))
}

func (c *Controller) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	if err := c.uc.DeleteReview(r.Context(), userID, id); err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"detail": "Review deleted"})
}

func toProductResponse(p *goods.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
	}
}

func toReviewResponse(rv *goods.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Text:      rv.Text,
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.NotFound, "Invalid id")
	}
	return id, nil
}

func pagination(r *http.Request) (offset, limit int32) {
	q := r.URL.Query()
	if v, err := strconv.ParseInt(q.Get("skip"), 10, 32); err == nil {
		offset = int32(v)
	}
	limit = 10
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	return offset, limit
}

package profiles

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/domain/profile"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
)

type profileRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

type profileResponse struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// profileBriefResponse is the public card: no email.
type profileBriefResponse struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type mediaRequest struct {
	FilePath      string `json:"file_path"`
	FilePathThumb string `json:"file_path_thumb"`
	Description   string `json:"description"`
	IsAvatar      bool   `json:"is_avatar"`
}

type mediaResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	FilePath      string `json:"file_path"`
	FilePathThumb string `json:"file_path_thumb"`
	Description   string `json:"description"`
	IsAvatar      bool   `json:"is_avatar"`
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
	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", c.handleCreateProfile)
		r.Get("/me", c.handleGetOwnProfile)
		r.Get("/{userID}", c.handleGetProfile)
		r.Get("/{userID}/brief", c.handleGetProfileBrief)
		r.Put("/{userID}", c.handleUpdateProfile)
		r.Delete("/{userID}", c.handleDeleteProfile)
	})
	r.Route("/media", func(r chi.Router) {
		r.Post("/", c.handleAddMedia)
		r.Get("/user/{userID}", c.handleListMedia)
		r.Get("/{id}", c.handleGetMedia)
		r.Put("/{id}", c.handleUpdateMedia)
		r.Delete("/{id}", c.handleDeleteMedia)
	})
}

func (c *Controller) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}

	log := obs.WithTrace(r.Context(), c.log)
	log.Info("create profile", zap.Int64("user_id", userID))

	p, err := c.uc.CreateProfile(r.Context(), userID, ProfileInput(req))
	if err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProfileResponse(p))
}

func (c *Controller) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	p, err := c.uc.GetProfile(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProfileResponse(p))
}

func (c *Controller) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	p, err := c.uc.GetProfile(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProfileResponse(p))
}

func (c *Controller) handleGetProfileBrief(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	p, err := c.uc.GetProfile(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, profileBriefResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Description: p.Description,
	})
}

func (c *Controller) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	authUserID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	p, err := c.uc.UpdateProfile(r.Context(), authUserID, userID, ProfileInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toProfileResponse(p))
}

func (c *Controller) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	authUserID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	if err := c.uc.DeleteProfile(r.Context(), authUserID, userID); err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"detail": "Profile deleted"})
}

func (c *Controller) handleAddMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.AuthUserID(r)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	var req mediaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	m, err := c.uc.AddMedia(r.Context(), userID, MediaInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toMediaResponse(m))
}

func (c *Controller) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	m, err := c.uc.GetMedia(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toMediaResponse(m))
}

func (c *Controller) handleListMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	media, err := c.uc.ListMedia(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	out := make([]mediaResponse, 0, len(media))
	for i := range media {
		out = append(out, toMediaResponse(&media[i]))
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

func (c *Controller) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
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
	var req mediaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.BadRequest, "Invalid request body"))
		return
	}
	m, err := c.uc.UpdateMedia(r.Context(), userID, id, MediaInput(req))
	if err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toMediaResponse(m))
}

func (c *Controller) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
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
	if err := c.uc.DeleteMedia(r.Context(), userID, id); err != nil {
		httpx.RespondError(w, r, c.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"detail": "Media deleted"})
}

func toProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Description: p.Description,
		Email:       p.Email,
	}
}

func toMediaResponse(m *profile.Media) mediaResponse {
	return mediaResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		FilePath:      m.FilePath,
		FilePathThumb: m.FilePathThumb,
		Description:   m.Description,
		IsAvatar:      m.IsAvatar,
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.NotFound, "Invalid id")
	}
	return id, nil
}

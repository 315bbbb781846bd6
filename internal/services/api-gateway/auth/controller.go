package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
)

const cookieName = "refresh_token"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CookieOpts struct {
	Domain string
	Secure bool
}

// Controller is the HTTP boundary of the auth flows: request decoding,
// refresh cookie handling, error contract.
type Controller struct {
	uc         *Usecase
	log        *zap.Logger
	cookie     CookieOpts
	refreshTTL time.Duration
}

func NewController(uc *Usecase, log *zap.Logger, cookie CookieOpts) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		uc:         uc,
		log:        log,
		cookie:     cookie,
		refreshTTL: uc.cfg.RefreshTTL,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/register", c.handleRegister)
	r.Post("/login", c.handleLogin)
	r.Post("/refresh", c.handleRefresh)
	r.Post("/logout", c.handleLogout)
}

func (c *Controller) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.InvalidCredentials, "Username and password required"))
		return
	}

	log := obs.WithTrace(r.Context(), c.log)
	log.Info("auth.register", zap.String("username", req.Username))

	access, refresh, err := c.uc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}

	c.setRefreshCookie(w, refresh)
	httpx.RespondJSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		httpx.RespondError(w, r, c.log, apperr.New(apperr.InvalidCredentials, "Username and password required"))
		return
	}

	log := obs.WithTrace(r.Context(), c.log)
	log.Info("auth.login", zap.String("username", req.Username))

	access, refresh, err := c.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}

	c.setRefreshCookie(w, refresh)
	httpx.RespondJSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (c *Controller) handleRefresh(w http.ResponseWriter, r *http.Request) {
	log := obs.WithTrace(r.Context(), c.log)
	log.Info("auth.refresh")

	access, refresh, err := c.uc.Refresh(r.Context(), c.refreshFromRequest(r))
	if err != nil {
		c.clearRefreshCookie(w)
		httpx.RespondError(w, r, log, err)
		return
	}

	c.setRefreshCookie(w, refresh)
	httpx.RespondJSON(w, http.StatusOK, tokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (c *Controller) handleLogout(w http.ResponseWriter, r *http.Request) {
	log := obs.WithTrace(r.Context(), c.log)
	log.Info("auth.logout")

	if err := c.uc.Logout(r.Context(), c.refreshFromRequest(r)); err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}

	c.clearRefreshCookie(w)
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

func (c *Controller) refreshFromRequest(r *http.Request) string {
	ck, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c *Controller) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    raw,
		Path:     "/",
		Domain:   c.cookie.Domain,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.refreshTTL.Seconds()),
		Expires:  time.Now().Add(c.refreshTTL).UTC(),
	})
}

func (c *Controller) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.cookie.Domain,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

package proxy

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domainauth "github.com/NordCoder/Marketus/internal/domain/auth"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
)

// Verifier decodes a bearer token into verified claims.
type Verifier interface {
	VerifyAccess(token string) (*domainauth.AccessClaims, error)
}

type Controller struct {
	fwd      *Forwarder
	verifier Verifier
	log      *zap.Logger
}

func NewController(fwd *Forwarder, verifier Verifier, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{fwd: fwd, verifier: verifier, log: log}
}

func (c *Controller) Routes(r chi.Router) {
	r.HandleFunc("/{service}/*", c.handleProxy)
}

func (c *Controller) handleProxy(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	path := chi.URLParam(r, "*")

	log := obs.WithTrace(r.Context(), c.log)
	log.Debug("proxying request",
		zap.String("service", service),
		zap.String("path", path),
		zap.String("method", r.Method),
	)

	// A presented token must verify; the proxy only goes anonymous when
	// no token was presented at all.
	var ident *domainauth.AccessClaims
	if token := bearerToken(r); token != "" {
		claims, err := c.verifier.VerifyAccess(token)
		if err != nil {
			httpx.RespondError(w, r, log, err)
			return
		}
		ident = claims
	}

	res, err := c.fwd.Forward(r.Context(), service, path, r, ident)
	if err != nil {
		httpx.RespondError(w, r, log, err)
		return
	}

	h := w.Header()
	for k, vv := range res.Header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	if v == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(v), "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	// Any other scheme means no bearer token was presented.
	return ""
}

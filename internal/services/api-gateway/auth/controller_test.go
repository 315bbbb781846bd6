package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Marketus/internal/httpx"
)

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	uc, _, _, _ := newTestUsecase(t)
	ctrl := NewController(uc, nil, CookieOpts{Secure: false})
	r := chi.NewRouter()
	r.Route("/api/auth", ctrl.Routes)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func TestRegister_SetsRefreshCookie(t *testing.T) {
	router := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "bearer", body.TokenType)

	// The refresh token travels only in the cookie, never in the body.
	require.NotContains(t, rec.Body.String(), "refresh")

	c := refreshCookie(t, rec)
	require.True(t, c.HttpOnly)
	require.Equal(t, "/", c.Path)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Positive(t, c.MaxAge)
}

func TestRegister_MissingFields(t *testing.T) {
	router := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/register", `{"username":"alice"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Username and password required", body.Detail)
	require.Equal(t, "/api/auth/register", body.Path)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	router := newAuthRouter(t)

	reg := postJSON(t, router, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	first := refreshCookie(t, reg)

	ref := postJSON(t, router, "/api/auth/refresh", "", first)
	require.Equal(t, http.StatusOK, ref.Code)

	second := refreshCookie(t, ref)
	require.NotEqual(t, first.Value, second.Value)

	// Replaying the consumed cookie fails and clears it.
	replay := postJSON(t, router, "/api/auth/refresh", "", first)
	require.Equal(t, http.StatusUnauthorized, replay.Code)

	cleared := refreshCookie(t, replay)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

func TestRefresh_NoCookie(t *testing.T) {
	router := newAuthRouter(t)

	rec := postJSON(t, router, "/api/auth/refresh", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Refresh token missing", body.Detail)
}

func TestLogout_ClearsCookie(t *testing.T) {
	router := newAuthRouter(t)

	reg := postJSON(t, router, "/api/auth/register", `{"username":"alice","password":"secret123"}`)
	c := refreshCookie(t, reg)

	rec := postJSON(t, router, "/api/auth/logout", "", c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"detail":"Logged out"}`, rec.Body.String())

	cleared := refreshCookie(t, rec)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

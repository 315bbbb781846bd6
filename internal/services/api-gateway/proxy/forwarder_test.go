package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Marketus/internal/apperr"
	domainauth "github.com/NordCoder/Marketus/internal/domain/auth"
	"github.com/NordCoder/Marketus/internal/httpx"
)

func testForwarder(registry Registry) *Forwarder {
	return NewForwarder(NewHTTPClient(2*time.Second), registry, nil)
}

func TestForward_InjectsVerifiedIdentity(t *testing.T) {
	var got http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/goods/products?limit=5", nil)
	req.Header.Set("Authorization", "Bearer something")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Custom-Header", "nope")

	ident := &domainauth.AccessClaims{Sub: 42, Role: "user"}
	res, err := f.Forward(context.Background(), "goods", "products", req, ident)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
	require.JSONEq(t, `{"ok":true}`, string(res.Body))

	require.Equal(t, "42", got.Get(httpx.HeaderUserID))
	require.Equal(t, "user", got.Get(httpx.HeaderUserRole))
	require.Equal(t, "application/json", got.Get("Accept"))

	// The caller's bearer token and unlisted headers stay behind.
	require.Empty(t, got.Get("Authorization"))
	require.Empty(t, got.Get("X-Custom-Header"))
}

func TestForward_AnonymousHasNoIdentityHeaders(t *testing.T) {
	var got http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/goods/products", nil)
	// A client-forged identity header must not leak through.
	req.Header.Set(httpx.HeaderUserID, "999")

	_, err := f.Forward(context.Background(), "goods", "products", req, nil)
	require.NoError(t, err)
	require.Empty(t, got.Get(httpx.HeaderUserID))
	require.Empty(t, got.Get(httpx.HeaderUserRole))
}

func TestForward_UnknownService(t *testing.T) {
	f := testForwarder(Registry{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope/things", nil)
	_, err := f.Forward(context.Background(), "nope", "things", req, nil)
	require.True(t, apperr.Is(err, apperr.ServiceNotFound))
	require.Contains(t, err.Error(), "Service nope not found")
}

func TestForward_UnreachableBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // nothing listens anymore

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/goods/products", nil)
	_, err := f.Forward(context.Background(), "goods", "products", req, nil)
	require.True(t, apperr.Is(err, apperr.ServiceUnavailable))
	require.Contains(t, err.Error(), "Service goods is unavailable")
}

func TestForward_StripsResponseCookies(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "session=evil")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backend.Close()

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodGet, "/api/goods/products", nil)
	res, err := f.Forward(context.Background(), "goods", "products", req, nil)
	require.NoError(t, err)

	// Upstream status passes through untouched, cookies do not.
	require.Equal(t, http.StatusTeapot, res.Status)
	require.Empty(t, res.Header.Get("Set-Cookie"))
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
}

func TestForward_PreservesBodyAndQuery(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, `{"name":"x"}`, string(body))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		require.Equal(t, "/products", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/goods/products?limit=5", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := f.Forward(context.Background(), "goods", "products", req, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)
}

func TestForward_RelaysContentLength(t *testing.T) {
	payload := `{"name":"widget"}`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A chunked relay would show up here as -1 and a Transfer-Encoding.
		require.Equal(t, int64(len(payload)), r.ContentLength)
		require.Empty(t, r.TransferEncoding)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := testForwarder(Registry{"goods": backend.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/goods/products", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, err := f.Forward(context.Background(), "goods", "products", req, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
}

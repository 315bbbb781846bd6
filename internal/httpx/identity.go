package httpx

import (
	"net/http"
	"strconv"

	"github.com/NordCoder/Marketus/internal/apperr"
)

// Identity propagation headers. The gateway sets them after verifying an
// access token; downstream services trust them without re-verification.
const (
	HeaderUserID   = "X-Auth-User-ID"
	HeaderUserRole = "X-Auth-User-Role"
)

// AuthUserID extracts the verified caller id injected by the gateway.
func AuthUserID(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		return 0, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.Unauthorized, "Invalid user ID format")
	}
	return id, nil
}

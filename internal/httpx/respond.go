package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/NordCoder/Marketus/internal/apperr"
)

// ErrorBody is the failure contract shared by every service.
type ErrorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
	Path   string `json:"path"`
}

func DecodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.BadRequest:
		return http.StatusBadRequest
	case apperr.InvalidCredentials, apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound, apperr.ServiceNotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.ServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the tagged error contract. Untagged errors are
// treated as persistence failures: logged in full, returned generic.
func RespondError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		status := statusFor(e.Kind)
		if log != nil {
			log.Warn("request failed",
				zap.Int("status", status),
				zap.String("kind", string(e.Kind)),
				zap.String("detail", e.Detail),
				zap.String("path", r.URL.Path),
			)
		}
		RespondJSON(w, status, ErrorBody{Detail: e.Detail, Error: string(e.Kind), Path: r.URL.Path})
		return
	}

	if log != nil {
		log.Error("database error", zap.Error(err), zap.String("path", r.URL.Path))
	}
	RespondJSON(w, http.StatusInternalServerError, ErrorBody{
		Detail: "Internal database error",
		Error:  "Database error",
		Path:   r.URL.Path,
	})
}

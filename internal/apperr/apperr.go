// Package apperr carries the error taxonomy shared by the gateway and the
// downstream services. Flow code raises a tagged error at the point of
// detection; the HTTP boundary maps the tag to a status exactly once.
package apperr

import "errors"

type Kind string

const (
	BadRequest         Kind = "BadRequestError"
	InvalidCredentials Kind = "InvalidCredentials"
	Unauthorized       Kind = "UnauthorizedError"
	Forbidden          Kind = "ForbiddenError"
	NotFound           Kind = "NotFoundError"
	Conflict           Kind = "ConflictError"
	ServiceNotFound    Kind = "ServiceNotFoundError"
	ServiceUnavailable Kind = "ServiceUnavailableError"
)

type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Detail }

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// KindOf returns the tag of err, or ok=false for untagged errors
// (persistence failures and other unexpected conditions).
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

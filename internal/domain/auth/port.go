package auth

import (
	"context"
	"time"
)

type SessionRepo interface {
	// Store persists a new session. A token collision surfaces as a
	// conflict error, it is never silently ignored.
	Store(ctx context.Context, userID int64, token string, ttl time.Duration) (*RefreshSession, error)

	// Lookup returns the session only while expires_at is strictly in the
	// future; expired-but-undeleted rows are never surfaced.
	Lookup(ctx context.Context, token string) (*RefreshSession, error)

	// Revoke deletes one session by token. Deleting an absent token is
	// not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAll deletes every session owned by the user.
	RevokeAll(ctx context.Context, userID int64) error

	// Rotate atomically consumes oldToken and stores newToken for the
	// same user. Exactly one of two concurrent rotations against the
	// same token succeeds; the loser gets a not-found error.
	Rotate(ctx context.Context, oldToken, newToken string, ttl time.Duration) (*RefreshSession, error)
}

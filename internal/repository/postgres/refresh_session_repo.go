package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Marketus/internal/domain/auth"
)

var _ auth.SessionRepo = (*RefreshSessionRepo)(nil)

type RefreshSessionRepo struct{ db *DB }

func NewRefreshSessionRepo(db *DB) *RefreshSessionRepo { return &RefreshSessionRepo{db: db} }

const (
	qSessInsert = `
INSERT INTO refresh_sessions (user_id, token, expires_at)
VALUES ($1, $2, $3)
RETURNING id;`

	qSessLookup = `
SELECT id, user_id, token, expires_at
FROM refresh_sessions
WHERE token = $1 AND expires_at > NOW()
LIMIT 1;`

	qSessDelete = `
DELETE FROM refresh_sessions WHERE token = $1;`

	qSessDeleteByUser = `
DELETE FROM refresh_sessions WHERE user_id = $1;`

	// Conditional consume: only a still-valid token can be spent.
	qSessConsume = `
DELETE FROM refresh_sessions
WHERE token = $1 AND expires_at > NOW()
RETURNING user_id;`
)

func (r *RefreshSessionRepo) Store(ctx context.Context, userID int64, token string, ttl time.Duration) (*auth.RefreshSession, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	s := &auth.RefreshSession{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qSessInsert, s.UserID, s.Token, s.ExpiresAt).
		Scan(&s.ID); err != nil {
		if uniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("session insert: %w", err)
	}
	return s, nil
}

func (r *RefreshSessionRepo) Lookup(ctx context.Context, token string) (*auth.RefreshSession, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s auth.RefreshSession
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qSessLookup, token).
		Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	return &s, nil
}

func (r *RefreshSessionRepo) Revoke(ctx context.Context, token string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	// Idempotent: zero rows affected is fine.
	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSessDelete, token); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

func (r *RefreshSessionRepo) RevokeAll(ctx context.Context, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSessDeleteByUser, userID); err != nil {
		return fmt.Errorf("session revoke all: %w", err)
	}
	return nil
}

// Rotate spends oldToken and stores newToken in one transaction. The
// conditional DELETE serialises concurrent rotations on the same token:
// the second one finds no row to consume and gets ErrNotFound, so a
// refresh token is usable at most once.
func (r *RefreshSessionRepo) Rotate(ctx context.Context, oldToken, newToken string, ttl time.Duration) (*auth.RefreshSession, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("rotate begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID int64
	if err := tx.QueryRow(ctx, qSessConsume, oldToken).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rotate consume: %w", err)
	}

	s := &auth.RefreshSession{
		UserID:    userID,
		Token:     newToken,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := tx.QueryRow(ctx, qSessInsert, s.UserID, s.Token, s.ExpiresAt).Scan(&s.ID); err != nil {
		if uniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("rotate insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("rotate commit: %w", err)
	}
	return s, nil
}

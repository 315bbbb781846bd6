package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Marketus/internal/domain/profile"
)

var _ profile.Repo = (*ProfileRepo)(nil)

type ProfileRepo struct{ db *DB }

func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

const (
	qProfileInsert = `
INSERT INTO profiles (user_id, username, display_name, description, email)
VALUES ($1, $2, $3, $4, $5);`

	qProfileByID = `
SELECT user_id, username, display_name, description, email
FROM profiles
WHERE user_id = $1;`

	qProfileUpdate = `
UPDATE profiles
SET username = $2, display_name = $3, description = $4, email = $5
WHERE user_id = $1;`

	qProfileDelete = `
DELETE FROM profiles WHERE user_id = $1;`
)

func (r *ProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qProfileInsert,
		p.UserID, p.Username, p.DisplayName, p.Description, p.Email); err != nil {
		if uniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("profile insert: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, userID int64) (*profile.Profile, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p profile.Profile
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qProfileByID, userID).
		Scan(&p.UserID, &p.Username, &p.DisplayName, &p.Description, &p.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qProfileUpdate,
		p.UserID, p.Username, p.DisplayName, p.Description, p.Email)
	if err != nil {
		if uniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("profile update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete relies on the ON DELETE CASCADE from media.user_id.
func (r *ProfileRepo) Delete(ctx context.Context, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qProfileDelete, userID)
	if err != nil {
		return fmt.Errorf("profile delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/Marketus/internal/domain/profile"
)

var _ profile.MediaRepo = (*MediaRepo)(nil)

type MediaRepo struct{ db *DB }

func NewMediaRepo(db *DB) *MediaRepo { return &MediaRepo{db: db} }

const (
	qMediaInsert = `
INSERT INTO media (user_id, file_path, file_path_thumb, description, is_avatar)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`

	qMediaByID = `
SELECT id, user_id, file_path, file_path_thumb, description, is_avatar
FROM media
WHERE id = $1;`

	qMediaUpdate = `
UPDATE media
SET file_path = $2, file_path_thumb = $3, description = $4, is_avatar = $5
WHERE id = $1;`

	qMediaDelete = `
DELETE FROM media WHERE id = $1;`

	qMediaByUser = `
SELECT id, user_id, file_path, file_path_thumb, description, is_avatar
FROM media
WHERE user_id = $1
ORDER BY id;`
)

func (r *MediaRepo) Create(ctx context.Context, m *profile.Media) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.execQueryer(ctx).QueryRow(ctx, qMediaInsert,
		m.UserID, m.FilePath, m.FilePathThumb, m.Description, m.IsAvatar).
		Scan(&m.ID); err != nil {
		if uniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("media insert: %w", err)
	}
	return nil
}

func (r *MediaRepo) GetByID(ctx context.Context, id int64) (*profile.Media, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var m profile.Media
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qMediaByID, id).
		Scan(&m.ID, &m.UserID, &m.FilePath, &m.FilePathThumb, &m.Description, &m.IsAvatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("media get: %w", err)
	}
	return &m, nil
}

func (r *MediaRepo) Update(ctx context.Context, m *profile.Media) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qMediaUpdate,
		m.ID, m.FilePath, m.FilePathThumb, m.Description, m.IsAvatar)
	if err != nil {
		if uniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("media update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MediaRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qMediaDelete, id)
	if err != nil {
		return fmt.Errorf("media delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MediaRepo) ListByUser(ctx context.Context, userID int64) ([]profile.Media, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qMediaByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("media list: %w", err)
	}
	defer rows.Close()

	var out []profile.Media
	for rows.Next() {
		var m profile.Media
		if err := rows.Scan(&m.ID, &m.UserID, &m.FilePath, &m.FilePathThumb, &m.Description, &m.IsAvatar); err != nil {
			return nil, fmt.Errorf("media list scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package creations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, prompt, content, type, publish, likes, created_at, updated_at`

// Create inserts a new creation.
func (r *PGRepo) Create(ctx context.Context, c Creation) error {
	const query = `
INSERT INTO creations (
    id,
    user_id,
    prompt,
    content,
    type,
    publish,
    likes,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	_, err := r.DB.ExecContext(
		ctx,
		query,
		c.ID,
		c.UserID,
		c.Prompt,
		c.Content,
		string(c.Type),
		c.Publish,
		likes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// ListByUser lists a user's creations newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Creation, error) {
	query := `SELECT ` + selectColumns + `
FROM creations
WHERE user_id = $1
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListPublished lists every published creation newest-first.
func (r *PGRepo) ListPublished(ctx context.Context) ([]Creation, error) {
	query := `SELECT ` + selectColumns + `
FROM creations
WHERE publish = true
ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ToggleLike flips membership atomically in one UPDATE.
func (r *PGRepo) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	const query = `
UPDATE creations
SET likes = CASE
        WHEN $2::text = ANY(likes) THEN array_remove(likes, $2::text)
        ELSE array_append(likes, $2::text)
    END,
    updated_at = now()
WHERE id = $1
RETURNING $2::text = ANY(likes)`

	var liked bool
	if err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(&liked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return liked, nil
}

// SetPublish updates the flag only when ownerID owns the row. When nothing
// matched it distinguishes a missing row from a foreign one.
func (r *PGRepo) SetPublish(ctx context.Context, id, ownerID string, publish *bool) (bool, error) {
	const query = `
UPDATE creations
SET publish = COALESCE($3::boolean, NOT publish),
    updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING publish`

	var value sql.NullBool
	if publish != nil {
		value = sql.NullBool{Bool: *publish, Valid: true}
	}

	var stored bool
	err := r.DB.QueryRowContext(ctx, query, id, ownerID, value).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	var owner string
	err = r.DB.QueryRowContext(ctx, `SELECT user_id FROM creations WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return false, ErrForbidden
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Creation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Creation{}
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreation(row rowScanner) (Creation, error) {
	var c Creation
	var kind string
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Prompt,
		&c.Content,
		&kind,
		&c.Publish,
		&c.Likes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Creation{}, err
	}
	c.Type = Type(kind)
	if c.Likes == nil {
		c.Likes = []string{}
	}
	return c, nil
}

var _ Repo = (*PGRepo)(nil)

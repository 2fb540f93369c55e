package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyweaver/backend/internal/models"
)

// Repository handles users and magic links.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertUser returns the user with email, creating it on first sign-in. email must already be lower-cased.
func (r *Repository) UpsertUser(ctx context.Context, email string) (*models.User, error) {
	const q = `INSERT INTO users (email) VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at`
	var u models.User
	if err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by ID, or nil if none.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `SELECT id, email, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateMagicLink stores a new sign-in link.
func (r *Repository) CreateMagicLink(ctx context.Context, link *models.MagicLink) error {
	const q = `INSERT INTO magic_links (token, user_id, email, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, link.Token, link.UserID, link.Email, link.CreatedAt, link.ExpiresAt)
	return err
}

// GetMagicLink returns a link by token, or nil if none.
func (r *Repository) GetMagicLink(ctx context.Context, token string) (*models.MagicLink, error) {
	const q = `SELECT token, user_id, email, created_at, expires_at, used_at FROM magic_links WHERE token = $1`
	var l models.MagicLink
	err := r.pool.QueryRow(ctx, q, token).Scan(&l.Token, &l.UserID, &l.Email, &l.CreatedAt, &l.ExpiresAt, &l.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// MarkMagicLinkUsed sets used_at if the link is still unused. It reports false when another request got there first.
func (r *Repository) MarkMagicLinkUsed(ctx context.Context, token string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE magic_links SET used_at = $2 WHERE token = $1 AND used_at IS NULL`, token, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

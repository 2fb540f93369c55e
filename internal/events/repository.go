package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyweaver/backend/internal/models"
)

const eventColumns = `id, title, description, location, start_time, host_user_id, cohost_user_ids, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.HostUserID, &e.CohostUserIDs, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if e.CohostUserIDs == nil {
		e.CohostUserIDs = []uuid.UUID{}
	}
	return &e, nil
}

// Create inserts an event with no co-hosts and fills its generated fields.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, location, start_time, host_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + eventColumns
	created, err := scanEvent(r.pool.QueryRow(ctx, q, e.Title, e.Description, e.Location, e.StartTime, e.HostUserID))
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID returns an event by ID, or nil if none.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListForUser returns events the user hosts or co-hosts, soonest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE host_user_id = $1 OR $1 = ANY(cohost_user_ids)
		ORDER BY start_time ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update writes the editable fields. The host is never changed here.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $2, description = $3, location = $4, start_time = $5, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.Location, e.StartTime).Scan(&e.UpdatedAt)
}

// Delete removes an event. Its invites and delivery logs go with it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// RemoveCohost drops userID from the co-host list and returns the updated event.
func (r *Repository) RemoveCohost(ctx context.Context, eventID, userID uuid.UUID) (*models.Event, error) {
	const q = `UPDATE events SET cohost_user_ids = array_remove(cohost_user_ids, $2), updated_at = NOW()
		WHERE id = $1 RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, eventID, userID))
}

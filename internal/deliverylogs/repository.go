package deliverylogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyweaver/backend/internal/models"
)

// Repository handles delivery_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a delivery logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one log row and fills its generated fields.
func (r *Repository) Create(ctx context.Context, l *models.DeliveryLog) error {
	const q = `INSERT INTO delivery_logs (event_id, invite_id, channel, recipient, status, error_message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, l.EventID, l.InviteID, l.Channel, l.Recipient, l.Status, l.ErrorMessage).
		Scan(&l.ID, &l.CreatedAt)
}

// ListByEvent returns delivery logs for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.DeliveryLog, error) {
	const q = `SELECT id, event_id, invite_id, channel, recipient, status, error_message, created_at
		FROM delivery_logs
		WHERE event_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.DeliveryLog{}
	for rows.Next() {
		var l models.DeliveryLog
		var errMsg *string
		if err := rows.Scan(&l.ID, &l.EventID, &l.InviteID, &l.Channel, &l.Recipient, &l.Status, &errMsg, &l.CreatedAt); err != nil {
			return nil, err
		}
		if errMsg != nil {
			l.ErrorMessage = *errMsg
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

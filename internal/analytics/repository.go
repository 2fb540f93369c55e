package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyweaver/backend/internal/models"
)

// Repository runs aggregate queries over invites and delivery logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountRSVPs returns the number of invites per status for an event. Statuses with no invites are absent.
func (r *Repository) CountRSVPs(ctx context.Context, eventID uuid.UUID) (map[models.RSVPStatus]int, error) {
	const q = `SELECT rsvp_status, COUNT(*) FROM event_invites WHERE event_id = $1 GROUP BY rsvp_status`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.RSVPStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.RSVPStatus(status)] = n
	}
	return counts, rows.Err()
}

// CountDeliveries returns sent and failed delivery attempts for an event.
func (r *Repository) CountDeliveries(ctx context.Context, eventID uuid.UUID) (sent, failed int, err error) {
	const q = `SELECT
		COUNT(*) FILTER (WHERE status = 'sent'),
		COUNT(*) FILTER (WHERE status = 'failed')
		FROM delivery_logs WHERE event_id = $1`
	err = r.pool.QueryRow(ctx, q, eventID).Scan(&sent, &failed)
	return sent, failed, err
}

package invites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyweaver/backend/internal/models"
)

const inviteColumns = `id, event_id, guest_name, email, phone_number, invite_token, rsvp_status, responded_at, created_at`

// Repository handles event_invites persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invite repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInvite(row pgx.Row) (*models.Invite, error) {
	var inv models.Invite
	err := row.Scan(&inv.ID, &inv.EventID, &inv.GuestName, &inv.Email, &inv.PhoneNumber,
		&inv.InviteToken, &inv.RSVPStatus, &inv.RespondedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a pending invite. The token is generated by the column default.
func (r *Repository) Create(ctx context.Context, inv *models.Invite) error {
	const q = `INSERT INTO event_invites (event_id, guest_name, email, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inviteColumns
	created, err := scanInvite(r.pool.QueryRow(ctx, q, inv.EventID, inv.GuestName, inv.Email, inv.PhoneNumber))
	if err != nil {
		return err
	}
	*inv = *created
	return nil
}

// GetByID returns an invite by ID, or nil if none.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	inv, err := scanInvite(r.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM event_invites WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}

// ListByEvent returns an event's invites, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Invite, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+inviteColumns+` FROM event_invites
		WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// GetByToken returns the invite with its event, or nil if the token is unknown.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.InviteWithEvent, error) {
	const q = `SELECT i.id, i.event_id, i.guest_name, i.email, i.phone_number, i.invite_token, i.rsvp_status, i.responded_at, i.created_at,
		e.title, e.description, e.location, e.start_time
		FROM event_invites i
		JOIN events e ON e.id = i.event_id
		WHERE i.invite_token = $1`
	var iw models.InviteWithEvent
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&iw.ID, &iw.EventID, &iw.GuestName, &iw.Email, &iw.PhoneNumber, &iw.InviteToken, &iw.RSVPStatus, &iw.RespondedAt, &iw.CreatedAt,
		&iw.Event.Title, &iw.Event.Description, &iw.Event.Location, &iw.Event.StartTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &iw, nil
}

// UpdateRSVP records a guest response. Returns nil if the token is unknown.
func (r *Repository) UpdateRSVP(ctx context.Context, token string, status models.RSVPStatus, at time.Time) (*models.Invite, error) {
	const q = `UPDATE event_invites SET rsvp_status = $2, responded_at = $3
		WHERE invite_token = $1
		RETURNING ` + inviteColumns
	inv, err := scanInvite(r.pool.QueryRow(ctx, q, token, string(status), at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}

package invites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/testdb"
)

func seedEvent(t *testing.T, ctx context.Context, r *Repository) uuid.UUID {
	t.Helper()
	var userID, eventID uuid.UUID
	require.NoError(t, r.pool.QueryRow(ctx, `INSERT INTO users (email) VALUES ('host@example.com') RETURNING id`).Scan(&userID))
	require.NoError(t, r.pool.QueryRow(ctx,
		`INSERT INTO events (title, location, start_time, host_user_id) VALUES ('Launch Party', 'Rooftop', $1, $2) RETURNING id`,
		time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), userID).Scan(&eventID))
	return eventID
}

func TestRepositoryInviteRSVP(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()
	eventID := seedEvent(t, ctx, repo)

	email := "jane@example.com"
	inv := &models.Invite{EventID: eventID, GuestName: "Jane", Email: &email}
	require.NoError(t, repo.Create(ctx, inv))
	assert.Equal(t, models.RSVPPending, inv.RSVPStatus)
	assert.Len(t, inv.InviteToken, 32)
	assert.Nil(t, inv.RespondedAt)

	got, err := repo.GetByToken(ctx, inv.InviteToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Launch Party", got.Event.Title)
	assert.Equal(t, "Rooftop", *got.Event.Location)

	now := time.Now().UTC()
	updated, err := repo.UpdateRSVP(ctx, inv.InviteToken, models.RSVPAttending, now)
	require.NoError(t, err)
	require.NotNil(t, updated)

	got, err = repo.GetByToken(ctx, inv.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, models.RSVPAttending, got.RSVPStatus)
	assert.NotNil(t, got.RespondedAt)

	missing, err := repo.GetByToken(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
	missingUpdate, err := repo.UpdateRSVP(ctx, "nope", models.RSVPMaybe, now)
	require.NoError(t, err)
	assert.Nil(t, missingUpdate)
}

func TestRepositoryRejectsInviteWithoutContact(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()
	eventID := seedEvent(t, ctx, repo)

	err := repo.Create(ctx, &models.Invite{EventID: eventID, GuestName: "Nobody"})
	assert.Error(t, err)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()
	eventID := seedEvent(t, ctx, repo)

	phone := "+15551234567"
	first := &models.Invite{EventID: eventID, GuestName: "First", PhoneNumber: &phone}
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &models.Invite{EventID: eventID, GuestName: "Second", PhoneNumber: &phone}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].GuestName)
	assert.NotEqual(t, first.InviteToken, second.InviteToken)
}

package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/notify"
)

var (
	launchPartyID = uuid.MustParse("6b1d3c52-5a0e-4b8a-9d61-0e7a2f7f0001")
	hostID        = uuid.MustParse("6b1d3c52-5a0e-4b8a-9d61-0e7a2f7f00a1")
	cohostID      = uuid.MustParse("6b1d3c52-5a0e-4b8a-9d61-0e7a2f7f00a2")
)

type fakeEvents map[uuid.UUID]*models.Event

func (f fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	return f[id], nil
}

type failingEvents struct{}

func (failingEvents) GetByID(context.Context, uuid.UUID) (*models.Event, error) {
	return nil, errors.New("connection refused")
}

// tokenIsUserID treats a bearer token as the caller's user id.
type tokenIsUserID struct{}

func (tokenIsUserID) UserFromToken(token string) (uuid.UUID, string, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, "", errors.New("bad token")
	}
	return id, "", nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Email
	err  error
}

func (m *fakeMailer) SendEmail(_ context.Context, msg notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []notify.SMS
	err  error
}

func (s *fakeSMS) SendSMS(_ context.Context, msg notify.SMS) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func launchParty() fakeEvents {
	return fakeEvents{
		launchPartyID: {
			ID:        launchPartyID,
			Title:         "Launch Party",
			StartTime:     time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
			HostUserID:    hostID,
			CohostUserIDs: []uuid.UUID{cohostID},
		},
	}
}

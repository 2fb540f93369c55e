package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/deliverylogs"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/queue"
)

const (
	// ErrorBackoff is the pause after a failed dequeue.
	ErrorBackoff = 2 * time.Second
	// JobTimeout bounds one job, including after shutdown has begun.
	JobTimeout = 30 * time.Second
	// DeadLetterTimeout bounds the dead-letter write.
	DeadLetterTimeout = 5 * time.Second
)

// JobSource is the queue the worker drains.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
}

// InviteFinder loads invites. A missing invite is (nil, nil).
type InviteFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
}

// InvitationProcessor processes invitation resend jobs: load invite, dispatch once, record delivery logs.
type InvitationProcessor struct {
	invites    InviteFinder
	dispatcher dispatch.Dispatcher
	logs       deliverylogs.Writer
	jobs       JobSource
	logger     *zap.Logger
	backoff    time.Duration
}

// NewInvitationProcessor creates an invitation resend processor.
func NewInvitationProcessor(invites InviteFinder, dispatcher dispatch.Dispatcher, logs deliverylogs.Writer, jobs JobSource, logger *zap.Logger) *InvitationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvitationProcessor{
		invites:    invites,
		dispatcher: dispatcher,
		logs:       logs,
		jobs:       jobs,
		logger:     logger,
		backoff:    ErrorBackoff,
	}
}

// Process executes one resend job.
func (p *InvitationProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := job.InvitationResend()
	if err != nil {
		return err
	}

	inv, err := p.invites.GetByID(ctx, payload.InviteID)
	if err != nil {
		return fmt.Errorf("load invite: %w", err)
	}
	if inv == nil || inv.EventID != payload.EventID {
		return fmt.Errorf("invite not found: %s", payload.InviteID)
	}

	res, err := p.dispatcher.Dispatch(ctx, dispatch.Request{
		EventID:     inv.EventID,
		GuestName:   inv.GuestName,
		Email:       deref(inv.Email),
		PhoneNumber: deref(inv.PhoneNumber),
		InviteToken: inv.InviteToken,
	})
	deliverylogs.Record(ctx, p.logs, p.logger, inv.EventID, inv.ID, res)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	p.logger.Info("invitation resent",
		zap.String("invite_id", inv.ID.String()),
		zap.String("requested_by", payload.RequestedBy.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, dead-letter on error. Jobs are never retried.
// Cancelling ctx stops dequeuing; a job already dequeued runs to completion and Run returns after it.
func (p *InvitationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("invitation worker stopping")
			return
		default:
		}

		job, _, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		p.handle(context.WithoutCancel(ctx), job)
	}
}

// handle runs one dequeued job. ctx must not be tied to shutdown, or a popped job would be lost.
func (p *InvitationProcessor) handle(ctx context.Context, job *queue.Job) {
	jobCtx, cancel := context.WithTimeout(ctx, JobTimeout)
	err := p.Process(jobCtx, job)
	cancel()
	if err == nil {
		return
	}
	p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))

	dlqCtx, cancel := context.WithTimeout(ctx, DeadLetterTimeout)
	defer cancel()
	if dlqErr := p.jobs.DeadLetter(dlqCtx, job, err); dlqErr != nil {
		p.logger.Error("dead-letter failed", zap.String("job_id", job.ID), zap.Error(dlqErr))
	}
}

func (p *InvitationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

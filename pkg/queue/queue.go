package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueInvitations is the Redis list key for manual invitation resend jobs.
	QueueInvitations = "worker:invitations"
	// QueueDLQ is the dead-letter list for jobs that failed. Jobs are never retried automatically.
	QueueDLQ = "worker:dlq"
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeInvitationResend JobType = "invitation_resend"
)

// InvitationResendPayload is the payload for invitation resend jobs.
type InvitationResendPayload struct {
	InviteID    uuid.UUID `json:"invite_id"`
	EventID     uuid.UUID `json:"event_id"`
	RequestedBy uuid.UUID `json:"requested_by"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	FailedAt  *time.Time      `json:"failed_at,omitempty"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
	key    string
	dlq    string
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger, key: QueueInvitations, dlq: QueueDLQ}
}

// NewJob wraps payload in a job envelope.
func NewJob(jobType JobType, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EnqueueInvitationResend enqueues a resend job for one invite and returns the job id.
func (q *Queue) EnqueueInvitationResend(ctx context.Context, payload InvitationResendPayload) (string, error) {
	job, err := NewJob(JobTypeInvitationResend, payload)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return "", fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued invitation resend job", zap.String("job_id", job.ID), zap.String("invite_id", payload.InviteID.String()))
	return job.ID, nil
}

// Dequeue blocks until a job is available or ctx is done. Returns job and key (queue name).
// A nil job with nil error means nothing usable was popped. Undecodable entries are moved
// to the DLQ as-is.
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, 0, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	job, err := DecodeJob([]byte(result[1]))
	if err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		if dlqErr := q.client.RPush(context.WithoutCancel(ctx), q.dlq, result[1]).Err(); dlqErr != nil {
			q.logger.Error("dlq push failed", zap.Error(dlqErr))
			return nil, "", fmt.Errorf("dead-letter invalid payload: %w", dlqErr)
		}
		return nil, "", nil
	}
	return job, result[0], nil
}

// DecodeJob parses a raw job envelope.
func DecodeJob(raw []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	if job.ID == "" || job.Type == "" {
		return nil, fmt.Errorf("job missing id or type")
	}
	return &job, nil
}

// InvitationResend decodes the job payload.
func (j *Job) InvitationResend() (InvitationResendPayload, error) {
	var p InvitationResendPayload
	if j.Type != JobTypeInvitationResend {
		return p, fmt.Errorf("job %s has type %q", j.ID, j.Type)
	}
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

// DeadLetter pushes a failed job to the DLQ with its failure reason.
func (q *Queue) DeadLetter(ctx context.Context, job *Job, cause error) error {
	now := time.Now().UTC()
	job.FailedAt = &now
	if cause != nil {
		job.Error = cause.Error()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.RPush(ctx, q.dlq, raw).Err(); err != nil {
		q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
		return err
	}
	q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.String("error", job.Error))
	return nil
}

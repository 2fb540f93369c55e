package queue

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envRedisAddr names the variable holding the integration Redis address.
const envRedisAddr = "PARTYWEAVER_TEST_REDIS_ADDR"

// openTestQueue returns a queue on keys unique to the test. Skipped when Redis is unreachable.
func openTestQueue(t *testing.T) *Queue {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv(envRedisAddr))
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 2 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skip integration test: Redis unavailable at %q: %v", addr, err)
	}

	q := NewQueue(client, nil)
	prefix := "itest:" + uuid.NewString() + ":"
	q.key = prefix + QueueInvitations
	q.dlq = prefix + QueueDLQ
	t.Cleanup(func() {
		_ = client.Del(context.Background(), q.key, q.dlq).Err()
		_ = client.Close()
	})
	return q
}

func TestDequeueMovesMalformedPayloadToDLQ(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()
	require.NoError(t, q.client.RPush(ctx, q.key, "not json").Err())

	job, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.Empty(t, key)

	dead, err := q.client.LRange(ctx, q.dlq, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"not json"}, dead)
}

func TestEnqueueDequeueAndDeadLetter(t *testing.T) {
	q := openTestQueue(t)
	ctx := context.Background()
	payload := InvitationResendPayload{InviteID: uuid.New(), EventID: uuid.New(), RequestedBy: uuid.New()}

	id, err := q.EnqueueInvitationResend(ctx, payload)
	require.NoError(t, err)

	job, key, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, q.key, key)
	assert.Equal(t, id, job.ID)

	require.NoError(t, q.DeadLetter(ctx, job, assert.AnError))
	dead, err := q.client.LRange(ctx, q.dlq, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, dead, 1)
	failed, err := DecodeJob([]byte(dead[0]))
	require.NoError(t, err)
	assert.Equal(t, id, failed.ID)
	assert.Equal(t, assert.AnError.Error(), failed.Error)
	assert.NotNil(t, failed.FailedAt)
}

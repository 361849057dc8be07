package jobqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueJobRoundTrip(t *testing.T) {
	host, port, password := resolveTestRedis(t)
	configureTestCache(host, port, password)
	resetJobQueueRedis(t)
	t.Cleanup(func() { resetJobQueueRedis(t) })

	queue := NewQueue(1)
	ctx := context.Background()

	payload := PlanSyncJobPayload{PlanID: 42}
	job, err := queue.EnqueueJob(JobTypePlanSync, payload.ToMap())
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	assert.Equal(t, JobTypePlanSync, job.Type)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)

	stored, err := queue.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)
	assert.Equal(t, JobTypePlanSync, stored.Type)

	restored, err := PlanSyncJobPayloadFromMap(stored.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint(42), restored.PlanID)

	size, err := queue.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	stats, err := queue.GetJobStats(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats[JobStatusPending], int64(1))
}

package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemQueueEnqueueDequeue(t *testing.T) {
	q := NewMemQueue(2)
	q.Enqueue(&Job{RunUUID: "run-1"})

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "run-1", job.RunUUID)
}

func TestMemQueueDequeueTimesOutWhenEmpty(t *testing.T) {
	q := NewMemQueue(1)
	job, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestMemQueueEnqueueDropsWhenFull(t *testing.T) {
	q := NewMemQueue(1)
	q.Enqueue(&Job{RunUUID: "first"})
	q.Enqueue(&Job{RunUUID: "second"}) // buffer is full, dropped silently

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "first", job.RunUUID)
}

func TestMemQueueDequeueRespectsContextCancellation(t *testing.T) {
	q := NewMemQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx, time.Second)
	assert.Error(t, err)
}

package orchestrator

import (
	"context"
	"time"
)

// MemQueue is a channel-backed Queue: a scheduler goroutine feeds in a
// Job for every run its source query returns on each tick; worker
// goroutines drain it. This keeps the Pool's shape identical to
// worker/pool.go's while sourcing work from Postgres instead of an
// external broker.
type MemQueue struct {
	jobs chan *Job
}

func NewMemQueue(buffer int) *MemQueue {
	return &MemQueue{jobs: make(chan *Job, buffer)}
}

// Enqueue is called by the scheduler loop, never by a worker.
func (q *MemQueue) Enqueue(job *Job) {
	select {
	case q.jobs <- job:
	default:
		// queue full: the next scheduler tick will retry this run.
	}
}

func (q *MemQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete and Fail are no-ops for MemQueue: the Orchestrator's
// TransitionTo calls already persisted the run's new stage to Postgres
// before Process returned, so there is nothing left to acknowledge.
func (q *MemQueue) Complete(ctx context.Context, job *Job) error        { return nil }
func (q *MemQueue) Fail(ctx context.Context, job *Job, err error) error { return nil }

// Scheduler periodically scans for runs ready to advance (via the
// caller-supplied runUUIDs query, which may source from either
// pipeline_runs or concept_runs) and feeds them to a MemQueue. Every
// uuid the query returns is enqueued on every tick; the scheduler does
// no filtering of its own, so a WAIT_* run is re-dispatched (and polls
// the curation store) once per tick.
type Scheduler struct {
	queue *MemQueue
	tick  time.Duration
}

func NewScheduler(queue *MemQueue, tick time.Duration) *Scheduler {
	return &Scheduler{queue: queue, tick: tick}
}

func (s *Scheduler) Run(ctx context.Context, runUUIDs func(ctx context.Context) ([]string, error)) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := runUUIDs(ctx)
			if err != nil {
				continue
			}
			for _, id := range ids {
				s.queue.Enqueue(&Job{RunUUID: id})
			}
		}
	}
}

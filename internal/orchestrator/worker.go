package orchestrator

import (
	"context"
	"log"
	"time"
)

// Job is one unit of dispatchable work: advance a single run by one
// stage. Grounded on worker/pool.go's Queue/JobProcessor split, with
// "job" narrowed from an arbitrary payload to a run uuid since every
// job this pool runs is "drive this pipeline run forward".
type Job struct {
	RunUUID string
}

// Queue is satisfied by anything that can hand out pending runs and
// acknowledge completion — the teacher's worker/pool.go Queue
// interface, renamed to this domain.
type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	Complete(ctx context.Context, job *Job) error
	Fail(ctx context.Context, job *Job, err error) error
}

// Processor runs a single Job to completion (one stage transition, or
// a no-op if the run's WAIT_* stage has no decision yet).
type Processor interface {
	Process(ctx context.Context, job *Job) error
}

// PoolConfig mirrors worker/pool.go's Config: worker count and
// per-job timeout.
type PoolConfig struct {
	Workers    int
	JobTimeout time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Workers: 4, JobTimeout: 2 * time.Minute}
}

// Pool runs Workers goroutines pulling Jobs off Queue and handing them
// to Processor, same shape as worker/pool.go's Pool/Worker.
type Pool struct {
	queue     Queue
	processor Processor
	cfg       PoolConfig
	cancel    context.CancelFunc
}

func NewPool(queue Queue, processor Processor, cfg PoolConfig) *Pool {
	return &Pool{queue: queue, processor: processor, cfg: cfg}
}

// Start launches the worker goroutines; it returns immediately.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for i := 0; i < p.cfg.Workers; i++ {
		go p.runWorker(ctx, i)
	}
}

// Stop cancels the pool's context: a job in flight sees its context
// cancelled, and every worker exits once its current job returns.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processNext(ctx)
	}
}

func (p *Pool) processNext(ctx context.Context) {
	job, err := p.queue.Dequeue(ctx, 5*time.Second)
	if err != nil {
		log.Printf("orchestrator: dequeue error: %v", err)
		return
	}
	if job == nil {
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	if err := p.processor.Process(jobCtx, job); err != nil {
		if failErr := p.queue.Fail(ctx, job, err); failErr != nil {
			log.Printf("orchestrator: marking job %s failed: %v", job.RunUUID, failErr)
		}
		return
	}
	if err := p.queue.Complete(ctx, job); err != nil {
		log.Printf("orchestrator: marking job %s complete: %v", job.RunUUID, err)
	}
}

// Command minerva-worker is the pipeline orchestrator's process
// entrypoint: it wires configuration, storage, the LLM client, and the
// graph writer together, migrates the Postgres schemas, and runs the
// worker pools until signaled to stop. Grounded on the teacher's
// executor daemon (config load -> logger -> storage clients -> worker
// pool -> signal-driven shutdown), with one queue for journal pipeline
// runs and one for concept sub-workflow runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/alexelgier/minerva/internal/config"
	"github.com/alexelgier/minerva/internal/curation"
	"github.com/alexelgier/minerva/internal/graph"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
	"github.com/alexelgier/minerva/internal/notify"
	"github.com/alexelgier/minerva/internal/observability"
	"github.com/alexelgier/minerva/internal/orchestrator"
	"github.com/alexelgier/minerva/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("minerva-worker: load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	shutdownTracer := observability.InitTracer("minerva-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("minerva-worker: connect postgres: %w", err)
	}
	defer pool.Close()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URI, neo4j.BasicAuth(cfg.Neo4j.Username, cfg.Neo4j.Password, ""))
	if err != nil {
		return fmt.Errorf("minerva-worker: connect neo4j: %w", err)
	}
	defer driver.Close(ctx)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	publisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.QueueName)
	if err != nil {
		return fmt.Errorf("minerva-worker: connect amqp: %w", err)
	}
	defer publisher.Close()

	var llmClient llm.Client = llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Model)
	if cfg.LLM.CacheEnabled {
		llmClient = llm.NewCachedClient(llmClient, rdb, 24*time.Hour)
	}

	runStore := orchestrator.NewStore(pool)
	eventLog := orchestrator.NewEventLog(pool)
	curationStore := curation.NewStore(pool)
	graphWriter := graph.NewWriter(driver)

	if err := runStore.Migrate(ctx); err != nil {
		return fmt.Errorf("minerva-worker: migrate pipeline_runs: %w", err)
	}
	if err := eventLog.Migrate(ctx); err != nil {
		return fmt.Errorf("minerva-worker: migrate pipeline_events: %w", err)
	}
	if err := curationStore.Migrate(ctx); err != nil {
		return fmt.Errorf("minerva-worker: migrate curation store: %w", err)
	}

	conceptStore := orchestrator.NewConceptStore(pool)
	if err := conceptStore.Migrate(ctx); err != nil {
		return fmt.Errorf("minerva-worker: migrate concept_runs: %w", err)
	}

	conceptFlow := &orchestrator.ConceptOrchestrator{
		Runs:     conceptStore,
		Events:   eventLog,
		Curation: curationStore,
		Graph:    graphWriter,
		LLM:      llmClient,
		Notifier: publisher,
	}

	orch := &orchestrator.Orchestrator{
		Runs:        runStore,
		Events:      eventLog,
		Phases:      orchestrator.NewPhaseManager(),
		Cancels:     orchestrator.NewCancelRegistry(),
		Curation:    curationStore,
		Graph:       graphWriter,
		LLM:         llmClient,
		Resolver:    vault.NewInMemoryResolver(nil),
		Notifier:    publisher,
		ConceptFlow: conceptFlow,
	}

	queue := orchestrator.NewMemQueue(256)
	scheduler := orchestrator.NewScheduler(queue, cfg.Orchestrator.PollInterval)
	go scheduler.Run(ctx, func(ctx context.Context) ([]string, error) {
		return duePipelineRuns(ctx, pool)
	})

	poolCfg := orchestrator.DefaultPoolConfig()
	poolCfg.Workers = cfg.Orchestrator.Workers
	workers := orchestrator.NewPool(queue, orch, poolCfg)
	workers.Start(ctx)

	conceptQueue := orchestrator.NewMemQueue(64)
	conceptScheduler := orchestrator.NewScheduler(conceptQueue, cfg.Orchestrator.PollInterval)
	go conceptScheduler.Run(ctx, func(ctx context.Context) ([]string, error) {
		return dueConceptRuns(ctx, pool)
	})
	conceptWorkers := orchestrator.NewPool(conceptQueue, conceptFlow, poolCfg)
	conceptWorkers.Start(ctx)

	go reapStalledRuns(ctx, orch, cfg.Orchestrator.PollInterval, logger)

	logger.WithField("workers", cfg.Orchestrator.Workers).Info("minerva-worker: started")

	<-ctx.Done()
	logger.Info("minerva-worker: shutting down")
	workers.Stop()
	conceptWorkers.Stop()
	return shutdownTracer(context.Background())
}

// reapStalledRuns periodically fails any run whose WAIT_* schedule-to-
// close deadline has passed without a human decision (spec §4.1, §5).
// It runs on the same cadence as the stage scheduler; a 7-day deadline
// window means missing a tick or two costs nothing.
func reapStalledRuns(ctx context.Context, orch *orchestrator.Orchestrator, tick time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := orch.ReapStalled(ctx)
			if err != nil {
				logger.WithError(err).Warn("minerva-worker: reap stalled runs")
				continue
			}
			if n > 0 {
				logger.WithField("count", n).Warn("minerva-worker: failed runs past schedule-to-close deadline")
			}
		}
	}
}

// duePipelineRuns returns every non-terminal run's uuid, the scheduler's
// source of dispatchable work. A run that is not actually ready (still
// waiting inside a WAIT_* stage with time left on its poll interval)
// costs nothing to re-dispatch: Advance re-reads its poll/heartbeat
// state and no-ops until the curation store marks it done.
func duePipelineRuns(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx,
		`SELECT uuid FROM pipeline_runs WHERE stage NOT IN ($1, $2, $3)`,
		model.StageCompleted, model.StageCancelled, model.StageFailed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// dueConceptRuns is duePipelineRuns' analogue for the concept
// sub-workflow's own table.
func dueConceptRuns(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx,
		`SELECT uuid FROM concept_runs WHERE stage NOT IN ($1, $2, $3)`,
		model.ConceptStageCompleted, model.ConceptStageCancelled, model.ConceptStageFailed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

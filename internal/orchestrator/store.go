// Package orchestrator implements the Pipeline Orchestrator (spec
// §4.1): a durable stage machine driving a journal from
// ENTITY_PROCESSING through DB_WRITE, suspending at two long human
// gates without blocking a goroutine or process for days at a time.
// There is no hosted workflow engine in this stack, so the durable
// primitives an engine would give for free — persisted state, replay,
// timers, heartbeats, cancellation — are built directly on Postgres and
// Redis, combining the shapes of db/state_store.go's ActionState rows,
// coordinator/phases.go's phase lattice, and
// semantic/runtime/event_store.go's append-only event log.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexelgier/minerva/internal/codec"
	"github.com/alexelgier/minerva/internal/model"
)

const runSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	uuid             UUID PRIMARY KEY,
	workflow_id      TEXT NOT NULL,
	journal_uuid     UUID NOT NULL,
	stage            TEXT NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	heartbeat_at     TIMESTAMPTZ,
	deadline_at      TIMESTAMPTZ,
	cancel_requested BOOLEAN NOT NULL DEFAULT FALSE,
	last_error       TEXT,
	error_count      INTEGER NOT NULL DEFAULT 0,
	state_json       JSONB
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_pipeline_runs_workflow_id ON pipeline_runs(workflow_id);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_stage ON pipeline_runs(stage);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_journal ON pipeline_runs(journal_uuid);
`

// Run is one pipeline_runs row: the durable record of a single
// journal's progress through the stage machine.
type Run struct {
	UUID            string
	WorkflowID      string
	JournalUUID     string
	Stage           model.Stage
	StartedAt       time.Time
	UpdatedAt       time.Time
	HeartbeatAt     *time.Time
	DeadlineAt      *time.Time
	CancelRequested bool
	LastError       string
	ErrorCount      int
}

// Store persists Run rows. It is the replay substrate: a crashed
// worker picks up wherever the row says the run last got to, rather
// than restarting the journal from scratch.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, runSchema)
	return err
}

// CreateRun inserts a new pipeline_runs row at ENTITY_PROCESSING.
func (s *Store) CreateRun(ctx context.Context, runUUID, workflowID, journalUUID string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (uuid, workflow_id, journal_uuid, stage, started_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		runUUID, workflowID, journalUUID, model.StageEntityProcessing, now,
	)
	return err
}

// GetRun loads a run by uuid.
func (s *Store) GetRun(ctx context.Context, runUUID string) (Run, error) {
	var r Run
	err := s.pool.QueryRow(ctx,
		`SELECT uuid, workflow_id, journal_uuid, stage, started_at, updated_at, heartbeat_at, deadline_at, cancel_requested, coalesce(last_error, ''), error_count
		 FROM pipeline_runs WHERE uuid = $1`,
		runUUID,
	).Scan(&r.UUID, &r.WorkflowID, &r.JournalUUID, &r.Stage, &r.StartedAt, &r.UpdatedAt, &r.HeartbeatAt, &r.DeadlineAt, &r.CancelRequested, &r.LastError, &r.ErrorCount)
	return r, err
}

// GetRunByWorkflowID resolves the externally-visible workflow id
// (spec §4.1: `journal-{date}-{uuid}`) to its run row. submit()'s
// idempotency-on-collision and the status()/cancel_workflow() external
// contract (spec §6) are keyed by this business id, not the surrogate
// uuid primary key.
func (s *Store) GetRunByWorkflowID(ctx context.Context, workflowID string) (Run, error) {
	var r Run
	err := s.pool.QueryRow(ctx,
		`SELECT uuid, workflow_id, journal_uuid, stage, started_at, updated_at, heartbeat_at, deadline_at, cancel_requested, coalesce(last_error, ''), error_count
		 FROM pipeline_runs WHERE workflow_id = $1`,
		workflowID,
	).Scan(&r.UUID, &r.WorkflowID, &r.JournalUUID, &r.Stage, &r.StartedAt, &r.UpdatedAt, &r.HeartbeatAt, &r.DeadlineAt, &r.CancelRequested, &r.LastError, &r.ErrorCount)
	return r, err
}

// Ping round-trips to Postgres; used by the orchestrator's health_check
// (spec §4.1, §6).
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// TransitionTo moves a run to a new stage, validated against
// ValidTransitions by the caller (orchestrator.go) before this
// is invoked — the store itself just persists the fact.
func (s *Store) TransitionTo(ctx context.Context, runUUID string, stage model.Stage, now time.Time, deadline *time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs SET stage = $1, updated_at = $2, deadline_at = $3, heartbeat_at = NULL WHERE uuid = $4`,
		stage, now, deadline, runUUID,
	)
	return err
}

// Heartbeat renews a run's liveness marker during a long WAIT_* stage.
func (s *Store) Heartbeat(ctx context.Context, runUUID string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE pipeline_runs SET heartbeat_at = $1 WHERE uuid = $2`, now, runUUID)
	return err
}

// RequestCancel flags a run for cooperative cancellation; the worker
// observes this on its next poll/heartbeat tick and stops (spec §5
// cancellation semantics).
func (s *Store) RequestCancel(ctx context.Context, runUUID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE pipeline_runs SET cancel_requested = TRUE WHERE uuid = $1`, runUUID)
	return err
}

// Fail records a terminal failure and increments the run's error_count
// (spec §4.1, §7: every truncated activity error bumps the counter
// before the workflow re-raises).
func (s *Store) Fail(ctx context.Context, runUUID, errMsg string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs SET stage = $1, updated_at = $2, last_error = $3, error_count = error_count + 1 WHERE uuid = $4`,
		model.StageFailed, now, errMsg, runUUID,
	)
	return err
}

// stateWire mirrors model.PipelineState but carries its entity slices
// pre-encoded through internal/codec, since model.Entity is an
// interface json.Unmarshal cannot reconstruct on its own (model cannot
// import codec without a cycle, so this conversion lives here).
type stateWire struct {
	WorkflowID         string                                  `json:"workflow_id"`
	Stage              model.Stage                             `json:"stage"`
	Journal            model.JournalEntry                      `json:"journal"`
	ExtractedEntities  []entityWithSpansWire                   `json:"extracted_entities,omitempty"`
	CuratedEntities    []entityWithSpansWire                   `json:"curated_entities,omitempty"`
	ExtractedRelations []model.RelationshipWithSpansAndContext `json:"extracted_relations,omitempty"`
	ExtractedFeelings  []json.RawMessage                       `json:"extracted_feelings,omitempty"`
	CuratedRelations   []json.RawMessage                       `json:"curated_relations,omitempty"`
	ErrorCount         int                                     `json:"error_count"`
	CreatedAt          time.Time                               `json:"created_at"`
	UpdatedAt          time.Time                               `json:"updated_at"`
}

type entityWithSpansWire struct {
	Entity json.RawMessage `json:"entity"`
	Spans  []model.Span    `json:"spans"`
}

func encodeState(state model.PipelineState) ([]byte, error) {
	wire := stateWire{
		WorkflowID:         state.WorkflowID,
		Stage:              state.Stage,
		Journal:            state.Journal,
		ExtractedRelations: state.ExtractedRelations,
		ErrorCount:         state.ErrorCount,
		CreatedAt:          state.CreatedAt,
		UpdatedAt:          state.UpdatedAt,
	}
	for _, ews := range state.ExtractedEntities {
		enc, err := codec.EncodeEntity(ews.Entity)
		if err != nil {
			return nil, err
		}
		wire.ExtractedEntities = append(wire.ExtractedEntities, entityWithSpansWire{Entity: enc, Spans: ews.Spans})
	}
	for _, ews := range state.CuratedEntities {
		enc, err := codec.EncodeEntity(ews.Entity)
		if err != nil {
			return nil, err
		}
		wire.CuratedEntities = append(wire.CuratedEntities, entityWithSpansWire{Entity: enc, Spans: ews.Spans})
	}
	for _, item := range state.ExtractedFeelings {
		enc, err := codec.EncodeCuratableItem(item)
		if err != nil {
			return nil, err
		}
		wire.ExtractedFeelings = append(wire.ExtractedFeelings, enc)
	}
	for _, item := range state.CuratedRelations {
		enc, err := codec.EncodeCuratableItem(item)
		if err != nil {
			return nil, err
		}
		wire.CuratedRelations = append(wire.CuratedRelations, enc)
	}
	return json.Marshal(wire)
}

func decodeState(raw []byte) (model.PipelineState, error) {
	var wire stateWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return model.PipelineState{}, err
	}
	state := model.PipelineState{
		WorkflowID:         wire.WorkflowID,
		Stage:              wire.Stage,
		Journal:            wire.Journal,
		ExtractedRelations: wire.ExtractedRelations,
		ErrorCount:         wire.ErrorCount,
		CreatedAt:          wire.CreatedAt,
		UpdatedAt:          wire.UpdatedAt,
	}
	for _, w := range wire.ExtractedEntities {
		entity, err := codec.DecodeEntity(w.Entity)
		if err != nil {
			return state, err
		}
		state.ExtractedEntities = append(state.ExtractedEntities, model.EntityWithSpans{Entity: entity, Spans: w.Spans})
	}
	for _, w := range wire.CuratedEntities {
		entity, err := codec.DecodeEntity(w.Entity)
		if err != nil {
			return state, err
		}
		state.CuratedEntities = append(state.CuratedEntities, model.EntityWithSpans{Entity: entity, Spans: w.Spans})
	}
	for _, raw := range wire.ExtractedFeelings {
		item, err := codec.DecodeCuratableItem(raw)
		if err != nil {
			return state, err
		}
		state.ExtractedFeelings = append(state.ExtractedFeelings, item)
	}
	for _, raw := range wire.CuratedRelations {
		item, err := codec.DecodeCuratableItem(raw)
		if err != nil {
			return state, err
		}
		state.CuratedRelations = append(state.CuratedRelations, item)
	}
	return state, nil
}

// SaveState persists the run's full PipelineState as the replay
// substrate between stages — a crashed worker reloads this instead of
// re-running completed activities.
func (s *Store) SaveState(ctx context.Context, runUUID string, state model.PipelineState) error {
	payload, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `UPDATE pipeline_runs SET state_json = $1 WHERE uuid = $2`, payload, runUUID)
	return err
}

// LoadState reloads a run's PipelineState, or a zero value if none has
// been saved yet.
func (s *Store) LoadState(ctx context.Context, runUUID string) (model.PipelineState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state_json FROM pipeline_runs WHERE uuid = $1`, runUUID).Scan(&raw)
	if err != nil {
		return model.PipelineState{}, err
	}
	if raw == nil {
		return model.PipelineState{}, nil
	}
	return decodeState(raw)
}

// GetStalled returns every run in a WAIT_* stage whose deadline has
// passed without a decision — the schedule-to-close timeout firing.
func (s *Store) GetStalled(ctx context.Context, now time.Time) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, journal_uuid, stage, started_at, updated_at, heartbeat_at, deadline_at, cancel_requested, coalesce(last_error, '')
		 FROM pipeline_runs WHERE deadline_at IS NOT NULL AND deadline_at < $1 AND stage NOT IN ($2, $3)`,
		now, model.StageFailed, model.StageCancelled,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.UUID, &r.JournalUUID, &r.Stage, &r.StartedAt, &r.UpdatedAt, &r.HeartbeatAt, &r.DeadlineAt, &r.CancelRequested, &r.LastError); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

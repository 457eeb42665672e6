package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexelgier/minerva/internal/codec"
	"github.com/alexelgier/minerva/internal/model"
)

// conceptRunSchema mirrors runSchema for the concept-extraction
// sub-workflow (spec §4.1): a second durable row type sharing the same
// shape and the same pipeline_events log (keyed by run_uuid, stage is
// just TEXT) but its own table, since its stage column is
// model.ConceptStage rather than model.Stage.
const conceptRunSchema = `
CREATE TABLE IF NOT EXISTS concept_runs (
	uuid             UUID PRIMARY KEY,
	content_uuid     UUID NOT NULL,
	stage            TEXT NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	heartbeat_at     TIMESTAMPTZ,
	deadline_at      TIMESTAMPTZ,
	cancel_requested BOOLEAN NOT NULL DEFAULT FALSE,
	last_error       TEXT,
	state_json       JSONB
);
CREATE INDEX IF NOT EXISTS idx_concept_runs_stage ON concept_runs(stage);
CREATE INDEX IF NOT EXISTS idx_concept_runs_content ON concept_runs(content_uuid);
`

// ConceptRun is one concept_runs row.
type ConceptRun struct {
	UUID            string
	ContentUUID     string
	Stage           model.ConceptStage
	StartedAt       time.Time
	UpdatedAt       time.Time
	HeartbeatAt     *time.Time
	DeadlineAt      *time.Time
	CancelRequested bool
	LastError       string
}

// ConceptStore persists ConceptRun rows, the concept sub-workflow's
// replay substrate (the concept-workflow analogue of Store).
type ConceptStore struct {
	pool *pgxpool.Pool
}

func NewConceptStore(pool *pgxpool.Pool) *ConceptStore {
	return &ConceptStore{pool: pool}
}

func (s *ConceptStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, conceptRunSchema)
	return err
}

// CreateRun inserts a new concept_runs row at LOAD_QUOTES.
func (s *ConceptStore) CreateRun(ctx context.Context, runUUID, contentUUID string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO concept_runs (uuid, content_uuid, stage, started_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		runUUID, contentUUID, model.ConceptStageLoadQuotes, now,
	)
	return err
}

func (s *ConceptStore) GetRun(ctx context.Context, runUUID string) (ConceptRun, error) {
	var r ConceptRun
	err := s.pool.QueryRow(ctx,
		`SELECT uuid, content_uuid, stage, started_at, updated_at, heartbeat_at, deadline_at, cancel_requested, coalesce(last_error, '')
		 FROM concept_runs WHERE uuid = $1`,
		runUUID,
	).Scan(&r.UUID, &r.ContentUUID, &r.Stage, &r.StartedAt, &r.UpdatedAt, &r.HeartbeatAt, &r.DeadlineAt, &r.CancelRequested, &r.LastError)
	return r, err
}

func (s *ConceptStore) TransitionTo(ctx context.Context, runUUID string, stage model.ConceptStage, now time.Time, deadline *time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE concept_runs SET stage = $1, updated_at = $2, deadline_at = $3, heartbeat_at = NULL WHERE uuid = $4`,
		stage, now, deadline, runUUID,
	)
	return err
}

func (s *ConceptStore) Heartbeat(ctx context.Context, runUUID string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE concept_runs SET heartbeat_at = $1 WHERE uuid = $2`, now, runUUID)
	return err
}

func (s *ConceptStore) RequestCancel(ctx context.Context, runUUID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE concept_runs SET cancel_requested = TRUE WHERE uuid = $1`, runUUID)
	return err
}

func (s *ConceptStore) Fail(ctx context.Context, runUUID, errMsg string, now time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE concept_runs SET stage = $1, updated_at = $2, last_error = $3 WHERE uuid = $4`,
		model.ConceptStageFailed, now, errMsg, runUUID,
	)
	return err
}

// conceptStateWire mirrors model.ConceptRunState, pre-encoding its
// EntityWithSpans slices through internal/codec for the same reason
// stateWire does in store.go: model.Entity is an interface only the
// codec knows how to round-trip.
type conceptStateWire struct {
	ContentUUID string                 `json:"content_uuid"`
	Quotes      []model.Quote          `json:"quotes,omitempty"`
	Candidates  []entityWithSpansWire  `json:"candidates,omitempty"`
	Deduped     []entityWithSpansWire  `json:"deduped,omitempty"`
	Critiqued   []entityWithSpansWire  `json:"critiqued,omitempty"`
	Relations   []model.ConceptRelation `json:"relations,omitempty"`
	Curated     []entityWithSpansWire  `json:"curated,omitempty"`
}

func encodeEWSSlice(in []model.EntityWithSpans) ([]entityWithSpansWire, error) {
	out := make([]entityWithSpansWire, 0, len(in))
	for _, ews := range in {
		enc, err := codec.EncodeEntity(ews.Entity)
		if err != nil {
			return nil, err
		}
		out = append(out, entityWithSpansWire{Entity: enc, Spans: ews.Spans})
	}
	return out, nil
}

func decodeEWSSlice(in []entityWithSpansWire) ([]model.EntityWithSpans, error) {
	out := make([]model.EntityWithSpans, 0, len(in))
	for _, w := range in {
		entity, err := codec.DecodeEntity(w.Entity)
		if err != nil {
			return nil, err
		}
		out = append(out, model.EntityWithSpans{Entity: entity, Spans: w.Spans})
	}
	return out, nil
}

func encodeConceptState(state model.ConceptRunState) ([]byte, error) {
	wire := conceptStateWire{ContentUUID: state.ContentUUID, Quotes: state.Quotes, Relations: state.Relations}
	var err error
	if wire.Candidates, err = encodeEWSSlice(state.Candidates); err != nil {
		return nil, err
	}
	if wire.Deduped, err = encodeEWSSlice(state.Deduped); err != nil {
		return nil, err
	}
	if wire.Critiqued, err = encodeEWSSlice(state.Critiqued); err != nil {
		return nil, err
	}
	if wire.Curated, err = encodeEWSSlice(state.Curated); err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func decodeConceptState(raw []byte) (model.ConceptRunState, error) {
	var wire conceptStateWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return model.ConceptRunState{}, err
	}
	state := model.ConceptRunState{ContentUUID: wire.ContentUUID, Quotes: wire.Quotes, Relations: wire.Relations}
	var err error
	if state.Candidates, err = decodeEWSSlice(wire.Candidates); err != nil {
		return state, err
	}
	if state.Deduped, err = decodeEWSSlice(wire.Deduped); err != nil {
		return state, err
	}
	if state.Critiqued, err = decodeEWSSlice(wire.Critiqued); err != nil {
		return state, err
	}
	if state.Curated, err = decodeEWSSlice(wire.Curated); err != nil {
		return state, err
	}
	return state, nil
}

func (s *ConceptStore) SaveState(ctx context.Context, runUUID string, state model.ConceptRunState) error {
	payload, err := encodeConceptState(state)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `UPDATE concept_runs SET state_json = $1 WHERE uuid = $2`, payload, runUUID)
	return err
}

func (s *ConceptStore) LoadState(ctx context.Context, runUUID string) (model.ConceptRunState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state_json FROM concept_runs WHERE uuid = $1`, runUUID).Scan(&raw)
	if err != nil {
		return model.ConceptRunState{}, err
	}
	if raw == nil {
		return model.ConceptRunState{}, nil
	}
	return decodeConceptState(raw)
}

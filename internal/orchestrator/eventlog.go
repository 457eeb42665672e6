package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/model"
)

const eventSchema = `
CREATE TABLE IF NOT EXISTS pipeline_events (
	event_id   UUID PRIMARY KEY,
	run_uuid   UUID NOT NULL,
	stage      TEXT NOT NULL,
	event_type TEXT NOT NULL,
	event_data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pipeline_events_run ON pipeline_events(run_uuid, created_at);
`

// EventType enumerates the kinds of fact the durable log records. A
// run's current state is always reconstructible by folding its event
// rows in created_at order — the same replay guarantee a hosted
// workflow engine's history gives for free.
type EventType string

const (
	EventStageEntered   EventType = "STAGE_ENTERED"
	EventCurationQueued EventType = "CURATION_QUEUED"
	EventHeartbeat      EventType = "HEARTBEAT"
	EventCancelled      EventType = "CANCELLED"
	EventFailed         EventType = "FAILED"
)

// Event is one pipeline_events row (spec §9, grounded on
// semantic/runtime/event_store.go's append-only JSONB log).
type Event struct {
	ID        string          `json:"event_id"`
	RunUUID   string          `json:"run_uuid"`
	Stage     model.Stage     `json:"stage"`
	Type      EventType       `json:"event_type"`
	Data      json.RawMessage `json:"event_data"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventLog is the append-only durable history of every run.
type EventLog struct {
	pool *pgxpool.Pool
}

func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

func (l *EventLog) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, eventSchema)
	return err
}

// Append records one event. Events are never updated or deleted —
// corrections are recorded as new events, keeping the log an honest
// audit trail of what actually happened (spec §9).
func (l *EventLog) Append(ctx context.Context, runUUID string, stage model.Stage, eventType EventType, data interface{}, now time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO pipeline_events (event_id, run_uuid, stage, event_type, event_data, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ids.New(), runUUID, stage, eventType, payload, now,
	)
	return err
}

// ForRun returns every event for a run in chronological order, the
// replay sequence a resumed worker folds to reconstruct where it left
// off.
func (l *EventLog) ForRun(ctx context.Context, runUUID string) ([]Event, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT event_id, run_uuid, stage, event_type, event_data, created_at FROM pipeline_events WHERE run_uuid = $1 ORDER BY created_at ASC`,
		runUUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunUUID, &e.Stage, &e.Type, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

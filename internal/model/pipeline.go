package model

import "time"

// Stage enumerates the eight-stage pipeline state machine (spec §3).
type Stage string

const (
	StageSubmitted              Stage = "SUBMITTED"
	StageEntityProcessing       Stage = "ENTITY_PROCESSING"
	StageSubmitEntityCuration   Stage = "SUBMIT_ENTITY_CURATION"
	StageWaitEntityCuration     Stage = "WAIT_ENTITY_CURATION"
	StageRelationProcessing     Stage = "RELATION_PROCESSING"
	StageSubmitRelationCuration Stage = "SUBMIT_RELATION_CURATION"
	StageWaitRelationCuration   Stage = "WAIT_RELATION_CURATION"
	StageDBWrite                Stage = "DB_WRITE"
	StageCompleted              Stage = "COMPLETED"
	// StageCancelled and StageFailed are terminal stages reachable from any
	// active stage; they are not part of the ordered §3 sequence but are
	// valid destinations in the transition table (internal/orchestrator).
	StageCancelled Stage = "CANCELLED"
	StageFailed    Stage = "FAILED"
)

// Ordered is the strict §3 stage sequence; a replayed history must be a
// prefix of this slice (spec §8 invariant 6).
var Ordered = []Stage{
	StageSubmitted,
	StageEntityProcessing,
	StageSubmitEntityCuration,
	StageWaitEntityCuration,
	StageRelationProcessing,
	StageSubmitRelationCuration,
	StageWaitRelationCuration,
	StageDBWrite,
	StageCompleted,
}

// IsTerminal reports whether no further stage transitions are possible.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled || s == StageFailed
}

// PipelineState is the full per-workflow state; status() returns a
// redacted Snapshot instead.
type PipelineState struct {
	WorkflowID         string                            `json:"workflow_id"`
	Stage              Stage                             `json:"stage"`
	Journal            JournalEntry                      `json:"journal"`
	ExtractedEntities  []EntityWithSpans                 `json:"extracted_entities,omitempty"`
	CuratedEntities    []EntityWithSpans                 `json:"curated_entities,omitempty"`
	ExtractedRelations []RelationshipWithSpansAndContext `json:"extracted_relations,omitempty"`
	ExtractedFeelings  []CuratableItem                   `json:"extracted_feelings,omitempty"`
	CuratedRelations   []CuratableItem                   `json:"curated_relations,omitempty"`
	ErrorCount         int                               `json:"error_count"`
	CreatedAt          time.Time                         `json:"created_at"`
	UpdatedAt          time.Time                         `json:"updated_at"`
}

// Snapshot is the lightweight, array-stripped view status() returns to
// bound payload size (spec §4.1).
type Snapshot struct {
	WorkflowID  string    `json:"workflow_id"`
	Stage       Stage     `json:"stage"`
	ErrorCount  int       `json:"error_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSnapshot redacts a PipelineState for a status() query response.
func (p *PipelineState) ToSnapshot() Snapshot {
	return Snapshot{
		WorkflowID: p.WorkflowID,
		Stage:      p.Stage,
		ErrorCount: p.ErrorCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

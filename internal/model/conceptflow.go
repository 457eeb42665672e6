package model

// ConceptStage enumerates the concept-extraction sub-workflow (spec
// §4.1): runs are rows of their own concept_runs table, sharing the
// pipeline_events log and the orchestrator's heartbeat machinery with
// the main journal pipeline, under their own stage list.
type ConceptStage string

const (
	ConceptStageLoadQuotes     ConceptStage = "LOAD_QUOTES"
	ConceptStageExtract        ConceptStage = "EXTRACT"
	ConceptStageDedup          ConceptStage = "DEDUP"
	ConceptStageRelate         ConceptStage = "RELATE"
	ConceptStageSelfCritique   ConceptStage = "SELF_CRITIQUE"
	ConceptStageSubmitCuration ConceptStage = "SUBMIT_CURATION"
	ConceptStageWaitCuration   ConceptStage = "WAIT_CURATION"
	ConceptStageWrite          ConceptStage = "WRITE"
	ConceptStageMarkProcessed  ConceptStage = "MARK_PROCESSED"
	ConceptStageCompleted      ConceptStage = "COMPLETED"
	ConceptStageCancelled      ConceptStage = "CANCELLED"
	ConceptStageFailed         ConceptStage = "FAILED"
)

// ConceptStageOrdered is the sub-workflow's stage sequence, load_quotes
// through mark_processed (spec.md §4.1).
var ConceptStageOrdered = []ConceptStage{
	ConceptStageLoadQuotes,
	ConceptStageExtract,
	ConceptStageDedup,
	ConceptStageRelate,
	ConceptStageSelfCritique,
	ConceptStageSubmitCuration,
	ConceptStageWaitCuration,
	ConceptStageWrite,
	ConceptStageMarkProcessed,
	ConceptStageCompleted,
}

// IsTerminal reports whether s is one of the sub-workflow's three
// terminal stages.
func (s ConceptStage) IsTerminal() bool {
	return s == ConceptStageCompleted || s == ConceptStageCancelled || s == ConceptStageFailed
}

// ConceptRunState is the concept sub-workflow's replay substrate, the
// concept-workflow analogue of PipelineState: a crashed worker reloads
// this instead of re-running completed activities (extraction calls
// are not free).
type ConceptRunState struct {
	ContentUUID string            `json:"content_uuid"`
	Quotes      []Quote           `json:"quotes"`
	Candidates  []EntityWithSpans `json:"candidates,omitempty"`
	Deduped     []EntityWithSpans `json:"deduped,omitempty"`
	Critiqued   []EntityWithSpans `json:"critiqued,omitempty"`
	Relations   []ConceptRelation `json:"relations,omitempty"`
	Curated     []EntityWithSpans `json:"curated,omitempty"`
}

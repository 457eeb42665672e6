package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alexelgier/minerva/internal/curation"
	"github.com/alexelgier/minerva/internal/extraction"
	"github.com/alexelgier/minerva/internal/graph"
	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
	"github.com/alexelgier/minerva/internal/observability"
	"github.com/alexelgier/minerva/internal/vault"
)

var tracer = observability.Tracer("minerva-pipeline")

// entityTypes is the fixed §3 entity type list ENTITY_PROCESSING walks,
// one ExtractEntities call per type.
var entityTypes = []string{"Person", "Emotion", "Concept", "Content", "Consumable", "Place", "Event", "Project"}

// Notifier is the curation-pending notification sink (spec §4.1: a
// notification is emitted whenever a run enters a WAIT_* stage).
// internal/notify implements this over AMQP; tests use a fake.
type Notifier interface {
	NotifyCurationPending(ctx context.Context, runUUID string, stage model.Stage) error
}

// Orchestrator drives runs through the stage machine defined by
// ValidTransitions, delegating the actual work of each stage to the
// extraction engine, the curation store, and the graph writer.
type Orchestrator struct {
	Runs      *Store
	Events    *EventLog
	Phases    *PhaseManager
	Cancels   *CancelRegistry
	Curation  *curation.Store
	Graph     *graph.Writer
	LLM       llm.Client
	Resolver  vault.Resolver
	Notifier  Notifier
	Now       func() time.Time

	// ConceptFlow starts the concept-extraction sub-workflow (spec
	// §4.1) for every Content entity this run persists. Nil is valid
	// for tests that don't exercise that fan-out.
	ConceptFlow *ConceptOrchestrator
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Submit registers a new journal for pipeline processing: creates the
// curation-store journal row and the durable run row, both at their
// initial stage. Submit is idempotent on workflow id collision (spec
// §4.1): a second Submit for the same journal date+uuid returns the
// existing run's workflow id without re-queuing anything.
func (o *Orchestrator) Submit(ctx context.Context, journal model.JournalEntry) (string, error) {
	workflowID := journal.WorkflowID()
	if existing, err := o.Runs.GetRunByWorkflowID(ctx, workflowID); err == nil {
		return existing.WorkflowID, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("orchestrator: lookup workflow id: %w", err)
	}

	if err := o.Curation.CreateJournalForCuration(ctx, journal); err != nil {
		return "", fmt.Errorf("orchestrator: create journal for curation: %w", err)
	}

	runUUID := ids.New()
	now := o.now()
	if err := o.Runs.CreateRun(ctx, runUUID, workflowID, journal.UUID, now); err != nil {
		return "", fmt.Errorf("orchestrator: create run: %w", err)
	}
	o.Phases.Register(runUUID, model.StageEntityProcessing)

	if err := o.Runs.SaveState(ctx, runUUID, model.PipelineState{
		WorkflowID: workflowID,
		Stage:      model.StageEntityProcessing,
		Journal:    journal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return "", err
	}

	if err := o.Events.Append(ctx, runUUID, model.StageEntityProcessing, EventStageEntered, workflowID, now); err != nil {
		return "", err
	}

	return workflowID, nil
}

// Process implements Processor for the worker pool: it resolves to a
// single Advance call against the job's run.
func (o *Orchestrator) Process(ctx context.Context, job *Job) error {
	return o.Advance(ctx, job.RunUUID)
}

// Status answers the externally-visible get_pipeline_status query
// (spec §4.1, §6), keyed by the workflow id submit() returned. It must
// be safe to call at any stage without blocking the run, so it only
// reads the durable row — no extracted arrays are ever returned (spec's
// "state query invariant").
func (o *Orchestrator) Status(ctx context.Context, workflowID string) (model.Snapshot, error) {
	run, err := o.Runs.GetRunByWorkflowID(ctx, workflowID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		WorkflowID: run.WorkflowID,
		Stage:      run.Stage,
		ErrorCount: run.ErrorCount,
		CreatedAt:  run.StartedAt,
		UpdatedAt:  run.UpdatedAt,
	}, nil
}

// Cancel implements cancel_workflow (spec §4.1, §5): it flags the run
// for cooperative cancellation and, if this process currently holds an
// in-flight activity for it, cancels that activity's context
// immediately. Already-terminal runs report false — nothing to cancel.
// Curation rows and any graph writes already committed are left alone.
func (o *Orchestrator) Cancel(ctx context.Context, workflowID string) (bool, error) {
	run, err := o.Runs.GetRunByWorkflowID(ctx, workflowID)
	if err != nil {
		return false, err
	}
	if run.Stage.IsTerminal() {
		return false, nil
	}
	if err := o.Runs.RequestCancel(ctx, run.UUID); err != nil {
		return false, err
	}
	o.Cancels.Cancel(run.UUID)
	return true, nil
}

// HealthCheck implements health_check (spec §4.1, §6): a round-trip to
// the durable backend this orchestrator depends on.
func (o *Orchestrator) HealthCheck(ctx context.Context) bool {
	return o.Runs.Ping(ctx) == nil
}

// ReapStalled fails every run whose WAIT_* schedule-to-close deadline
// has passed without a human decision (spec §4.1, §5: "expiry
// propagates as workflow failure (not silently)"). Only the deadline is
// checked: a run whose heartbeats have stopped is not failed until its
// deadline passes. It is driven by a periodic ticker alongside the
// stage scheduler, not called inline from Advance, since a deadline can
// expire while no worker is polling the run at all.
func (o *Orchestrator) ReapStalled(ctx context.Context) (int, error) {
	now := o.now()
	stalled, err := o.Runs.GetStalled(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, run := range stalled {
		if err := o.fail(ctx, run.UUID, fmt.Errorf("%s: schedule-to-close deadline exceeded while waiting on human curation", run.Stage)); err != nil {
			return 0, err
		}
	}
	return len(stalled), nil
}

// Advance runs the single activity appropriate to a run's current
// stage and transitions it forward. It is what Processor.Process calls
// for each dispatched Job (spec §4.1's stage sequence).
func (o *Orchestrator) Advance(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}
	if run.CancelRequested {
		return o.transition(ctx, runUUID, run.Stage, model.StageCancelled, nil)
	}
	if run.Stage.IsTerminal() {
		return nil
	}

	runCtx, cleanup := o.Cancels.WithCancel(ctx, runUUID)
	defer cleanup()

	runCtx, span := tracer.Start(runCtx, string(run.Stage))
	span.SetAttributes(attribute.String("minerva.run_uuid", runUUID), attribute.String("minerva.journal_uuid", run.JournalUUID))
	defer span.End()

	switch run.Stage {
	case model.StageEntityProcessing:
		return o.runEntityProcessing(runCtx, runUUID)
	case model.StageSubmitEntityCuration:
		return o.runSubmitEntityCuration(runCtx, runUUID)
	case model.StageWaitEntityCuration:
		return o.runWaitEntityCuration(runCtx, runUUID)
	case model.StageRelationProcessing:
		return o.runRelationProcessing(runCtx, runUUID)
	case model.StageSubmitRelationCuration:
		return o.runSubmitRelationCuration(runCtx, runUUID)
	case model.StageWaitRelationCuration:
		return o.runWaitRelationCuration(runCtx, runUUID)
	case model.StageDBWrite:
		return o.runDBWrite(runCtx, runUUID)
	default:
		return fmt.Errorf("orchestrator: no activity for stage %s", run.Stage)
	}
}

// transition validates, persists, and records a stage change. A failed
// activity does not come through here: fail writes FAILED to the run
// row and the event log directly (spec §4.1 failure semantics: no stage
// retries past its start-to-close timeout, the run fails outright and a
// human re-submits).
func (o *Orchestrator) transition(ctx context.Context, runUUID string, from, to model.Stage, deadline *time.Time) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("orchestrator: illegal transition %s -> %s", from, to)
	}
	now := o.now()
	if err := o.Runs.TransitionTo(ctx, runUUID, to, now, deadline); err != nil {
		return err
	}
	if _, ok := o.Phases.GetStage(runUUID); ok {
		_ = o.Phases.TransitionTo(runUUID, to)
	} else {
		o.Phases.Register(runUUID, to)
	}
	if err := o.Events.Append(ctx, runUUID, to, EventStageEntered, nil, now); err != nil {
		return err
	}
	if to == model.StageWaitEntityCuration || to == model.StageWaitRelationCuration {
		if o.Notifier != nil {
			return o.Notifier.NotifyCurationPending(ctx, runUUID, to)
		}
	}
	return nil
}

// maxErrorMessageLen bounds activity errors before they reach durable
// run state or workflow history (spec §4.1, §7: truncate to ≤200 chars
// to prevent runaway payload growth).
const maxErrorMessageLen = 200

func (o *Orchestrator) fail(ctx context.Context, runUUID string, cause error) error {
	now := o.now()
	msg := model.TruncateMessage(cause, maxErrorMessageLen)
	if err := o.Runs.Fail(ctx, runUUID, msg, now); err != nil {
		return err
	}
	return o.Events.Append(ctx, runUUID, model.StageFailed, EventFailed, msg, now)
}

// resolveExisting fetches the graph node behind every lookup entry
// that already carries an existing UUID, so extraction's merge step
// (spec §4.3 step 4) can dedup against the existing graph and not just
// against other candidates extracted from the same journal. A lookup
// entry's UUID may belong to a different label than entityType (the
// lookup does not carry a type); FindEntityByUUID reports ok=false in
// that case and the entry is skipped rather than treated as an error.
func (o *Orchestrator) resolveExisting(ctx context.Context, entityType string, lookup map[string]vault.LinkedNote) []model.Entity {
	var existing []model.Entity
	seen := map[string]bool{}
	for _, note := range lookup {
		if note.EntityUUID == "" || seen[note.EntityUUID] {
			continue
		}
		seen[note.EntityUUID] = true
		entity, ok, err := o.Graph.FindEntityByUUID(ctx, entityType, note.EntityUUID)
		if err != nil || !ok {
			continue
		}
		existing = append(existing, entity)
	}
	return existing
}

// runEntityProcessing extracts every §3 entity type from the journal
// text and queues the results for curation.
func (o *Orchestrator) runEntityProcessing(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	lookup := extraction.BuildLookup(ctx, state.Journal.Text, o.Resolver)

	var all []model.EntityWithSpans
	for _, entityType := range entityTypes {
		existing := o.resolveExisting(ctx, entityType, lookup)
		results, err := extraction.ExtractEntities(ctx, o.LLM, entityType, state.Journal.Text, lookup, existing, o.now())
		if err != nil {
			return o.fail(ctx, runUUID, fmt.Errorf("extract %s: %w", entityType, err))
		}
		all = append(all, results...)
	}

	state.ExtractedEntities = all
	state.UpdatedAt = o.now()
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}

	return o.transition(ctx, runUUID, model.StageEntityProcessing, model.StageSubmitEntityCuration, nil)
}

func (o *Orchestrator) runSubmitEntityCuration(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	if _, err := o.Curation.QueueEntitiesForCuration(ctx, run.JournalUUID, state.ExtractedEntities); err != nil {
		return o.fail(ctx, runUUID, err)
	}

	deadline := deadlineFor(model.StageWaitEntityCuration, o.now())
	return o.transition(ctx, runUUID, model.StageSubmitEntityCuration, model.StageWaitEntityCuration, deadline)
}

// runWaitEntityCuration polls the curation store; it is a no-op
// (returns nil without transitioning) until every entity has left
// PENDING, at which point it loads the accepted set and advances.
func (o *Orchestrator) runWaitEntityCuration(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}

	if err := o.Runs.Heartbeat(ctx, runUUID, o.now()); err != nil {
		return err
	}

	done, err := o.Curation.CompleteEntityPhase(ctx, run.JournalUUID)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	accepted, err := o.Curation.GetAcceptedEntitiesWithSpans(ctx, run.JournalUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	state.CuratedEntities = accepted
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}

	return o.transition(ctx, runUUID, model.StageWaitEntityCuration, model.StageRelationProcessing, nil)
}

func (o *Orchestrator) runRelationProcessing(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	relations, err := extraction.ExtractRelationships(ctx, o.LLM, state.Journal.Text, state.CuratedEntities)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	feelingEmotions, err := extraction.ExtractFeelingEmotions(ctx, o.LLM, state.Journal.Text, state.CuratedEntities, state.Journal.CreatedAt)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	feelingConcepts, err := extraction.ExtractFeelingConcepts(ctx, o.LLM, state.Journal.Text, state.CuratedEntities, state.Journal.CreatedAt)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	var feelings []model.CuratableItem
	for _, f := range feelingEmotions {
		feelings = append(feelings, model.CuratableItem{Kind: model.KindFeelingEmotion, Data: f})
	}
	for _, f := range feelingConcepts {
		feelings = append(feelings, model.CuratableItem{Kind: model.KindFeelingConcept, Data: f})
	}

	state.ExtractedRelations = relations
	state.ExtractedFeelings = feelings
	state.UpdatedAt = o.now()
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}

	return o.transition(ctx, runUUID, model.StageRelationProcessing, model.StageSubmitRelationCuration, nil)
}

func (o *Orchestrator) runSubmitRelationCuration(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	var items []model.CuratableItem
	for _, rel := range state.ExtractedRelations {
		items = append(items, model.CuratableItem{Kind: model.KindRelation, Data: rel.Relation, Spans: rel.Spans, Context: rel.Context})
	}
	items = append(items, state.ExtractedFeelings...)

	if _, err := o.Curation.QueueRelationshipsForCuration(ctx, run.JournalUUID, items); err != nil {
		return o.fail(ctx, runUUID, err)
	}

	deadline := deadlineFor(model.StageWaitRelationCuration, o.now())
	return o.transition(ctx, runUUID, model.StageSubmitRelationCuration, model.StageWaitRelationCuration, deadline)
}

func (o *Orchestrator) runWaitRelationCuration(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}

	if err := o.Runs.Heartbeat(ctx, runUUID, o.now()); err != nil {
		return err
	}

	done, err := o.Curation.CompleteRelationshipPhase(ctx, run.JournalUUID)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	accepted, err := o.Curation.GetAcceptedRelationshipsWithSpansAndContext(ctx, run.JournalUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	state.CuratedRelations = accepted
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}

	return o.transition(ctx, runUUID, model.StageWaitRelationCuration, model.StageDBWrite, nil)
}

// runDBWrite writes every curated entity before any relation or
// feeling edge (spec §4.4 ordering), then marks the run COMPLETED.
func (o *Orchestrator) runDBWrite(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	var newContentUUIDs []string
	for _, ews := range state.CuratedEntities {
		if err := o.Graph.WriteEntity(ctx, ews.Entity); err != nil {
			return o.fail(ctx, runUUID, fmt.Errorf("write entity %s: %w", ews.Entity.GetUUID(), err))
		}
		if ews.Entity.GetType() == "Content" {
			newContentUUIDs = append(newContentUUIDs, ews.Entity.GetUUID())
		}
	}

	for _, item := range state.CuratedRelations {
		switch data := item.Data.(type) {
		case model.Relation:
			if err := o.Graph.WriteRelation(ctx, data); err != nil {
				return o.fail(ctx, runUUID, err)
			}
		case model.ConceptRelation:
			if err := o.Graph.WriteConceptRelation(ctx, data); err != nil {
				return o.fail(ctx, runUUID, err)
			}
			// the writer only ever writes the single direction it is given
			// (spec §9); the reverse pair (invariant 4) is this caller's
			// responsibility.
			reverse := data
			reverse.SourceUUID, reverse.TargetUUID = data.TargetUUID, data.SourceUUID
			reverse.Type = model.Reverse(data.Type)
			if err := o.Graph.WriteConceptRelation(ctx, reverse); err != nil {
				return o.fail(ctx, runUUID, err)
			}
		case model.FeelingEmotion:
			if err := o.Graph.WriteEntity(ctx, &data); err != nil {
				return o.fail(ctx, runUUID, err)
			}
			if err := o.Graph.Relations.CreateFeelingEdges(ctx, data.UUID, "FeelingEmotion", data.PersonUUID, data.EmotionUUID); err != nil {
				return o.fail(ctx, runUUID, err)
			}
		case model.FeelingConcept:
			if err := o.Graph.WriteEntity(ctx, &data); err != nil {
				return o.fail(ctx, runUUID, err)
			}
			if err := o.Graph.Relations.CreateFeelingEdges(ctx, data.UUID, "FeelingConcept", data.PersonUUID, data.ConceptUUID); err != nil {
				return o.fail(ctx, runUUID, err)
			}
		}
	}

	if err := o.transition(ctx, runUUID, model.StageDBWrite, model.StageCompleted, nil); err != nil {
		return err
	}

	// New Content entities drain into the concept-extraction
	// sub-workflow (spec §4.1); a failure here does not unwind the
	// already-completed journal pipeline run.
	if o.ConceptFlow != nil {
		for _, contentUUID := range newContentUUIDs {
			if _, err := o.ConceptFlow.Submit(ctx, contentUUID); err != nil {
				return fmt.Errorf("orchestrator: start concept extraction for %s: %w", contentUUID, err)
			}
		}
	}
	return nil
}

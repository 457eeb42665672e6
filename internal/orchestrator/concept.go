package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexelgier/minerva/internal/curation"
	"github.com/alexelgier/minerva/internal/extraction"
	"github.com/alexelgier/minerva/internal/graph"
	"github.com/alexelgier/minerva/internal/ids"
	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

// ConceptValidTransitions is ValidTransitions' analogue for the
// concept-extraction sub-workflow's nine-stage list (spec §4.1).
var ConceptValidTransitions = map[model.ConceptStage][]model.ConceptStage{
	model.ConceptStageLoadQuotes:     {model.ConceptStageExtract, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageExtract:        {model.ConceptStageDedup, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageDedup:          {model.ConceptStageRelate, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageRelate:         {model.ConceptStageSelfCritique, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageSelfCritique:   {model.ConceptStageSubmitCuration, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageSubmitCuration: {model.ConceptStageWaitCuration, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageWaitCuration:   {model.ConceptStageWrite, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageWrite:          {model.ConceptStageMarkProcessed, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageMarkProcessed:  {model.ConceptStageCompleted, model.ConceptStageCancelled, model.ConceptStageFailed},
	model.ConceptStageCompleted:      {},
	model.ConceptStageCancelled:      {},
	model.ConceptStageFailed:         {},
}

// CanTransitionConcept reports whether to is a legal successor of from
// in the concept sub-workflow's stage lattice.
func CanTransitionConcept(from, to model.ConceptStage) bool {
	for _, s := range ConceptValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ConceptOrchestrator drives the concept-extraction sub-workflow (spec
// §4.1): started once per newly-persisted Content entity, it loads the
// content's quotes, extracts candidate concepts, dedups against the
// existing graph, discovers concept-to-concept relations, runs a
// self-critique pass, curates, writes, and marks the content processed.
// It reuses the main Orchestrator's EventLog (the table is keyed by
// run_uuid and stage is plain TEXT) and the Curation Store (a synthetic
// journal_curation row keyed by the content's own uuid lets it reuse
// every §4.2 queue/accept/reject operation unmodified).
type ConceptOrchestrator struct {
	Runs     *ConceptStore
	Events   *EventLog
	Curation *curation.Store
	Graph    *graph.Writer
	LLM      llm.Client
	Notifier Notifier
	Now      func() time.Time
}

func (o *ConceptOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Submit starts a concept sub-workflow for contentUUID and returns the
// new run's uuid, a fresh random uuid; the run carries no
// "concept-{content_uuid}" workflow id. A synthetic journal_curation row
// is created under the content's uuid so the shared curation operations
// have an owner row to satisfy their foreign key.
func (o *ConceptOrchestrator) Submit(ctx context.Context, contentUUID string) (string, error) {
	now := o.now()
	if err := o.Curation.CreateJournalForCuration(ctx, model.JournalEntry{
		DocBase: model.DocBase{UUID: contentUUID, CreatedAt: now},
	}); err != nil {
		return "", fmt.Errorf("concept orchestrator: create curation owner: %w", err)
	}

	runUUID := ids.New()
	if err := o.Runs.CreateRun(ctx, runUUID, contentUUID, now); err != nil {
		return "", fmt.Errorf("concept orchestrator: create run: %w", err)
	}
	if err := o.Runs.SaveState(ctx, runUUID, model.ConceptRunState{ContentUUID: contentUUID}); err != nil {
		return "", err
	}
	if err := o.Events.Append(ctx, runUUID, model.Stage(model.ConceptStageLoadQuotes), EventStageEntered, contentUUID, now); err != nil {
		return "", err
	}
	return runUUID, nil
}

// Process implements Processor for the concept sub-workflow's worker
// pool, mirroring Orchestrator.Process.
func (o *ConceptOrchestrator) Process(ctx context.Context, job *Job) error {
	return o.Advance(ctx, job.RunUUID)
}

func (o *ConceptOrchestrator) transition(ctx context.Context, runUUID string, from, to model.ConceptStage, deadline *time.Time) error {
	if !CanTransitionConcept(from, to) {
		return fmt.Errorf("concept orchestrator: illegal transition %s -> %s", from, to)
	}
	now := o.now()
	if err := o.Runs.TransitionTo(ctx, runUUID, to, now, deadline); err != nil {
		return err
	}
	if err := o.Events.Append(ctx, runUUID, model.Stage(to), EventStageEntered, nil, now); err != nil {
		return err
	}
	if to == model.ConceptStageWaitCuration && o.Notifier != nil {
		return o.Notifier.NotifyCurationPending(ctx, runUUID, model.Stage(to))
	}
	return nil
}

func (o *ConceptOrchestrator) fail(ctx context.Context, runUUID string, cause error) error {
	now := o.now()
	msg := model.TruncateMessage(cause, maxErrorMessageLen)
	if err := o.Runs.Fail(ctx, runUUID, msg, now); err != nil {
		return err
	}
	return o.Events.Append(ctx, runUUID, model.Stage(model.ConceptStageFailed), EventFailed, msg, now)
}

// Advance runs the single activity appropriate to a concept run's
// current stage, the sub-workflow analogue of Orchestrator.Advance.
func (o *ConceptOrchestrator) Advance(ctx context.Context, runUUID string) error {
	run, err := o.Runs.GetRun(ctx, runUUID)
	if err != nil {
		return err
	}
	if run.CancelRequested {
		return o.transition(ctx, runUUID, run.Stage, model.ConceptStageCancelled, nil)
	}
	if run.Stage.IsTerminal() {
		return nil
	}

	switch run.Stage {
	case model.ConceptStageLoadQuotes:
		return o.runLoadQuotes(ctx, runUUID, run.ContentUUID)
	case model.ConceptStageExtract:
		return o.runExtract(ctx, runUUID, run.ContentUUID)
	case model.ConceptStageDedup:
		return o.runDedup(ctx, runUUID)
	case model.ConceptStageRelate:
		return o.runRelate(ctx, runUUID)
	case model.ConceptStageSelfCritique:
		return o.runSelfCritique(ctx, runUUID)
	case model.ConceptStageSubmitCuration:
		return o.runSubmitCuration(ctx, runUUID, run.ContentUUID)
	case model.ConceptStageWaitCuration:
		return o.runWaitCuration(ctx, runUUID, run.ContentUUID)
	case model.ConceptStageWrite:
		return o.runWrite(ctx, runUUID)
	case model.ConceptStageMarkProcessed:
		return o.runMarkProcessed(ctx, runUUID, run.ContentUUID)
	default:
		return fmt.Errorf("concept orchestrator: no activity for stage %s", run.Stage)
	}
}

func (o *ConceptOrchestrator) runLoadQuotes(ctx context.Context, runUUID, contentUUID string) error {
	content, ok, err := o.Graph.Content.FindByUUID(ctx, contentUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	if !ok {
		return o.fail(ctx, runUUID, fmt.Errorf("content %s not found", contentUUID))
	}

	quotes := make([]model.Quote, 0, len(content.Quotes))
	for _, text := range content.Quotes {
		quotes = append(quotes, model.Quote{
			DocBase:     model.NewDocBase(""),
			ContentUUID: contentUUID,
			Text:        text,
		})
	}

	if err := o.Runs.SaveState(ctx, runUUID, model.ConceptRunState{ContentUUID: contentUUID, Quotes: quotes}); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageLoadQuotes, model.ConceptStageExtract, nil)
}

func (o *ConceptOrchestrator) runExtract(ctx context.Context, runUUID, contentUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	texts := make([]string, 0, len(state.Quotes))
	for _, q := range state.Quotes {
		texts = append(texts, q.Text)
	}

	candidates, err := extraction.ExtractConceptCandidates(ctx, o.LLM, contentUUID, texts, o.now())
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state.Candidates = candidates
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageExtract, model.ConceptStageDedup, nil)
}

func (o *ConceptOrchestrator) runDedup(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	existing, err := o.Graph.Concept.ListAll(ctx)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state.Deduped = extraction.DedupAgainstExisting(state.Candidates, existing)
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageDedup, model.ConceptStageRelate, nil)
}

func (o *ConceptOrchestrator) runRelate(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	if len(state.Deduped) == 0 {
		if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
			return err
		}
		return o.transition(ctx, runUUID, model.ConceptStageRelate, model.ConceptStageSelfCritique, nil)
	}

	known := map[string]bool{}
	var lines []string
	for _, ews := range state.Deduped {
		known[ews.Entity.GetUUID()] = true
		lines = append(lines, fmt.Sprintf("%s: %s", ews.Entity.GetUUID(), ews.Entity.GetName()))
	}

	relations, err := extraction.DiscoverConceptRelations(ctx, o.LLM, strings.Join(lines, "\n"), known)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state.Relations = relations
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageRelate, model.ConceptStageSelfCritique, nil)
}

// runSelfCritique asks the LLM to reconsider each candidate's analysis
// once more against its own summary before curation (spec §4.1 "optional
// refine pass"); a candidate whose critique call fails is passed through
// unchanged rather than dropped, since the critique is a refinement, not
// a validity gate.
func (o *ConceptOrchestrator) runSelfCritique(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	critiqued := make([]model.EntityWithSpans, 0, len(state.Deduped))
	for _, ews := range state.Deduped {
		concept, ok := ews.Entity.(*model.Concept)
		if !ok {
			critiqued = append(critiqued, ews)
			continue
		}
		resp, err := o.LLM.Generate(ctx, llm.Request{
			System: "Critique this concept analysis for accuracy and specificity. Respond with the revised analysis text only, or the original if no change is needed.",
			Prompt: fmt.Sprintf("Title: %s\nAnalysis: %s", concept.Title, concept.Analysis),
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			concept.Analysis = strings.TrimSpace(resp.Text)
		}
		critiqued = append(critiqued, model.EntityWithSpans{Entity: concept, Spans: ews.Spans})
	}

	state.Critiqued = critiqued
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageSelfCritique, model.ConceptStageSubmitCuration, nil)
}

func (o *ConceptOrchestrator) runSubmitCuration(ctx context.Context, runUUID, contentUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	if _, err := o.Curation.QueueEntitiesForCuration(ctx, contentUUID, state.Critiqued); err != nil {
		return o.fail(ctx, runUUID, err)
	}

	var relationItems []model.CuratableItem
	for _, rel := range state.Relations {
		relationItems = append(relationItems, model.CuratableItem{Kind: model.KindConceptRelation, Data: rel})
	}
	if len(relationItems) > 0 {
		if _, err := o.Curation.QueueRelationshipsForCuration(ctx, contentUUID, relationItems); err != nil {
			return o.fail(ctx, runUUID, err)
		}
	}

	deadline := o.now().Add(TimeoutFor("CONCEPT_WAIT_CURATION").ScheduleToClose)
	return o.transition(ctx, runUUID, model.ConceptStageSubmitCuration, model.ConceptStageWaitCuration, &deadline)
}

func (o *ConceptOrchestrator) runWaitCuration(ctx context.Context, runUUID, contentUUID string) error {
	if err := o.Runs.Heartbeat(ctx, runUUID, o.now()); err != nil {
		return err
	}

	entitiesDone, err := o.Curation.CompleteEntityPhase(ctx, contentUUID)
	if err != nil {
		return err
	}
	if !entitiesDone {
		return nil
	}
	relationsDone, err := o.Curation.CompleteRelationshipPhase(ctx, contentUUID)
	if err != nil {
		return err
	}
	if !relationsDone {
		return nil
	}

	curated, err := o.Curation.GetAcceptedEntitiesWithSpans(ctx, contentUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	acceptedRelations, err := o.Curation.GetAcceptedRelationshipsWithSpansAndContext(ctx, contentUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	state.Curated = curated
	state.Relations = state.Relations[:0]
	for _, item := range acceptedRelations {
		if rel, ok := item.Data.(model.ConceptRelation); ok {
			state.Relations = append(state.Relations, rel)
		}
	}
	if err := o.Runs.SaveState(ctx, runUUID, state); err != nil {
		return err
	}
	return o.transition(ctx, runUUID, model.ConceptStageWaitCuration, model.ConceptStageWrite, nil)
}

// runWrite persists curated concepts, then each concept relation forward
// and its reverse pair (spec §8 invariant 4), then one Content->Concept
// SUPPORTS edge per curated concept. Quotes are not stored as nodes, so
// no Quote->Concept edge is written.
func (o *ConceptOrchestrator) runWrite(ctx context.Context, runUUID string) error {
	state, err := o.Runs.LoadState(ctx, runUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}

	for _, ews := range state.Curated {
		if err := o.Graph.WriteEntity(ctx, ews.Entity); err != nil {
			return o.fail(ctx, runUUID, fmt.Errorf("write concept %s: %w", ews.Entity.GetUUID(), err))
		}
	}

	for _, rel := range state.Relations {
		if err := o.Graph.WriteConceptRelation(ctx, rel); err != nil {
			return o.fail(ctx, runUUID, err)
		}
		reverse := rel
		reverse.SourceUUID, reverse.TargetUUID = rel.TargetUUID, rel.SourceUUID
		reverse.Type = model.Reverse(rel.Type)
		if err := o.Graph.WriteConceptRelation(ctx, reverse); err != nil {
			return o.fail(ctx, runUUID, err)
		}
	}

	for _, ews := range state.Curated {
		if err := o.Graph.Relations.CreateSupportsEdges(ctx, state.ContentUUID, ews.Entity.GetUUID()); err != nil {
			return o.fail(ctx, runUUID, err)
		}
	}

	return o.transition(ctx, runUUID, model.ConceptStageWrite, model.ConceptStageMarkProcessed, nil)
}

func (o *ConceptOrchestrator) runMarkProcessed(ctx context.Context, runUUID, contentUUID string) error {
	content, ok, err := o.Graph.Content.FindByUUID(ctx, contentUUID)
	if err != nil {
		return o.fail(ctx, runUUID, err)
	}
	if ok {
		content.Status = "PROCESSED"
		if err := o.Graph.Content.Update(ctx, content); err != nil {
			return o.fail(ctx, runUUID, err)
		}
	}
	return o.transition(ctx, runUUID, model.ConceptStageMarkProcessed, model.ConceptStageCompleted, nil)
}

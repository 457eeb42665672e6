package orchestrator

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexelgier/minerva/internal/model"
)

// ValidTransitions is the stage adjacency map (spec §8 testable
// property 6): a stage may only move to one of its listed successors,
// or to CANCELLED/FAILED from anywhere active. Generalizes
// coordinator/phases.go's Phase.CanTransitionTo lattice from a fixed
// dozen workflow phases to the §3 pipeline's nine.
var ValidTransitions = map[model.Stage][]model.Stage{
	model.StageSubmitted:              {model.StageEntityProcessing, model.StageCancelled, model.StageFailed},
	model.StageEntityProcessing:       {model.StageSubmitEntityCuration, model.StageCancelled, model.StageFailed},
	model.StageSubmitEntityCuration:   {model.StageWaitEntityCuration, model.StageCancelled, model.StageFailed},
	model.StageWaitEntityCuration:     {model.StageRelationProcessing, model.StageCancelled, model.StageFailed},
	model.StageRelationProcessing:     {model.StageSubmitRelationCuration, model.StageCancelled, model.StageFailed},
	model.StageSubmitRelationCuration: {model.StageWaitRelationCuration, model.StageCancelled, model.StageFailed},
	model.StageWaitRelationCuration:   {model.StageDBWrite, model.StageCancelled, model.StageFailed},
	model.StageDBWrite:                {model.StageCompleted, model.StageCancelled, model.StageFailed},
	model.StageCompleted:              {},
	model.StageCancelled:              {},
	model.StageFailed:                 {},
}

// CanTransition reports whether to is a legal successor of from.
func CanTransition(from, to model.Stage) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PhaseChangeFunc is invoked after every successful TransitionTo.
// Orchestrator registers none: its transition method appends to the
// durable event log and emits curation-pending notifications itself.
type PhaseChangeFunc func(runUUID string, from, to model.Stage)

// PhaseManager is the in-memory mirror of the stages currently active
// in this process, guarding concurrent access and firing callbacks on
// change. The Store is the durable source of truth; PhaseManager exists
// so a single worker process doesn't need to round-trip Postgres to
// check "is this run already terminal" on every event.
type PhaseManager struct {
	mu       sync.Mutex
	stages   map[string]model.Stage
	onChange []PhaseChangeFunc
}

func NewPhaseManager() *PhaseManager {
	return &PhaseManager{stages: map[string]model.Stage{}}
}

// OnPhaseChanged registers a callback fired after every TransitionTo.
func (m *PhaseManager) OnPhaseChanged(fn PhaseChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *PhaseManager) Register(runUUID string, stage model.Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[runUUID] = stage
}

func (m *PhaseManager) GetStage(runUUID string) (model.Stage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stages[runUUID]
	return s, ok
}

// TransitionTo validates and applies a stage transition, firing every
// registered callback. It returns an error if the transition is not in
// ValidTransitions.
func (m *PhaseManager) TransitionTo(runUUID string, to model.Stage) error {
	m.mu.Lock()
	from, ok := m.stages[runUUID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("orchestrator: unknown run %s", runUUID)
	}
	if !CanTransition(from, to) {
		m.mu.Unlock()
		return fmt.Errorf("orchestrator: illegal transition %s -> %s", from, to)
	}
	m.stages[runUUID] = to
	callbacks := append([]PhaseChangeFunc(nil), m.onChange...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(runUUID, from, to)
	}
	return nil
}

func (m *PhaseManager) Remove(runUUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stages, runUUID)
}

// deadlineFor computes the absolute deadline for a stage's
// ScheduleToClose timeout, or nil if the stage has none.
func deadlineFor(stage model.Stage, now time.Time) *time.Time {
	var name string
	switch stage {
	case model.StageWaitEntityCuration:
		name = "WAIT_ENTITY_CURATION"
	case model.StageWaitRelationCuration:
		name = "WAIT_RELATION_CURATION"
	default:
		return nil
	}
	t := timeouts[name]
	if t.ScheduleToClose == 0 {
		return nil
	}
	d := now.Add(t.ScheduleToClose)
	return &d
}

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestCanTransitionHappyPath(t *testing.T) {
	happyPath := []model.Stage{
		model.StageSubmitted,
		model.StageEntityProcessing,
		model.StageSubmitEntityCuration,
		model.StageWaitEntityCuration,
		model.StageRelationProcessing,
		model.StageSubmitRelationCuration,
		model.StageWaitRelationCuration,
		model.StageDBWrite,
		model.StageCompleted,
	}
	for i := 0; i < len(happyPath)-1; i++ {
		assert.True(t, CanTransition(happyPath[i], happyPath[i+1]),
			"expected %s -> %s to be legal", happyPath[i], happyPath[i+1])
	}
}

func TestCanTransitionCancelAndFailFromEveryActiveStage(t *testing.T) {
	for stage := range ValidTransitions {
		if stage.IsTerminal() {
			continue
		}
		assert.True(t, CanTransition(stage, model.StageCancelled), "expected %s -> CANCELLED", stage)
		assert.True(t, CanTransition(stage, model.StageFailed), "expected %s -> FAILED", stage)
	}
}

func TestCanTransitionRejectsSkippingStages(t *testing.T) {
	assert.False(t, CanTransition(model.StageSubmitted, model.StageDBWrite))
	assert.False(t, CanTransition(model.StageEntityProcessing, model.StageCompleted))
}

func TestCanTransitionTerminalStagesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []model.Stage{model.StageCompleted, model.StageCancelled, model.StageFailed} {
		assert.Empty(t, ValidTransitions[terminal])
	}
}

func TestPhaseManagerTransitionTo(t *testing.T) {
	pm := NewPhaseManager()
	pm.Register("run-1", model.StageSubmitted)

	var fired []model.Stage
	pm.OnPhaseChanged(func(runUUID string, from, to model.Stage) {
		fired = append(fired, to)
	})

	require.NoError(t, pm.TransitionTo("run-1", model.StageEntityProcessing))
	stage, ok := pm.GetStage("run-1")
	require.True(t, ok)
	assert.Equal(t, model.StageEntityProcessing, stage)
	require.Len(t, fired, 1)
	assert.Equal(t, model.StageEntityProcessing, fired[0])
}

func TestPhaseManagerTransitionToRejectsIllegalJump(t *testing.T) {
	pm := NewPhaseManager()
	pm.Register("run-1", model.StageSubmitted)

	err := pm.TransitionTo("run-1", model.StageDBWrite)
	assert.Error(t, err)

	stage, _ := pm.GetStage("run-1")
	assert.Equal(t, model.StageSubmitted, stage, "a rejected transition must not mutate the stored stage")
}

func TestPhaseManagerTransitionToUnknownRun(t *testing.T) {
	pm := NewPhaseManager()
	err := pm.TransitionTo("never-registered", model.StageEntityProcessing)
	assert.Error(t, err)
}

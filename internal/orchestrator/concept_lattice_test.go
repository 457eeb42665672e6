package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexelgier/minerva/internal/model"
)

func TestCanTransitionConceptHappyPath(t *testing.T) {
	happyPath := []model.ConceptStage{
		model.ConceptStageLoadQuotes,
		model.ConceptStageExtract,
		model.ConceptStageDedup,
		model.ConceptStageRelate,
		model.ConceptStageSelfCritique,
		model.ConceptStageSubmitCuration,
		model.ConceptStageWaitCuration,
		model.ConceptStageWrite,
		model.ConceptStageMarkProcessed,
		model.ConceptStageCompleted,
	}
	for i := 0; i < len(happyPath)-1; i++ {
		assert.True(t, CanTransitionConcept(happyPath[i], happyPath[i+1]),
			"expected %s -> %s to be legal", happyPath[i], happyPath[i+1])
	}
}

func TestCanTransitionConceptCancelAndFailFromEveryActiveStage(t *testing.T) {
	for stage := range ConceptValidTransitions {
		if stage.IsTerminal() {
			continue
		}
		assert.True(t, CanTransitionConcept(stage, model.ConceptStageCancelled), "expected %s -> CANCELLED", stage)
		assert.True(t, CanTransitionConcept(stage, model.ConceptStageFailed), "expected %s -> FAILED", stage)
	}
}

func TestCanTransitionConceptRejectsSkippingStages(t *testing.T) {
	assert.False(t, CanTransitionConcept(model.ConceptStageLoadQuotes, model.ConceptStageWrite))
	assert.False(t, CanTransitionConcept(model.ConceptStageExtract, model.ConceptStageCompleted))
}

func TestCanTransitionConceptTerminalStagesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []model.ConceptStage{
		model.ConceptStageCompleted,
		model.ConceptStageCancelled,
		model.ConceptStageFailed,
	} {
		assert.Empty(t, ConceptValidTransitions[terminal])
	}
}

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestEncodeDecodeConceptStateRoundTrip(t *testing.T) {
	state := model.ConceptRunState{
		ContentUUID: "content-1",
		Quotes: []model.Quote{
			{DocBase: model.NewDocBase(""), ContentUUID: "content-1", Text: "a quote"},
		},
		Candidates: []model.EntityWithSpans{
			{Entity: &model.Concept{Base: model.NewBase("Concept", "Stoic acceptance", "c-1")}},
		},
		Relations: []model.ConceptRelation{
			{UUID: "cr-1", SourceUUID: "c-1", TargetUUID: "c-2", Type: model.PartOf},
		},
	}

	raw, err := encodeConceptState(state)
	require.NoError(t, err)

	got, err := decodeConceptState(raw)
	require.NoError(t, err)

	assert.Equal(t, "content-1", got.ContentUUID)
	require.Len(t, got.Quotes, 1)
	assert.Equal(t, "a quote", got.Quotes[0].Text)

	require.Len(t, got.Candidates, 1)
	concept, ok := got.Candidates[0].Entity.(*model.Concept)
	require.True(t, ok)
	assert.Equal(t, "Stoic acceptance", concept.Name)

	require.Len(t, got.Relations, 1)
	assert.Equal(t, model.PartOf, got.Relations[0].Type)
}

func TestDecodeConceptStateEmptyPayload(t *testing.T) {
	raw, err := encodeConceptState(model.ConceptRunState{})
	require.NoError(t, err)

	got, err := decodeConceptState(raw)
	require.NoError(t, err)
	assert.Empty(t, got.Candidates)
	assert.Empty(t, got.Relations)
}

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	state := model.PipelineState{
		WorkflowID: "journal-2026-03-05-j1",
		Stage:      model.StageEntityProcessing,
		Journal:    model.JournalEntry{DocBase: model.DocBase{UUID: "j1"}},
		ExtractedEntities: []model.EntityWithSpans{
			{
				Entity: &model.Person{Base: model.NewBase("Person", "Ada Lovelace", "p-1")},
				Spans:  []model.Span{{Start: 0, End: 3, Text: "Ada"}},
			},
		},
		ExtractedRelations: []model.RelationshipWithSpansAndContext{
			{Relation: model.Relation{UUID: "r-1", SourceUUID: "p-1", TargetUUID: "p-2", Type: "KNOWS", ProposedTypes: []string{"KNOWS"}}},
		},
		ExtractedFeelings: []model.CuratableItem{
			{Kind: model.KindFeelingEmotion, Data: model.FeelingEmotion{PersonUUID: "p-1", EmotionUUID: "e-1"}},
		},
		ErrorCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	raw, err := encodeState(state)
	require.NoError(t, err)

	got, err := decodeState(raw)
	require.NoError(t, err)

	assert.Equal(t, state.WorkflowID, got.WorkflowID)
	assert.Equal(t, state.Stage, got.Stage)
	assert.Equal(t, state.Journal.UUID, got.Journal.UUID)
	assert.Equal(t, state.ErrorCount, got.ErrorCount)

	require.Len(t, got.ExtractedEntities, 1)
	person, ok := got.ExtractedEntities[0].Entity.(*model.Person)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", person.Name)

	require.Len(t, got.ExtractedRelations, 1)
	assert.Equal(t, "KNOWS", got.ExtractedRelations[0].Relation.Type)

	require.Len(t, got.ExtractedFeelings, 1)
	fe, ok := got.ExtractedFeelings[0].Data.(model.FeelingEmotion)
	require.True(t, ok)
	assert.Equal(t, "p-1", fe.PersonUUID)
}

func TestDecodeStateEmptyPayload(t *testing.T) {
	raw, err := encodeState(model.PipelineState{})
	require.NoError(t, err)

	got, err := decodeState(raw)
	require.NoError(t, err)
	assert.Empty(t, got.ExtractedEntities)
	assert.Empty(t, got.ExtractedRelations)
}

package extraction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestExtractConceptCandidatesSkipsBlankTitle(t *testing.T) {
	raw := `[
		{"title":"Stoic acceptance","concept_text":"accepting what cannot be changed","source_spans":["quote one"]},
		{"title":"  ","concept_text":"ignored"}
	]`
	client := fakeClient{text: raw}

	out, err := ExtractConceptCandidates(context.Background(), client, "content-1", []string{"quote one here"}, time.Now())
	require.NoError(t, err)
	require.Len(t, out, 1)

	concept, ok := out[0].Entity.(*model.Concept)
	require.True(t, ok)
	assert.Equal(t, "Stoic acceptance", concept.Title)
	assert.Equal(t, "content-1", concept.Source)
}

func TestExtractConceptCandidatesCapsAtFive(t *testing.T) {
	raw := `[
		{"title":"c1"},{"title":"c2"},{"title":"c3"},
		{"title":"c4"},{"title":"c5"},{"title":"c6"},{"title":"c7"}
	]`
	client := fakeClient{text: raw}

	out, err := ExtractConceptCandidates(context.Background(), client, "content-1", []string{"one quote"}, time.Now())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), maxConceptCandidates)
}

func TestDedupAgainstExistingDropsKnownNames(t *testing.T) {
	fresh := []model.EntityWithSpans{
		{Entity: &model.Concept{Base: model.NewBase("Concept", "Free Will", "")}},
		{Entity: &model.Concept{Base: model.NewBase("Concept", "Determinism", "")}},
	}
	existing := []*model.Concept{
		{Base: model.NewBase("Concept", "free will", "existing-1")},
	}

	out := DedupAgainstExisting(fresh, existing)
	require.Len(t, out, 1)
	assert.Equal(t, "Determinism", out[0].Entity.GetName())
}

func TestDiscoverConceptRelationsValidatesTypeAndUUIDs(t *testing.T) {
	raw := `[
		{"source_uuid":"c1","target_uuid":"c2","type":"PART_OF"},
		{"source_uuid":"c1","target_uuid":"unknown","type":"PART_OF"},
		{"source_uuid":"c1","target_uuid":"c2","type":"NOT_A_TYPE"}
	]`
	client := fakeClient{text: raw}
	known := map[string]bool{"c1": true, "c2": true}

	out, err := DiscoverConceptRelations(context.Background(), client, "c1, c2 context", known)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.PartOf, out[0].Type)
}

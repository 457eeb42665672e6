package extraction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestExtractFeelingEmotionsValidatesBothUUIDs(t *testing.T) {
	raw := `[
		{"person_uuid":"p1","target_uuid":"e1","timestamp":"2026-03-05T10:00:00Z","intensity":7,"duration":"30m"},
		{"person_uuid":"p1","target_uuid":"unknown","timestamp":"2026-03-05T10:00:00Z"}
	]`
	client := fakeClient{text: raw}
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entities := []model.EntityWithSpans{entityStub("Person", "P", "p1"), entityStub("Emotion", "E", "e1")}
	out, err := ExtractFeelingEmotions(context.Background(), client, "journal text", entities, fallback)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PersonUUID)
	assert.Equal(t, "e1", out[0].EmotionUUID)
	require.NotNil(t, out[0].Duration)
	assert.Equal(t, 30*time.Minute, *out[0].Duration)
}

func TestExtractFeelingEmotionsFallbackTimestamp(t *testing.T) {
	raw := `[{"person_uuid":"p1","target_uuid":"e1","timestamp":"not-a-timestamp"}]`
	client := fakeClient{text: raw}
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entities := []model.EntityWithSpans{entityStub("Person", "P", "p1"), entityStub("Emotion", "E", "e1")}
	out, err := ExtractFeelingEmotions(context.Background(), client, "journal text", entities, fallback)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Timestamp.Equal(fallback))
}

func TestExtractFeelingConceptsValidatesBothUUIDs(t *testing.T) {
	raw := `[{"person_uuid":"p1","target_uuid":"c1","timestamp":"2026-03-05T10:00:00Z"}]`
	client := fakeClient{text: raw}
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entities := []model.EntityWithSpans{entityStub("Person", "P", "p1"), entityStub("Concept", "C", "c1")}
	out, err := ExtractFeelingConcepts(context.Background(), client, "journal text", entities, fallback)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].ConceptUUID)
}

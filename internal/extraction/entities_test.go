package extraction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
	"github.com/alexelgier/minerva/internal/vault"
)

func TestParseCandidatesMalformedYieldsNil(t *testing.T) {
	assert.Nil(t, ParseCandidates(""))
	assert.Nil(t, ParseCandidates("not json at all"))
}

func TestBuildLookupSeedsFromLinksAndResolver(t *testing.T) {
	resolver := vault.NewInMemoryResolver([]vault.LinkedNote{
		{EntityName: "Ada Lovelace", CanonicalName: "Ada Lovelace", EntityUUID: "p-1"},
	})
	lookup := BuildLookup(context.Background(), "Talked to [[Ada Lovelace]] about [[free-will|Free Will]].", resolver)

	require.Contains(t, lookup, "ada lovelace")
	assert.Equal(t, "p-1", lookup["ada lovelace"].EntityUUID)
	require.Contains(t, lookup, "free will")
}

func TestExtractEntitiesDedupsMergesAndHydratesSpans(t *testing.T) {
	journal := "Today I met Ada Lovelace. Ada Lovelace talked about mathematics for hours."
	raw := `[
		{"name":"Ada Lovelace","fields":{"occupation":"mathematician"},"source_spans":["I met Ada Lovelace"]},
		{"name":"ada lovelace","fields":{"occupation":"mathematician and writer"},"source_spans":["talked about mathematics"]}
	]`
	client := fakeClient{text: raw}

	out, err := ExtractEntities(context.Background(), client, "Person", journal, nil, nil, time.Now())
	require.NoError(t, err)
	require.Len(t, out, 1, "repeated mentions of the same canonical name must dedup to one candidate")

	person, ok := out[0].Entity.(*model.Person)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", person.Name)
	require.Len(t, out[0].Spans, 2, "both source spans should hydrate against the journal text")
}

func TestExtractEntitiesUnknownTypeErrors(t *testing.T) {
	client := fakeClient{text: "[]"}
	_, err := ExtractEntities(context.Background(), client, "NotAType", "journal", nil, nil, time.Now())
	assert.Error(t, err)
}

func TestBuildPersonParsesBirthDate(t *testing.T) {
	e := buildPerson("Ada Lovelace", map[string]string{"birth_date": "1815-12-10"})
	person, ok := e.(*model.Person)
	require.True(t, ok)
	require.NotNil(t, person.BirthDate)
	assert.Equal(t, 1815, person.BirthDate.Year())
}

func TestBuildEventParsesDurationAndDate(t *testing.T) {
	e := buildEvent("Conference", map[string]string{"date": "2026-03-05", "duration": "2h"})
	event, ok := e.(*model.Event)
	require.True(t, ok)
	require.NotNil(t, event.Date)
	require.NotNil(t, event.Duration)
	assert.Equal(t, 2*time.Hour, *event.Duration)
}

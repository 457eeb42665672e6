package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/llm"
	"github.com/alexelgier/minerva/internal/model"
)

func entityStub(typ, name, uuid string) model.EntityWithSpans {
	return model.EntityWithSpans{Entity: stubEntity{Base: model.NewBase(typ, name, uuid)}}
}

// stubEntity satisfies model.Entity for tests that only need
// GetUUID/GetName/GetType, without pulling in a concrete domain type.
type stubEntity struct{ model.Base }

type fakeClient struct {
	text string
}

func (f fakeClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: f.text}, nil
}

func (f fakeClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func TestExtractRelationshipsDropsUnknownUUIDs(t *testing.T) {
	raw := `[
		{"source_uuid":"known-1","target_uuid":"known-2","proposed_types":["MENTIONS"],"source_spans":["hello world"]},
		{"source_uuid":"known-1","target_uuid":"unknown","proposed_types":["MENTIONS"],"source_spans":[]}
	]`
	client := fakeClient{text: raw}
	known := []model.EntityWithSpans{
		entityStub("Person", "Alice", "known-1"),
		entityStub("Person", "Bob", "known-2"),
	}

	out, err := ExtractRelationships(context.Background(), client, "hello world today", known)
	require.NoError(t, err)
	require.Len(t, out, 1, "only the triple with both endpoints known should survive")
	assert.Equal(t, "known-1", out[0].Relation.SourceUUID)
	assert.Equal(t, "known-2", out[0].Relation.TargetUUID)
}

func TestExtractRelationshipsRequiresProposedType(t *testing.T) {
	raw := `[{"source_uuid":"a","target_uuid":"b","proposed_types":[],"source_spans":[]}]`
	client := fakeClient{text: raw}
	known := []model.EntityWithSpans{
		entityStub("Person", "A", "a"),
		entityStub("Person", "B", "b"),
	}

	out, err := ExtractRelationships(context.Background(), client, "doc text", known)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExtractRelationshipsMalformedResponse(t *testing.T) {
	client := fakeClient{text: "not json"}
	out, err := ExtractRelationships(context.Background(), client, "doc", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseRelationCandidatesEmpty(t *testing.T) {
	assert.Nil(t, ParseRelationCandidates(""))
	assert.Nil(t, ParseRelationCandidates("   "))
	assert.Nil(t, ParseRelationCandidates("not json"))
}

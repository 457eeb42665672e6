package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestEncodeDecodeEntityRoundTrip(t *testing.T) {
	p := &model.Person{
		Base:       model.NewBase("Person", "Ada Lovelace", "p-1"),
		Occupation: "mathematician",
	}

	b, err := EncodeEntity(p)
	require.NoError(t, err)

	decoded, err := DecodeEntity(b)
	require.NoError(t, err)

	got, ok := decoded.(*model.Person)
	require.True(t, ok, "expected *model.Person, got %T", decoded)
	assert.Equal(t, p.UUID, got.UUID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Occupation, got.Occupation)
}

func TestEncodeEntityNil(t *testing.T) {
	_, err := EncodeEntity(nil)
	assert.Error(t, err)
}

func TestDecodeEntityUnknownType(t *testing.T) {
	_, err := DecodeEntity([]byte(`{"type":"NotAThing"}`))
	assert.Error(t, err)
}

func TestEncodeDecodeCuratableItemRelation(t *testing.T) {
	item := model.CuratableItem{
		Kind: model.KindRelation,
		Data: model.Relation{
			UUID:          "r-1",
			SourceUUID:    "a",
			TargetUUID:    "b",
			Type:          "MENTIONS",
			ProposedTypes: []string{"MENTIONS"},
		},
		Spans: []model.Span{{Start: 0, End: 4, Text: "text"}},
	}

	b, err := EncodeCuratableItem(item)
	require.NoError(t, err)

	decoded, err := DecodeCuratableItem(b)
	require.NoError(t, err)
	assert.Equal(t, model.KindRelation, decoded.Kind)

	rel, ok := decoded.Data.(model.Relation)
	require.True(t, ok, "expected model.Relation, got %T", decoded.Data)
	assert.Equal(t, "r-1", rel.UUID)
	assert.Equal(t, "a", rel.SourceUUID)
	require.Len(t, decoded.Spans, 1)
	assert.Equal(t, "text", decoded.Spans[0].Text)
}

func TestEncodeDecodeCuratableItemConceptRelation(t *testing.T) {
	item := model.CuratableItem{
		Kind: model.KindConceptRelation,
		Data: model.ConceptRelation{
			UUID:       "cr-1",
			SourceUUID: "c1",
			TargetUUID: "c2",
			Type:       model.PartOf,
		},
	}

	b, err := EncodeCuratableItem(item)
	require.NoError(t, err)

	decoded, err := DecodeCuratableItem(b)
	require.NoError(t, err)

	rel, ok := decoded.Data.(model.ConceptRelation)
	require.True(t, ok, "expected model.ConceptRelation, got %T", decoded.Data)
	assert.Equal(t, model.PartOf, rel.Type)
}

func TestDecodeCuratableDataByKind(t *testing.T) {
	fe := model.FeelingEmotion{
		Base:        model.Base{UUID: "fe-1", Type: "FeelingEmotion", CreatedAt: time.Now()},
		PersonUUID:  "p-1",
		EmotionUUID: "e-1",
	}
	b, err := EncodeEntity(&fe)
	require.NoError(t, err)

	decoded, err := DecodeCuratableData(model.KindFeelingEmotion, b)
	require.NoError(t, err)
	got, ok := decoded.(model.FeelingEmotion)
	require.True(t, ok)
	assert.Equal(t, "p-1", got.PersonUUID)
}

func TestDecodeCuratableItemUnknownKind(t *testing.T) {
	_, err := DecodeCuratableItem([]byte(`{"kind":"nonsense","data":{}}`))
	assert.Error(t, err)
}

package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestMergeOrHydrateMatchKeepsExistingUUID(t *testing.T) {
	existing := []model.Entity{
		&model.Person{
			Base:       model.NewBase("Person", "Ada Lovelace", "existing-uuid"),
			Occupation: "mathematician",
			Summarized: model.Summarized{Summary: "old summary"},
		},
	}
	built := &model.Person{
		Base:       model.NewBase("Person", "ada lovelace", "fresh-uuid"),
		Occupation: "mathematician and writer",
		Summarized: model.Summarized{Summary: "new summary"},
	}

	got := MergeOrHydrate(nil, nil, built, existing, "Person")

	person, ok := got.(*model.Person)
	require.True(t, ok)
	assert.Equal(t, "existing-uuid", person.UUID, "merge must keep the existing UUID stable")
	// built's non-summary fields win over existing's.
	assert.Equal(t, "mathematician and writer", person.Occupation)
	// with a nil LLM client, the new summary pair passes through untouched.
	assert.Equal(t, "new summary", person.Summary)
}

func TestMergeOrHydrateNoMatchReturnsBuiltUnchanged(t *testing.T) {
	existing := []model.Entity{
		&model.Person{Base: model.NewBase("Person", "Someone Else", "other-uuid")},
	}
	built := &model.Person{Base: model.NewBase("Person", "Ada Lovelace", "fresh-uuid")}

	got := MergeOrHydrate(nil, nil, built, existing, "Person")

	person, ok := got.(*model.Person)
	require.True(t, ok)
	assert.Equal(t, "fresh-uuid", person.UUID)
}

func TestMergeOrHydrateIgnoresOtherTypes(t *testing.T) {
	existing := []model.Entity{
		&model.Concept{Base: model.NewBase("Concept", "Ada Lovelace", "concept-uuid")},
	}
	built := &model.Person{Base: model.NewBase("Person", "Ada Lovelace", "fresh-uuid")}

	got := MergeOrHydrate(nil, nil, built, existing, "Person")

	person, ok := got.(*model.Person)
	require.True(t, ok)
	assert.Equal(t, "fresh-uuid", person.UUID, "a same-name entity of a different type must not match")
}

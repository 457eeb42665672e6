package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexelgier/minerva/internal/model"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarityMismatchedLengthOrEmpty(t *testing.T) {
	assert.Equal(t, -1.0, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, -1.0, cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, -1.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestEntityEmbeddingReadsViaReflection(t *testing.T) {
	c := &model.Concept{Summarized: model.Summarized{Embedding: []float32{0.1, 0.2}}}
	assert.Equal(t, []float32{0.1, 0.2}, entityEmbedding(c))
}

func TestEntityEmbeddingNoFieldReturnsNil(t *testing.T) {
	fe := &model.FeelingEmotion{Base: model.NewBase("FeelingEmotion", "", "fe-1")}
	assert.Nil(t, entityEmbedding(fe))
}

func TestTopBySimilarityRanksAndLimits(t *testing.T) {
	candidates := []*model.Concept{
		{Base: model.NewBase("Concept", "close", "a"), Summarized: model.Summarized{Embedding: []float32{1, 0}}},
		{Base: model.NewBase("Concept", "far", "b"), Summarized: model.Summarized{Embedding: []float32{0, 1}}},
		{Base: model.NewBase("Concept", "exact", "c"), Summarized: model.Summarized{Embedding: []float32{2, 0}}},
	}

	top := topBySimilarity(candidates, []float32{1, 0}, 2)
	require.Len(t, top, 2)
	assert.ElementsMatch(t, []string{"exact", "close"}, []string{top[0].Name, top[1].Name})
}

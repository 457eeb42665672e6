package graph

import (
	"math"
	"reflect"
	"sort"

	"github.com/alexelgier/minerva/internal/model"
)

// entityEmbedding reads the Embedding field off any entity carrying a
// Summarized (or equivalent-shaped) embedding, via reflection — every
// §3 entity type embeds model.Summarized but none exposes a getter.
func entityEmbedding(entity model.Entity) []float32 {
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	f := v.FieldByName("Embedding")
	if !f.IsValid() || f.Kind() != reflect.Slice {
		return nil
	}
	vec, ok := f.Interface().([]float32)
	if !ok {
		return nil
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// topBySimilarity ranks candidates by cosine similarity to target,
// dropping any with no comparable embedding, and returns the top limit.
func topBySimilarity[T model.Entity](candidates []T, target []float32, limit int) []T {
	type scored struct {
		entity T
		score  float64
	}

	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		score := cosineSimilarity(entityEmbedding(c), target)
		if score < 0 {
			continue
		}
		scoredList = append(scoredList, scored{entity: c, score: score})
	}

	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].score > scoredList[j].score })

	if limit > len(scoredList) {
		limit = len(scoredList)
	}
	out := make([]T, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, scoredList[i].entity)
	}
	return out
}

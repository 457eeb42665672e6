package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupCollapsesCaseAndWhitespace(t *testing.T) {
	in := []Candidate{
		{Name: "Free Will", SourceSpans: []string{"span one"}},
		{Name: "  free will  ", SourceSpans: []string{"span two"}},
		{Name: "Determinism", SourceSpans: []string{"span three"}},
	}

	out := Dedup(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Free Will", out[0].Name)
	assert.Equal(t, []string{"span one", "span two"}, out[0].SourceSpans)
	assert.Equal(t, "Determinism", out[1].Name)
}

func TestDedupEmptyNameSkipped(t *testing.T) {
	in := []Candidate{
		{Name: "   "},
		{Name: "Real Concept"},
	}
	out := Dedup(in)
	require.Len(t, out, 1)
	assert.Equal(t, "Real Concept", out[0].Name)
}

func TestDedupPreservesFirstOccurrenceOrder(t *testing.T) {
	in := []Candidate{
		{Name: "B"},
		{Name: "A"},
		{Name: "b"},
	}
	out := Dedup(in)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Name)
	assert.Equal(t, "A", out[1].Name)
}

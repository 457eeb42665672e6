package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateSpanExactMatch(t *testing.T) {
	doc := "Today I read about the nature of consciousness and free will."
	span, ok := HydrateSpan(doc, "nature of consciousness")
	require.True(t, ok)
	assert.Equal(t, "nature of consciousness", span.Text)
	assert.Equal(t, doc[span.Start:span.End], span.Text)
}

func TestHydrateSpanCaseInsensitive(t *testing.T) {
	doc := "Today I read about the NATURE of consciousness."
	span, ok := HydrateSpan(doc, "nature of consciousness")
	require.True(t, ok)
	assert.Equal(t, "NATURE of consciousness", span.Text)
}

func TestHydrateSpanFuzzyFallback(t *testing.T) {
	doc := "Today I read about the nature of conciousness and free will."
	span, ok := HydrateSpan(doc, "nature of consciousness")
	require.True(t, ok, "expected fuzzy fallback to find a close match")
	assert.Equal(t, doc[span.Start:span.End], span.Text)
}

func TestHydrateSpanNoMatch(t *testing.T) {
	doc := "A short unrelated sentence."
	_, ok := HydrateSpan(doc, "completely different text about quantum mechanics")
	assert.False(t, ok)
}

func TestHydrateSpanEmptyInputs(t *testing.T) {
	_, ok := HydrateSpan("", "target")
	assert.False(t, ok)
	_, ok = HydrateSpan("doc text", "")
	assert.False(t, ok)
}

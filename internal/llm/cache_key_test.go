package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyDeterministic(t *testing.T) {
	a := cacheKey("generate", "prompt", "system", "model", "0|0.000000")
	b := cacheKey("generate", "prompt", "system", "model", "0|0.000000")
	assert.Equal(t, a, b)
}

func TestCacheKeyDiffersOnInput(t *testing.T) {
	a := cacheKey("generate", "prompt one")
	b := cacheKey("generate", "prompt two")
	assert.NotEqual(t, a, b)
}

func TestCacheKeyNamespacedByPrefix(t *testing.T) {
	a := cacheKey("generate", "x")
	b := cacheKey("embed", "x")
	assert.NotEqual(t, a, b)
}

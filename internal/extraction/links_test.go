package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinksTargetOnly(t *testing.T) {
	refs := ParseLinks("Talked to [[Ada Lovelace]] about math today.")
	require.Len(t, refs, 1)
	assert.Equal(t, "Ada Lovelace", refs[0].Target)
	assert.Equal(t, "Ada Lovelace", refs[0].DisplayName())
}

func TestParseLinksWithAlias(t *testing.T) {
	refs := ParseLinks("Read [[free-will|Free Will]] again.")
	require.Len(t, refs, 1)
	assert.Equal(t, "free-will", refs[0].Target)
	assert.Equal(t, "Free Will", refs[0].Alias)
	assert.Equal(t, "Free Will", refs[0].DisplayName())
}

func TestParseLinksMultipleInOrder(t *testing.T) {
	refs := ParseLinks("[[A]] then [[B|Beta]] then [[C]].")
	require.Len(t, refs, 3)
	assert.Equal(t, "A", refs[0].Target)
	assert.Equal(t, "Beta", refs[1].DisplayName())
	assert.Equal(t, "C", refs[2].Target)
}

func TestParseLinksNoLinks(t *testing.T) {
	assert.Empty(t, ParseLinks("just plain text"))
}

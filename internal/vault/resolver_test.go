package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResolverAlwaysIncludesNarrator(t *testing.T) {
	r := NewInMemoryResolver(nil)
	note, err := r.ResolveLink(context.Background(), "Alex Elgier")
	require.NoError(t, err)
	assert.Equal(t, narratorName, note.EntityName)
}

func TestInMemoryResolverResolvesByAlias(t *testing.T) {
	r := NewInMemoryResolver([]LinkedNote{
		{EntityName: "Ada Lovelace", CanonicalName: "Ada Lovelace", Aliases: []string{"Ada"}, EntityUUID: "p-1"},
	})

	note, err := r.ResolveLink(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "p-1", note.EntityUUID)

	note, err = r.ResolveLink(context.Background(), "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "p-1", note.EntityUUID)
}

func TestInMemoryResolverUnknownNameResolvesBare(t *testing.T) {
	r := NewInMemoryResolver(nil)
	note, err := r.ResolveLink(context.Background(), "Never Seen Before")
	require.NoError(t, err)
	assert.Equal(t, "Never Seen Before", note.EntityName)
	assert.Empty(t, note.EntityUUID)
}

func TestInMemoryResolverPutReplacesExisting(t *testing.T) {
	r := NewInMemoryResolver(nil)
	r.Put(LinkedNote{EntityName: "Determinism", CanonicalName: "Determinism", EntityUUID: "c-1"})
	note, err := r.ResolveLink(context.Background(), "Determinism")
	require.NoError(t, err)
	assert.Equal(t, "c-1", note.EntityUUID)

	r.Put(LinkedNote{EntityName: "Determinism", CanonicalName: "Determinism", EntityUUID: "c-2"})
	note, err = r.ResolveLink(context.Background(), "Determinism")
	require.NoError(t, err)
	assert.Equal(t, "c-2", note.EntityUUID)
}

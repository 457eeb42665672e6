package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelRegistryCancelStopsContext(t *testing.T) {
	r := NewCancelRegistry()
	derived, cleanup := r.WithCancel(context.Background(), "run-1")
	defer cleanup()

	ok := r.Cancel("run-1")
	assert.True(t, ok)

	select {
	case <-derived.Done():
	default:
		t.Fatal("expected derived context to be cancelled")
	}
}

func TestCancelRegistryUnknownRunReturnsFalse(t *testing.T) {
	r := NewCancelRegistry()
	assert.False(t, r.Cancel("never-registered"))
}

func TestCancelRegistryCleanupRemovesEntry(t *testing.T) {
	r := NewCancelRegistry()
	_, cleanup := r.WithCancel(context.Background(), "run-1")
	cleanup()

	assert.False(t, r.Cancel("run-1"), "cleanup must deregister the run so a stale Cancel is a no-op")
}

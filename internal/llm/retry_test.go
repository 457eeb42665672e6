package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalForExponentialBackoff(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 2*time.Second, p.IntervalFor(1))
	assert.Equal(t, 4*time.Second, p.IntervalFor(2))
	assert.Equal(t, 8*time.Second, p.IntervalFor(3))
}

func TestIntervalForCapsAtMaxInterval(t *testing.T) {
	p := RetryPolicy{InitialInterval: time.Minute, Multiplier: 10, MaxInterval: 5 * time.Minute, MaxAttempts: 5}
	assert.Equal(t, 5*time.Minute, p.IntervalFor(4))
}

func TestDefaultRetryPolicyShape(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2.0, p.Multiplier)
}

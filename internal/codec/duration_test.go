package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"140s", 140 * time.Second},
		{"2h", 2 * time.Hour},
		{"1:30", time.Hour + 30*time.Minute},
		{"1:30:45", time.Hour + 30*time.Minute + 45*time.Second},
		{"90", 90 * time.Second},
		{"3d", 3 * 24 * time.Hour},
		{"5m", 5 * time.Minute},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		require.NoError(t, err, c.in)
		require.NotNil(t, got, c.in)
		assert.Equal(t, c.want, *got, c.in)
	}
}

func TestParseDurationEmpty(t *testing.T) {
	got, err := ParseDuration("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseDurationUnrecognized(t *testing.T) {
	got, err := ParseDuration("sometime next week")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFormatDurationRoundTrip(t *testing.T) {
	durations := []time.Duration{
		140 * time.Second,
		2 * time.Hour,
		90 * time.Minute,
		0,
		45 * time.Second,
	}
	for _, d := range durations {
		formatted := FormatDuration(d)
		parsed, err := ParseDuration(formatted)
		require.NoError(t, err)
		require.NotNil(t, parsed)
		assert.Equal(t, d, *parsed, formatted)
	}
}

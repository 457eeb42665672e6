package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeMarshalRFC3339(t *testing.T) {
	tm := Time{Time: time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)}
	b, err := json.Marshal(tm)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-05T14:30:00Z"`, string(b))

	var out Time
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, tm.Time.Equal(out.Time))
}

func TestTimeZeroMarshalsNull(t *testing.T) {
	var tm Time
	b, err := json.Marshal(tm)
	require.NoError(t, err)
	assert.Equal(t, `null`, string(b))

	var out Time
	require.NoError(t, json.Unmarshal([]byte(`null`), &out))
	assert.True(t, out.Time.IsZero())
}

func TestDateMarshalDateOnly(t *testing.T) {
	d := Date{Time: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-05"`, string(b))

	var out Date
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, d.Time.Equal(out.Time))
}

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutForKnownStage(t *testing.T) {
	to := TimeoutFor("WAIT_ENTITY_CURATION")
	assert.Equal(t, 7*24*time.Hour, to.ScheduleToClose)
	assert.Equal(t, 30*time.Second, to.PollInterval)
}

func TestTimeoutForUnknownStageIsZeroValue(t *testing.T) {
	to := TimeoutFor("NOT_A_STAGE")
	assert.Equal(t, StageTimeout{}, to)
}

func TestValidatePollCadenceEnforcesFloorAndRatio(t *testing.T) {
	assert.True(t, validatePollCadence(30*time.Second, 2*time.Minute))
	assert.False(t, validatePollCadence(5*time.Second, 2*time.Minute), "below the 10s floor must fail")
	assert.False(t, validatePollCadence(50*time.Second, time.Minute), "poll > heartbeat/3 must fail")
	assert.True(t, validatePollCadence(30*time.Second, 0), "no heartbeat configured skips the ratio check")
}

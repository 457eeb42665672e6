package orchestrator

import "time"

// Stage timeouts, verbatim from spec §4.1. StartToClose bounds a single
// activity attempt; ScheduleToClose bounds a human-gated wait across
// retries/restarts. PollInterval is how often a WAIT_* stage checks
// the Curation Store for a decision; Heartbeat is how often the
// workflow renews its liveness marker while waiting.
type StageTimeout struct {
	StartToClose    time.Duration
	ScheduleToClose time.Duration
	PollInterval    time.Duration
	Heartbeat       time.Duration
}

// minPollFloor is the lowest PollInterval any WAIT_* stage may use
// (spec §9: poll cadence must stay >= 3x below heartbeat, floor 10s).
const minPollFloor = 10 * time.Second

var timeouts = map[string]StageTimeout{
	"ENTITY_PROCESSING":        {StartToClose: 60 * time.Minute},
	"SUBMIT_ENTITY_CURATION":   {StartToClose: time.Minute},
	"WAIT_ENTITY_CURATION":     {ScheduleToClose: 7 * 24 * time.Hour, PollInterval: 30 * time.Second, Heartbeat: 2 * time.Minute},
	"RELATION_PROCESSING":      {StartToClose: 60 * time.Minute},
	"SUBMIT_RELATION_CURATION": {StartToClose: time.Minute},
	"WAIT_RELATION_CURATION":   {ScheduleToClose: 7 * 24 * time.Hour, PollInterval: 30 * time.Second, Heartbeat: 2 * time.Minute},
	"DB_WRITE":                 {StartToClose: 5 * time.Minute},

	// Concept extraction sub-workflow (spec §4.1).
	"CONCEPT_WAIT_CURATION": {ScheduleToClose: 7 * 24 * time.Hour, PollInterval: 30 * time.Second, Heartbeat: 2 * time.Minute},
}

// TimeoutFor returns the configured timeout for a named stage.
func TimeoutFor(name string) StageTimeout {
	return timeouts[name]
}

// validatePollCadence enforces spec §9's poll/heartbeat ratio: poll
// interval must be at or below 1/3 of the heartbeat and never below
// minPollFloor.
func validatePollCadence(poll, heartbeat time.Duration) bool {
	if poll < minPollFloor {
		return false
	}
	if heartbeat > 0 && poll*3 > heartbeat {
		return false
	}
	return true
}

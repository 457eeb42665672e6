package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvConfigDefaultsWhenUnset(t *testing.T) {
	ec := NewEnvConfig("MINERVA_TEST_UNSET")
	assert.Equal(t, "fallback", ec.GetString("KEY", "fallback"))
	assert.Equal(t, 7, ec.GetInt("KEY", 7))
	assert.True(t, ec.GetBool("KEY", true))
	assert.Equal(t, time.Minute, ec.GetDuration("KEY", time.Minute))
}

func TestEnvConfigReadsPrefixedValue(t *testing.T) {
	t.Setenv("MINERVA_TEST_PREFIX_KEY", "value")
	ec := NewEnvConfig("MINERVA_TEST_PREFIX")
	assert.Equal(t, "value", ec.GetString("KEY", "fallback"))
}

func TestEnvConfigMalformedFallsBackToDefault(t *testing.T) {
	t.Setenv("MINERVA_TEST_MALFORMED_KEY", "not-an-int")
	ec := NewEnvConfig("MINERVA_TEST_MALFORMED")
	assert.Equal(t, 42, ec.GetInt("KEY", 42))
}

func TestMustGetStringPanicsWhenUnset(t *testing.T) {
	os.Unsetenv("MINERVA_TEST_MUST_KEY")
	ec := NewEnvConfig("MINERVA_TEST_MUST")
	assert.Panics(t, func() { ec.MustGetString("KEY") })
}

func TestOrchestratorConfigValidate(t *testing.T) {
	good := OrchestratorConfig{PollInterval: 30 * time.Second, Heartbeat: 2 * time.Minute}
	require.NoError(t, good.Validate())

	belowFloor := OrchestratorConfig{PollInterval: 5 * time.Second, Heartbeat: time.Minute}
	assert.Error(t, belowFloor.Validate())

	badRatio := OrchestratorConfig{PollInterval: 50 * time.Second, Heartbeat: time.Minute}
	assert.Error(t, badRatio.Validate())
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minerva-pipeline", cfg.Orchestrator.TaskQueue)
	assert.Equal(t, "info", cfg.LogLevel)
}

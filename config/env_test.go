package config

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RUNPOD_MODE", "dev")
	t.Setenv("RUNPOD_API_KEY", "secret-key")

	env, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "dev", env.Mode)
	assert.Equal(t, "secret-key", env.APIKey)
	assert.Equal(t, "7wuje5a92wlzwd", env.EndpointID)
	assert.Equal(t, "https://api.runpod.ai/v2", env.APIAddr)
	assert.Equal(t, "ultra_fast_fluxdev.yaml", env.ConfigPath)
	assert.Equal(t, "test_input.json", env.InputPath)
	assert.True(t, env.WaitForCompletion)
	assert.Equal(t, 4096*time.Second, env.Timeout())
	assert.Equal(t, 5*time.Second, env.PollInterval())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RUNPOD_MODE", "prod")
	t.Setenv("RUNPOD_ENDPOINT_ID", "abc123")
	t.Setenv("RUNPOD_TIMEOUT_SEC", "0")
	t.Setenv("RUNPOD_WAIT_FOR_COMPLETION", "false")
	t.Setenv("RUNPOD_DATASET_URL", "https://example.com/data.zip")

	env, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "prod", env.Mode)
	assert.Equal(t, "abc123", env.EndpointID)
	assert.Equal(t, time.Duration(0), env.Timeout())
	assert.False(t, env.WaitForCompletion)
	assert.Equal(t, "https://example.com/data.zip", env.DatasetURL)
}

func TestLoadRejectsZeroPollInterval(t *testing.T) {
	t.Setenv("RUNPOD_MODE", "dev")
	t.Setenv("RUNPOD_POLL_INTERVAL_SEC", "0")

	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RUNPOD_POLL_INTERVAL_SEC")
}

func TestLoadEnvFile(t *testing.T) {
	// an empty mode makes Load consult the file
	t.Setenv("RUNPOD_MODE", "")
	envFile := path.Join(t.TempDir(), "test.env")
	err := os.WriteFile(envFile, []byte("RUNPOD_ENDPOINT_ID=fromfile\n"), 0644)
	assert.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("RUNPOD_ENDPOINT_ID")
	})

	env, err := Load(envFile)
	assert.NoError(t, err)
	assert.Equal(t, "fromfile", env.EndpointID)
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Setenv("RUNPOD_MODE", "")
	_, err := Load(path.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestEnvironmentStringMasksKey(t *testing.T) {
	env := Environment{Mode: "dev", APIKey: "rpa_ABCDEFGHIJKLMNOP"}
	s := env.String()
	assert.Contains(t, s, "rpa_********")
	assert.NotContains(t, s, "ABCDEFGHIJKLMNOP")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(ModeDev)
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger(ModeProd)
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("staging")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{orig[0]}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8000", cfg.EndpointAddrHTTP)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, time.Hour, cfg.RecoveryTokenValidityDuration)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendBaseURL)
	assert.Empty(t, cfg.SecretKey, "secret must have no default")
}

func TestLoadConfig_FailsWithoutSecret(t *testing.T) {
	setArgs(t)

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	setArgs(t)
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ADDRESS", ":9090")
	t.Setenv("ACCESS_TOKEN_VALIDITY_DURATION", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	// untouched by env, stays at default
	assert.Equal(t, time.Hour, cfg.RecoveryTokenValidityDuration)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	body := `{
		"secret_key": "json-secret",
		"endpoint_addr_http": ":7070",
		"recovery_token_validity_duration": "2h"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	setArgs(t, "-c", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, 2*time.Hour, cfg.RecoveryTokenValidityDuration)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestLoadConfig_FlagsTakePrecedence(t *testing.T) {
	setArgs(t, "-s", "flag-secret", "-a", ":6060", "-t", "10")
	t.Setenv("SECRET_KEY", "env-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "flag-secret", cfg.SecretKey)
	assert.Equal(t, ":6060", cfg.EndpointAddrHTTP)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestLoadConfig_BadJsonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	setArgs(t, "-c", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}

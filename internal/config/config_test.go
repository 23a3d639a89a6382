package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguahub/internal/store"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, store.PolicyReplace, cfg.Server.SessionPolicy)
	assert.Equal(t, 10*time.Second, cfg.Client.CallTimeout)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("LINGUAHUB_PORT", "9090")
	t.Setenv("LINGUAHUB_IDLE_TIMEOUT", "2m")
	t.Setenv("LINGUAHUB_SESSION_POLICY", "reject")
	t.Setenv("LINGUAHUB_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, store.PolicyReject, cfg.Server.SessionPolicy)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Garbage values keep the previous setting.
	t.Setenv("LINGUAHUB_PORT", "not-a-port")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestFileOverridesEnv(t *testing.T) {
	t.Setenv("LINGUAHUB_PORT", "9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  idle_timeout: 1m
logging:
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Settings the file omits keep their env/default values.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [not a map"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Server.Host = "" }},
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"idle timeout", func(c *Config) { c.Server.IdleTimeout = 0 }},
		{"sweep interval", func(c *Config) { c.Server.SweepInterval = -time.Second }},
		{"write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }},
		{"session policy", func(c *Config) { c.Server.SessionPolicy = "sometimes" }},
		{"call timeout", func(c *Config) { c.Client.CallTimeout = 0 }},
		{"poll interval", func(c *Config) { c.Client.PollInterval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// Package config loads runtime settings with the precedence
// defaults < environment < file: a config file, when given, wins over
// everything, and LINGUAHUB_* environment variables win over built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"linguahub/internal/store"
)

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Client  ClientConfig  `yaml:"client"`
}

// ServerConfig controls the TCP listener and connection lifecycle.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// IdleTimeout is how long a connection may stay silent before the
	// sweep closes it.
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`

	// SessionPolicy is "replace" or "reject" for concurrent logins of
	// the same user.
	SessionPolicy store.SessionPolicy `yaml:"session_policy"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClientConfig controls the client transport used by the CLI.
type ClientConfig struct {
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			IdleTimeout:   300 * time.Second,
			SweepInterval: 30 * time.Second,
			WriteTimeout:  10 * time.Second,
			SessionPolicy: store.PolicyReplace,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Client: ClientConfig{
			DialTimeout:  5 * time.Second,
			CallTimeout:  10 * time.Second,
			PollInterval: 50 * time.Millisecond,
		},
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	// Port 0 asks the OS for an ephemeral port.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 0 and 65535")
	}
	if c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server idle timeout must be positive")
	}
	if c.Server.SweepInterval <= 0 {
		return fmt.Errorf("server sweep interval must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if !c.Server.SessionPolicy.Valid() {
		return fmt.Errorf("server session policy must be %q or %q",
			store.PolicyReplace, store.PolicyReject)
	}
	if c.Client.DialTimeout <= 0 {
		return fmt.Errorf("client dial timeout must be positive")
	}
	if c.Client.CallTimeout <= 0 {
		return fmt.Errorf("client call timeout must be positive")
	}
	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("client poll interval must be positive")
	}
	return nil
}

// applyEnv overlays LINGUAHUB_* environment variables. Unparsable
// values are ignored and the previous value kept.
func (c *Config) applyEnv() {
	if host := os.Getenv("LINGUAHUB_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("LINGUAHUB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LINGUAHUB_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.IdleTimeout = d
		}
	}
	if v := os.Getenv("LINGUAHUB_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.SweepInterval = d
		}
	}
	if v := os.Getenv("LINGUAHUB_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("LINGUAHUB_SESSION_POLICY"); v != "" {
		c.Server.SessionPolicy = store.SessionPolicy(v)
	}
	if v := os.Getenv("LINGUAHUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LINGUAHUB_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// LoadFile reads a YAML config file over the given base configuration.
func LoadFile(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Load builds the effective configuration. path may be empty, in which
// case only defaults and environment apply. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.applyEnv()

	if path != "" {
		loaded, err := LoadFile(cfg, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

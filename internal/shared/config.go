package shared

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type AgentConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Checks   ChecksConfig   `yaml:"checks"`
	Transmit TransmitConfig `yaml:"transmit"`
	StateDir string         `yaml:"state_dir"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	URL string `yaml:"url"`
}

type ChecksConfig struct {
	IntervalSec int `yaml:"interval_sec"`
	// MaxReportIntervalSec forces a report even with no changes, so the
	// server never goes longer than this without hearing from a machine.
	MaxReportIntervalSec int `yaml:"max_report_interval_sec"`
}

type TransmitConfig struct {
	TimeoutSec    int `yaml:"timeout_sec"`
	MaxAttempts   int `yaml:"max_attempts"`
	BackoffBaseMS int `yaml:"backoff_base_ms"`
	BackoffMaxMS  int `yaml:"backoff_max_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultStateDir() string {
	if runtime.GOOS == "windows" {
		if base := os.Getenv("ProgramData"); base != "" {
			return filepath.Join(base, "Healthwatch")
		}
		return `C:\ProgramData\Healthwatch`
	}
	return "/var/lib/healthwatch"
}

func DefaultAgentConfig() *AgentConfig {
	return &AgentConfig{
		Server: ServerConfig{URL: "http://127.0.0.1:8085"},
		Checks: ChecksConfig{
			IntervalSec:          900,
			MaxReportIntervalSec: 4 * 3600,
		},
		Transmit: TransmitConfig{
			TimeoutSec:    10,
			MaxAttempts:   5,
			BackoffBaseMS: 500,
			BackoffMaxMS:  30000,
		},
		StateDir: DefaultStateDir(),
		Logging:  LoggingConfig{Level: "info"},
	}
}

// LoadAgentConfig reads the YAML config at path, fills defaults for unset
// fields and applies HW_SERVER_URL as an env override. A missing file yields
// the defaults.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	c := DefaultAgentConfig()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// run on defaults
	default:
		return nil, err
	}

	if url := os.Getenv("HW_SERVER_URL"); url != "" {
		c.Server.URL = url
	}

	if c.Checks.IntervalSec <= 0 {
		c.Checks.IntervalSec = 900
	}
	if c.Checks.MaxReportIntervalSec <= 0 {
		c.Checks.MaxReportIntervalSec = 4 * 3600
	}
	if c.Transmit.TimeoutSec <= 0 {
		c.Transmit.TimeoutSec = 10
	}
	if c.Transmit.MaxAttempts <= 0 {
		c.Transmit.MaxAttempts = 5
	}
	if c.Transmit.BackoffBaseMS <= 0 {
		c.Transmit.BackoffBaseMS = 500
	}
	if c.Transmit.BackoffMaxMS < c.Transmit.BackoffBaseMS {
		c.Transmit.BackoffMaxMS = 30000
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	return c, nil
}

// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Environment wins over file, file wins over
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every operator-tunable knob of the trace service.
type Config struct {
	// Input limits, enforced before a session is admitted.
	MaxQASMSizeBytes int `yaml:"max_qasm_size_bytes" env:"XQSIM_MAX_QASM_SIZE_BYTES"`
	MaxQASMQubits    int `yaml:"max_qasm_qubits" env:"XQSIM_MAX_QASM_QUBITS"`
	MaxQASMGates     int `yaml:"max_qasm_gates" env:"XQSIM_MAX_QASM_GATES"`

	// Simulation bounds.
	MaxCycles       uint64        `yaml:"max_cycles" env:"XQSIM_MAX_CYCLES"`
	StabilityWindow uint64        `yaml:"stability_window" env:"XQSIM_STABILITY_WINDOW"`
	TraceTimeout    time.Duration `yaml:"trace_timeout" env:"XQSIM_TRACE_TIMEOUT"`

	// Simulator configuration preset passed through to the backend.
	SimConfig string `yaml:"sim_config" env:"XQSIM_SIM_CONFIG"`

	// Serve mode.
	ListenAddr string `yaml:"listen_addr" env:"XQSIM_LISTEN_ADDR"`
	RedisAddr  string `yaml:"redis_addr" env:"XQSIM_REDIS_ADDR"`

	// Logging.
	LogLevel string `yaml:"log_level" env:"XQSIM_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"XQSIM_LOG_JSON"`

	// Workdir root for session artifacts; empty means the system temp dir.
	WorkdirRoot string `yaml:"workdir_root" env:"XQSIM_WORKDIR_ROOT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxQASMSizeBytes: 1 << 20,
		MaxQASMQubits:    16,
		MaxQASMGates:     10000,
		MaxCycles:        10_000_000,
		StabilityWindow:  10,
		TraceTimeout:     10 * time.Minute,
		SimConfig:        "example_cmos",
		ListenAddr:       ":8080",
		LogLevel:         "info",
	}
}

// Load builds the effective configuration. path may be empty or point to a
// missing file; both mean "no file, environment and defaults only". Fields
// carry no envDefault tags on purpose: an unset variable must leave the file
// value alone, and env.Parse only writes fields whose variable is set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.MaxQASMSizeBytes <= 0 {
		return fmt.Errorf("max_qasm_size_bytes must be positive, got %d", c.MaxQASMSizeBytes)
	}
	if c.MaxQASMQubits <= 0 {
		return fmt.Errorf("max_qasm_qubits must be positive, got %d", c.MaxQASMQubits)
	}
	if c.MaxQASMGates <= 0 {
		return fmt.Errorf("max_qasm_gates must be positive, got %d", c.MaxQASMGates)
	}
	if c.MaxCycles == 0 {
		return fmt.Errorf("max_cycles must be positive")
	}
	if c.StabilityWindow == 0 {
		return fmt.Errorf("stability_window must be positive")
	}
	if c.TraceTimeout <= 0 {
		return fmt.Errorf("trace_timeout must be positive, got %s", c.TraceTimeout)
	}
	return nil
}

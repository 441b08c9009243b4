// Package config loads the optional YAML file describing the target
// service and the suite's tunables. Anything not set in the file keeps a
// default that matches the playground's stock deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Value() time.Duration { return time.Duration(d) }

// SuiteConfig is the harness configuration.
type SuiteConfig struct {
	// ServiceURL is the playground's base URL. The -url command line flag
	// overrides it.
	ServiceURL string `yaml:"serviceUrl"`

	// CourseID is the course the lifecycle and terminal scenarios run
	// against.
	CourseID string `yaml:"courseId"`

	// ConflictPort is the host port whose conflict bookkeeping the port
	// scenarios probe.
	ConflictPort int `yaml:"conflictPort"`

	ConnectTimeout Duration `yaml:"connectTimeout"`
	CommandTimeout Duration `yaml:"commandTimeout"`
	ReadyTimeout   Duration `yaml:"readyTimeout"`

	// ResponseTimeSamples is how many samples the latency scenario takes.
	ResponseTimeSamples int `yaml:"responseTimeSamples"`

	// ConcurrentWorkers is the fan-out width for the concurrency scenarios.
	ConcurrentWorkers int `yaml:"concurrentWorkers"`
}

// Default returns the configuration used when no file is given.
func Default() SuiteConfig {
	return SuiteConfig{
		CourseID:            "sql",
		ConflictPort:        26257,
		ConnectTimeout:      Duration(10 * time.Second),
		CommandTimeout:      Duration(10 * time.Second),
		ReadyTimeout:        Duration(60 * time.Second),
		ResponseTimeSamples: 5,
		ConcurrentWorkers:   5,
	}
}

// Load reads a YAML suite configuration, filling unset fields from
// Default.
func Load(path string) (SuiteConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c SuiteConfig) validate() error {
	if c.CourseID == "" {
		return fmt.Errorf("courseId must not be empty")
	}
	if c.ConflictPort < 1 || c.ConflictPort > 65535 {
		return fmt.Errorf("conflictPort %d is out of range", c.ConflictPort)
	}
	if c.ConcurrentWorkers < 1 {
		return fmt.Errorf("concurrentWorkers must be at least 1")
	}
	return nil
}

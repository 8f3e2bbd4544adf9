// Package config loads simulation settings from a YAML file with
// environment-variable overrides for the deployment-specific bits.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a simulation run.
type Config struct {
	// Model shape.
	Agents     int    `yaml:"agents"`
	GridWidth  int    `yaml:"grid_width"`
	GridHeight int    `yaml:"grid_height"`
	Torus      bool   `yaml:"torus"`
	Seed       int64  `yaml:"seed"` // 0 = draw a fresh seed at boot
	Placement  string `yaml:"placement"`
	Backing    string `yaml:"grid_backing"`

	// Loop pacing and lifecycle.
	TickIntervalMs int    `yaml:"tick_interval_ms"`
	MaxTicks       uint64 `yaml:"max_ticks"` // 0 = run until stopped
	SaveEveryTicks uint64 `yaml:"save_every_ticks"`

	// Storage and serving.
	DBPath      string `yaml:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
	APIPort     int    `yaml:"api_port"`
	LogLevel    string `yaml:"log_level"`

	Env Env `yaml:"-"`
}

// Env holds deployment secrets and overrides sourced from the environment,
// never from the config file.
type Env struct {
	AdminKey    string `env:"WEALTHSIM_ADMIN_KEY"`
	CORSOrigins string `env:"CORS_ORIGINS"`
	APIPort     int    `env:"WEALTHSIM_PORT"`
	DBPath      string `env:"WEALTHSIM_DB"`
}

// Default returns the configuration used when no file is present: the
// classic 10×10 torus with 100 agents.
func Default() Config {
	return Config{
		Agents:         100,
		GridWidth:      10,
		GridHeight:     10,
		Torus:          true,
		Placement:      "uniform",
		Backing:        "dense",
		TickIntervalMs: 100,
		SaveEveryTicks: 500,
		DBPath:         "data/wealthsim.db",
		SnapshotDir:    "data/snapshots",
		APIPort:        8080,
		LogLevel:       "info",
	}
}

// Load reads the YAML file at path (missing file = defaults), then applies
// environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine — defaults plus env.
	case err != nil:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg.Env); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}
	if cfg.Env.APIPort != 0 {
		cfg.APIPort = cfg.Env.APIPort
	}
	if cfg.Env.DBPath != "" {
		cfg.DBPath = cfg.Env.DBPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the model constructor would refuse anyway,
// plus serving nonsense, before any state is touched.
func (c Config) Validate() error {
	if c.Agents < 1 {
		return fmt.Errorf("config: agents must be >= 1, got %d", c.Agents)
	}
	if c.Agents > 100000 {
		return fmt.Errorf("config: agents capped at 100000, got %d", c.Agents)
	}
	if c.GridWidth < 1 || c.GridHeight < 1 {
		return fmt.Errorf("config: grid must be at least 1x1, got %dx%d", c.GridWidth, c.GridHeight)
	}
	switch c.Placement {
	case "uniform", "clustered":
	default:
		return fmt.Errorf("config: placement must be uniform or clustered, got %q", c.Placement)
	}
	switch c.Backing {
	case "dense", "sparse":
	default:
		return fmt.Errorf("config: grid_backing must be dense or sparse, got %q", c.Backing)
	}
	if c.TickIntervalMs < 1 {
		return fmt.Errorf("config: tick_interval_ms must be >= 1, got %d", c.TickIntervalMs)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("config: api_port out of range: %d", c.APIPort)
	}
	return nil
}

// TickInterval returns the base tick pacing as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration.
type Config struct {
	DBPath   string        `env:"DAGATNA_DB"`
	LogLevel string        `env:"DAGATNA_LOG_LEVEL" envDefault:"info"`
	LogFile  string        `env:"DAGATNA_LOG_FILE"`
	Cooldown time.Duration `env:"DAGATNA_COOLDOWN" envDefault:"0s"`
	// Seed fixes the item generator. Zero draws a fresh seed per session.
	Seed   uint64 `env:"DAGATNA_SEED"`
	Engine EngineConfig
}

// EngineConfig holds the tunable session knobs. Tables such as trash
// categories and reward tiers are not configurable.
type EngineConfig struct {
	Duration      time.Duration `env:"DAGATNA_SESSION_DURATION" envDefault:"60s"`
	PollInterval  time.Duration `env:"DAGATNA_POLL_INTERVAL" envDefault:"100ms"`
	SpawnInterval time.Duration `env:"DAGATNA_SPAWN_INTERVAL" envDefault:"2s"`
	SweepInterval time.Duration `env:"DAGATNA_SWEEP_INTERVAL" envDefault:"500ms"`
	SpawnCap      int           `env:"DAGATNA_SPAWN_CAP" envDefault:"15"`
	InitialItems  int           `env:"DAGATNA_INITIAL_ITEMS" envDefault:"12"`
	RewardCap     int           `env:"DAGATNA_REWARD_CAP" envDefault:"10"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environ. A nil map reads the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".dagatna", "dagatna.db")
	}
	return cfg, nil
}

// Cleanup builds a validated engine configuration.
func (e EngineConfig) Cleanup() (cleanup.Config, error) {
	cfg := cleanup.DefaultConfig()
	cfg.Duration = e.Duration
	cfg.PollInterval = e.PollInterval
	cfg.SpawnInterval = e.SpawnInterval
	cfg.SweepInterval = e.SweepInterval
	cfg.SpawnCap = e.SpawnCap
	cfg.InitialItems = e.InitialItems
	cfg.RewardCap = e.RewardCap
	if err := cfg.Validate(); err != nil {
		return cleanup.Config{}, err
	}
	return cfg, nil
}

// File: control/fileconfig.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Startup configuration loaded from YAML. Missing file or fields fall
// back to the scheduler defaults.

package control

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors printipi.yaml.
type Config struct {
	BufferSize int `yaml:"buffer_size"`  // 512 (by default)
	RTPriority int `yaml:"rt_priority"`  // 30 (by default)
	IdleWaitMS int `yaml:"idle_wait_ms"` // 100 (by default)
	ExitLevels int `yaml:"exit_levels"`  // 2 (by default)
}

func defaultConfig() Config {
	return Config{
		BufferSize: 512,
		RTPriority: 30,
		IdleWaitMS: 100,
		ExitLevels: 2,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 512
	}
	if cfg.RTPriority <= 0 || cfg.RTPriority > 99 {
		cfg.RTPriority = 30
	}
	if cfg.IdleWaitMS <= 0 {
		cfg.IdleWaitMS = 100
	}
	if cfg.ExitLevels <= 0 {
		cfg.ExitLevels = 2
	}

	return cfg
}

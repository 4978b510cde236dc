// Package config resolves run settings from defaults, SPLITDUMP_*
// environment variables, and command-line flags, in ascending
// precedence.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every knob a split run needs.
type Config struct {
	Output        string `mapstructure:"output"`
	Database      string `mapstructure:"database"`
	Table         string `mapstructure:"table"`
	Force         bool   `mapstructure:"force"`
	StructureOnly bool   `mapstructure:"structure_only"`
	Preamble      string `mapstructure:"preamble"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	Summary       string `mapstructure:"summary"`
	Verbose       bool   `mapstructure:"verbose"`
	LogDir        string `mapstructure:"log_dir"`
}

var defaults = map[string]any{
	"output":         "dump.sql",
	"database":       "dump",
	"table":          "",
	"force":          false,
	"structure_only": false,
	"preamble":       "",
	"chunk_size":     10000,
	"summary":        "",
	"verbose":        false,
	"log_dir":        "",
}

// flagKeys maps viper keys to the flag names bound over them.
var flagKeys = map[string]string{
	"output":         "output",
	"database":       "database",
	"table":          "table",
	"force":          "force",
	"structure_only": "structure-only",
	"preamble":       "preamble",
	"chunk_size":     "chunk-size",
	"summary":        "summary",
	"verbose":        "verbose",
	"log_dir":        "log-dir",
}

// Load builds a Config from defaults, environment, and the given flag
// set. Flags win over environment, environment over defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix("SPLITDUMP")
	v.AutomaticEnv()

	for key, name := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database label must not be empty")
	}
	return cfg, nil
}

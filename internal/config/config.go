// Package config loads engine settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config carries every tunable of the engine. Flags on the binary override
// individual fields after loading.
type Config struct {
	LogLevel string `env:"DEID_LOG_LEVEL" envDefault:"info"`

	// KeyFile is the on-disk encryption key. KeyBase64, when set, takes
	// precedence and keeps the key out of the filesystem entirely.
	KeyFile   string `env:"DEID_KEY_FILE" envDefault:"encryption.key"`
	KeyBase64 string `env:"DEID_ENCRYPTION_KEY"`

	// PseudonymMode selects "fpe" (stateless cipher) or "mapper" (stateful
	// assignment table).
	PseudonymMode string `env:"DEID_PSEUDONYM_MODE" envDefault:"fpe"`
	MappingFile   string `env:"DEID_MAPPING_FILE"`

	Workers   int  `env:"DEID_WORKERS" envDefault:"8"`
	ChunkSize int  `env:"DEID_CHUNK_SIZE" envDefault:"100"`
	DebugPNG  bool `env:"DEID_DEBUG_PNG" envDefault:"false"`
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}
	if cfg.PseudonymMode != "fpe" && cfg.PseudonymMode != "mapper" {
		return nil, fmt.Errorf("unknown pseudonym mode %q", cfg.PseudonymMode)
	}
	return cfg, nil
}

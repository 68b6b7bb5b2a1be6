package config

import (
	"os"

	"github.com/naoina/toml"
)

// fileConfig is the on-disk shape; a [Sealer] table wrapping Config so
// the same file can later grow sibling tables (engine, network, ...)
// without touching this package, in the same top-level-table-per-
// component config.toml layout cmd/geth uses.
type fileConfig struct {
	Sealer Config
}

// LoadFile reads and validates a TOML config file at path, returning the
// embedded [Sealer] table. Construction-time validation failures are
// returned as errors, never panics.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := fileConfig{Sealer: DefaultConfig}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Sealer.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.Sealer, nil
}

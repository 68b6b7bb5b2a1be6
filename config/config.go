// Package config holds the sealer's externally tunable knobs and the
// file-loading plumbing around them, in the same config.toml idiom
// cmd/geth uses with naoina/toml.
package config

import "fmt"

// Config is the sealer's recognized configuration set.
type Config struct {
	// EnableDynamicBlockSize is the master switch; when false the
	// AdmissionController is bypassed and the cap tracks the engine
	// ceiling exactly.
	EnableDynamicBlockSize bool

	// BlockSizeIncreaseRatio is the fractional growth applied to
	// maxBlockCanSeal on each qualifying clean commit, in (0, 1].
	BlockSizeIncreaseRatio float64
}

// DefaultConfig mirrors the ratio the original PBFTSealer ships with.
var DefaultConfig = Config{
	EnableDynamicBlockSize: true,
	BlockSizeIncreaseRatio: 0.1,
}

// Validate rejects out-of-range configuration at construction time;
// bad configuration is fatal at startup, never silently clamped.
func (c Config) Validate() error {
	if c.BlockSizeIncreaseRatio <= 0 || c.BlockSizeIncreaseRatio > 1 {
		return fmt.Errorf("config: BlockSizeIncreaseRatio must be in (0, 1], got %v", c.BlockSizeIncreaseRatio)
	}
	return nil
}

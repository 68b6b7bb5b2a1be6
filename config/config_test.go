package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsOutOfRangeRatio(t *testing.T) {
	cases := []float64{0, -0.1, 1.0001, 2}
	for _, ratio := range cases {
		c := Config{EnableDynamicBlockSize: true, BlockSizeIncreaseRatio: ratio}
		require.Error(t, c.Validate(), "ratio %v should be rejected", ratio)
	}
}

func TestValidateAcceptsBoundaryRatios(t *testing.T) {
	for _, ratio := range []float64{0.0001, 0.1, 1.0} {
		c := Config{BlockSizeIncreaseRatio: ratio}
		require.NoError(t, c.Validate())
	}
}

func TestLoadFileParsesSealerTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[Sealer]\nEnableDynamicBlockSize = false\nBlockSizeIncreaseRatio = 0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.False(t, cfg.EnableDynamicBlockSize)
	require.Equal(t, 0.25, cfg.BlockSizeIncreaseRatio)
}

func TestLoadFileRejectsInvalidRatio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "[Sealer]\nBlockSizeIncreaseRatio = 0\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finsim.yaml")

	cfg := Default()
	cfg.Simulation.StartCash = 50000
	cfg.Credit.StartingScore = 720
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefault_BracketTableIsCanonical(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Tax.Brackets, 3)
	assert.Equal(t, 0.10, cfg.Tax.Brackets[0].Rate)
	assert.Equal(t, 10000.0, cfg.Tax.Brackets[1].Lower)
	assert.Equal(t, 0.0, cfg.Tax.Brackets[2].Upper, "top bracket is unbounded")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

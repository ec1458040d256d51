package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 2, cfg.Index.MinTermLength)
	assert.False(t, cfg.Index.Stemming)
	assert.Equal(t, 2, cfg.Search.MaxFuzzyDistance)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, "mark", cfg.Search.HighlightTag)
	assert.Equal(t, 50, cfg.History.Capacity)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
dataDir: /tmp/sift-test
index:
  minTermLength: 3
  stemming: true
  extraStopWords: [lol, brb]
search:
  maxFuzzyDistance: 1
  defaultLimit: 10
history:
  capacity: 5
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sift-test", cfg.DataDir)
	assert.Equal(t, 3, cfg.Index.MinTermLength)
	assert.True(t, cfg.Index.Stemming)
	assert.Equal(t, []string{"lol", "brb"}, cfg.Index.ExtraStopWords)
	assert.Equal(t, 1, cfg.Search.MaxFuzzyDistance)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 5, cfg.History.Capacity)

	// Unset fields keep their defaults.
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, "mark", cfg.Search.HighlightTag)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeClampsValues(t *testing.T) {
	cfg := Config{
		Search: SearchConfig{
			MaxFuzzyDistance: -1,
			DefaultLimit:     500,
			MaxLimit:         100,
		},
	}
	cfg.Normalize()

	assert.Equal(t, 2, cfg.Search.MaxFuzzyDistance)
	assert.Equal(t, 100, cfg.Search.DefaultLimit, "default limit may not exceed the max")
	assert.Equal(t, 2, cfg.Index.MinTermLength)
	assert.Equal(t, 50, cfg.History.Capacity)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestDataPaths(t *testing.T) {
	cfg := Config{DataDir: "/data/sift"}

	assert.Equal(t, filepath.Join("/data/sift", "messages.db"), cfg.MessageDBPath())
	assert.Equal(t, filepath.Join("/data/sift", "index.db"), cfg.SnapshotDBPath())
}

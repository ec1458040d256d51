// Package config loads engine configuration from a YAML file, falling back
// to sensible defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// DataDir holds the sqlite message corpus and the index snapshot.
	DataDir string        `yaml:"dataDir"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	History HistoryConfig `yaml:"history"`
}

// IndexConfig controls tokenization.
type IndexConfig struct {
	MinTermLength  int      `yaml:"minTermLength"`
	Stemming       bool     `yaml:"stemming"`
	ExtraStopWords []string `yaml:"extraStopWords"`
}

// SearchConfig controls query behavior.
type SearchConfig struct {
	// MaxFuzzyDistance bounds the edit distance for typo-tolerant matching.
	MaxFuzzyDistance int `yaml:"maxFuzzyDistance"`
	DefaultLimit     int `yaml:"defaultLimit"`
	MaxLimit         int `yaml:"maxLimit"`
	// HighlightTag wraps matched terms in results, e.g. "mark" yields
	// <mark>...</mark>.
	HighlightTag string `yaml:"highlightTag"`
	// FuzzyCacheSize bounds the LRU cache of fuzzy candidate scans.
	FuzzyCacheSize int `yaml:"fuzzyCacheSize"`
}

// HistoryConfig controls the query history store.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Index: IndexConfig{
			MinTermLength: 2,
		},
		Search: SearchConfig{
			MaxFuzzyDistance: 2,
			DefaultLimit:     20,
			MaxLimit:         100,
			HighlightTag:     "mark",
			FuzzyCacheSize:   256,
		},
		History: HistoryConfig{
			Capacity: 50,
		},
	}
}

// Load reads a YAML file over the defaults. Unset fields keep their default
// values; out-of-range values are clamped by Normalize.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps nonsensical values back to defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Index.MinTermLength <= 0 {
		c.Index.MinTermLength = def.Index.MinTermLength
	}
	if c.Search.MaxFuzzyDistance < 0 {
		c.Search.MaxFuzzyDistance = def.Search.MaxFuzzyDistance
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = def.Search.DefaultLimit
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = def.Search.MaxLimit
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		c.Search.DefaultLimit = c.Search.MaxLimit
	}
	if c.Search.HighlightTag == "" {
		c.Search.HighlightTag = def.Search.HighlightTag
	}
	if c.Search.FuzzyCacheSize <= 0 {
		c.Search.FuzzyCacheSize = def.Search.FuzzyCacheSize
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = def.History.Capacity
	}
}

// MessageDBPath is the sqlite corpus location under DataDir.
func (c Config) MessageDBPath() string {
	return filepath.Join(c.DataDir, "messages.db")
}

// SnapshotDBPath is the buntdb index snapshot location under DataDir.
func (c Config) SnapshotDBPath() string {
	return filepath.Join(c.DataDir, "index.db")
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".sift"
	}
	return filepath.Join(home, ".sift")
}

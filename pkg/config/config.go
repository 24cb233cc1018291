// Package config provides the configuration for the skybench tool.
// Configuration is organized into sections for the benchmark matrix,
// dataset fetching and logging, with defaults that work without any
// config file.
package config

import (
	"time"

	"github.com/skybench/skybench/pkg/errors"
)

// Config is the top-level tool configuration.
type Config struct {
	// DataDir is where scratch benchmark files and downloads live
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// ResultsDir is where benchmark reports are written
	ResultsDir string `yaml:"results_dir" json:"results_dir"`

	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Bench configures the benchmark matrix
	Bench BenchConfig `yaml:"bench" json:"bench"`

	// Fetch configures dataset downloads
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`
}

// BenchConfig configures the benchmark matrix.
type BenchConfig struct {
	// Sizes are the synthetic problem sizes, in rows
	Sizes []int `yaml:"sizes" json:"sizes"`
	// Iterations is how many times each measurement repeats; the
	// fastest run is kept
	Iterations int `yaml:"iterations" json:"iterations"`
	// Seed drives the synthetic catalog generator
	Seed int64 `yaml:"seed" json:"seed"`
	// Formats restricts the benchmarked formats (default: all)
	Formats []string `yaml:"formats" json:"formats"`
	// Compression applies to the delimited-text format (none, gzip,
	// zstd, s2, lz4)
	Compression string `yaml:"compression" json:"compression"`
}

// FetchConfig configures dataset downloads.
type FetchConfig struct {
	// URL is the remote delimited-text dataset
	URL string `yaml:"url" json:"url"`
	// Timeout bounds a whole download
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// Force re-downloads even when a cached copy exists
	Force bool `yaml:"force" json:"force"`
	// UserAgent overrides the request User-Agent
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// Default returns a configuration with working defaults.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		ResultsDir: "results",
		LogLevel:   "info",
		Bench: BenchConfig{
			Sizes:       []int{1000, 10000, 100000},
			Iterations:  3,
			Seed:        42,
			Compression: "none",
		},
		Fetch: FetchConfig{
			URL:     "https://www.astronexus.com/downloads/catalogs/hygdata_v3.csv",
			Timeout: 2 * time.Minute,
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New(errors.ErrorTypeConfig, "data_dir is required")
	}
	if c.ResultsDir == "" {
		return errors.New(errors.ErrorTypeConfig, "results_dir is required")
	}
	if len(c.Bench.Sizes) == 0 {
		return errors.New(errors.ErrorTypeConfig, "bench.sizes must not be empty")
	}
	for _, n := range c.Bench.Sizes {
		if n <= 0 {
			return errors.Newf(errors.ErrorTypeConfig, "bench.sizes entry %d must be positive", n)
		}
	}
	if c.Bench.Iterations <= 0 {
		return errors.New(errors.ErrorTypeConfig, "bench.iterations must be positive")
	}
	if c.Fetch.Timeout < 0 {
		return errors.New(errors.ErrorTypeConfig, "fetch.timeout cannot be negative")
	}
	return nil
}

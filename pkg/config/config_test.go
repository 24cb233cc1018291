package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skybench/skybench/pkg/errors"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty data_dir":     func(c *Config) { c.DataDir = "" },
		"empty results_dir":  func(c *Config) { c.ResultsDir = "" },
		"no sizes":           func(c *Config) { c.Bench.Sizes = nil },
		"non-positive size":  func(c *Config) { c.Bench.Sizes = []int{1000, 0} },
		"zero iterations":    func(c *Config) { c.Bench.Iterations = 0 },
		"negative timeout":   func(c *Config) { c.Fetch.Timeout = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		err := cfg.Validate()
		require.Error(t, err, name)
		require.True(t, errors.IsType(err, errors.ErrorTypeConfig), name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skybench.yaml")

	cfg := Default()
	cfg.DataDir = "scratch"
	cfg.Bench.Sizes = []int{10, 20}
	cfg.Bench.Iterations = 5
	// Nil slices come back from YAML as empty ones, so the format
	// list is set explicitly for the whole-struct comparison.
	cfg.Bench.Formats = []string{"csv", "fits"}
	require.NoError(t, Save(path, cfg))

	var got Config
	require.NoError(t, Load(path, &got))
	require.Equal(t, *cfg, got)
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("SKYBENCH_TEST_DIR", "/tmp/skybench-data")

	dir := t.TempDir()
	path := filepath.Join(dir, "skybench.yaml")
	content := "data_dir: ${SKYBENCH_TEST_DIR}\nresults_dir: results\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var got Config
	require.NoError(t, Load(path, &got))
	require.Equal(t, "/tmp/skybench-data", got.DataDir)
}

func TestLoadMissingFile(t *testing.T) {
	var got Config
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &got)
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unterminated"), 0o644))

	var got Config
	err := Load(path, &got)
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

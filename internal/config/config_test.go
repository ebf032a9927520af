package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no config or env
// leaking in from the host.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, k := range []string{"DATA_DIR", "BACKEND", "SUFFIX", "LOG_LEVEL", "FORMAT"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		os.Unsetenv(EnvPrefix + "_" + k)
	}
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("dir", "d", "datos", "")
	fs.String("backend", "file", "")
	fs.String("suffix", ".txt", "")
	fs.String("log-level", "warn", "")
	fs.StringP("format", "f", "json", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(testFlags(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recordkeeper.yaml"),
		[]byte("data_dir: from-file\nbackend: sqlite\nsuffix: .json\n"), 0o644))
	t.Setenv("RECORDKEEPER_BACKEND", "file")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--suffix", ".rec"}))

	cfg, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DataDir)
	assert.Equal(t, BackendFile, cfg.Backend, "env beats file")
	assert.Equal(t, ".rec", cfg.Suffix, "flag beats file")
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("RECORDKEEPER_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RECORDKEEPER_LOG_LEVEL") })

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: YAML\n"), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format)

	_, err = Load(nil, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty data dir":  func(c *Config) { c.DataDir = " " },
		"unknown backend": func(c *Config) { c.Backend = "postgres" },
		"unknown format":  func(c *Config) { c.Format = "xml" },
		"suffix no dot":   func(c *Config) { c.Suffix = "txt" },
		"suffix only dot": func(c *Config) { c.Suffix = "." },
		"suffix with sep": func(c *Config) { c.Suffix = ".a/b" },
		"temp suffix":     func(c *Config) { c.Suffix = ".tmp" },
		"bad log level":   func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestDatabasePath(t *testing.T) {
	c := Default()
	assert.Equal(t, filepath.Join("datos", "records.db"), c.DatabasePath())
}

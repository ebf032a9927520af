// Package config loads recordkeeper settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rcliao/recordkeeper/internal/store"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	FormatJSON = "json"
	FormatText = "text"
	FormatYAML = "yaml"

	EnvPrefix = "RECORDKEEPER"
	fileName  = "recordkeeper"
)

type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	Backend  string `mapstructure:"backend"`
	Suffix   string `mapstructure:"suffix"`
	LogLevel string `mapstructure:"log_level"`
	Format   string `mapstructure:"format"`
}

func Default() *Config {
	return &Config{
		DataDir:  "datos",
		Backend:  BackendFile,
		Suffix:   ".txt",
		LogLevel: "warn",
		Format:   FormatJSON,
	}
}

// flagKeys maps config keys to the cobra flag names that override them.
var flagKeys = map[string]string{
	"data_dir":  "dir",
	"backend":   "backend",
	"suffix":    "suffix",
	"log_level": "log-level",
	"format":    "format",
}

// Load resolves the configuration. Precedence, highest first: flags that were
// set explicitly, RECORDKEEPER_* env vars (a .env file in the working
// directory is loaded into the environment first), the config file, defaults.
// A non-empty configFile is read as is; otherwise recordkeeper.yaml is
// searched for in the usual places and may be absent.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("backend", def.Backend)
	v.SetDefault("suffix", def.Suffix)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("format", def.Format)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, fileName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: invalid backend %q (must be file or sqlite)", c.Backend)
	}
	switch c.Format {
	case FormatJSON, FormatText, FormatYAML:
	default:
		return fmt.Errorf("config: invalid format %q (must be json, text, or yaml)", c.Format)
	}
	if len(c.Suffix) < 2 || !strings.HasPrefix(c.Suffix, ".") || strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("config: invalid suffix %q (must start with a dot)", c.Suffix)
	}
	if c.Suffix == store.TempSuffix {
		return fmt.Errorf("config: invalid suffix %q (reserved for temporary files)", c.Suffix)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// DatabasePath is where the sqlite backend keeps its records.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "records.db")
}

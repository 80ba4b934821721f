// Package config loads pengineer settings from defaults, an optional
// pengineer.yaml file and PENGINEER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. PENGINEER_DATA_DIR.
const EnvPrefix = "PENGINEER"

// Config holds pengineer settings. Keys match the YAML file and, upper-cased
// with the PENGINEER_ prefix, the environment.
type Config struct {
	DataDir   string `yaml:"data_dir" mapstructure:"data_dir"`
	ExportDir string `yaml:"export_dir" mapstructure:"export_dir"`
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns the settings used when neither a file nor the
// environment sets a key. DataDir follows XDG_DATA_HOME.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   defaultDataDir(),
		ExportDir: ".",
		LogLevel:  "info",
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pengineer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pengineer"
	}
	return filepath.Join(home, ".local", "share", "pengineer")
}

func configDirs() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "pengineer"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "pengineer"))
	}
	return dirs
}

// Load reads configuration. If path is non-empty that file must exist;
// otherwise pengineer.yaml is searched for in the working directory and
// the user config directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("export_dir", cfg.ExportDir)
	v.SetDefault("log_level", cfg.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pengineer")
		v.SetConfigType("yaml")
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log_level %q", s)
	}
	return level, nil
}

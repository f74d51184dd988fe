package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	mdwlog "github.com/msto63/rungc/foundation/core/log"
)

// EnvConfigPath names the environment variable pointing to a config file
const EnvConfigPath = "RUNGC_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Compiler CompilerConfig `toml:"compiler" yaml:"compiler"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
	Watch    WatchConfig    `toml:"watch" yaml:"watch"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
}

// CompilerConfig holds compiler defaults
type CompilerConfig struct {
	Output string `toml:"output" yaml:"output"`
}

// HistoryConfig holds compilation history settings
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Interval Duration `toml:"interval" yaml:"interval"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Compiler: CompilerConfig{
			Output: "Program.out",
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "./data/history.db",
			RetentionDays: 30,
		},
		Watch: WatchConfig{
			Interval: Duration{time.Second},
		},
	}
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path)
	}

	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, configError(err, "failed to read config", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, configError(err, "failed to parse config", path)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, configError(err, "failed to parse config", path)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve loads the first config found in explicit, $RUNGC_CONFIG and the
// default locations. Without any file the defaults are returned together
// with an empty path.
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		cfg, err := Load(env)
		return cfg, env, err
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}

	return Default(), "", nil
}

// DefaultPaths lists the locations searched for a config file
func DefaultPaths() []string {
	paths := []string{
		"./configs/rungc.toml",
		"./rungc.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rungc", "config.toml"))
	}
	return paths
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel)
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("general.log_format", c.General.LogFormat)
	}
	if c.History.RetentionDays < 0 {
		return invalid("history.retention_days", c.History.RetentionDays)
	}
	if c.Watch.Interval.Duration <= 0 {
		return invalid("watch.interval", c.Watch.Interval)
	}
	return nil
}

// Retention returns the history retention as a duration, 0 keeps everything
func (c *Config) Retention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}

// applyDefaults restores defaults for values set to empty in the file
func (c *Config) applyDefaults() {
	def := Default()

	if c.General.LogLevel == "" {
		c.General.LogLevel = def.General.LogLevel
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = def.General.LogFormat
	}
	if c.Compiler.Output == "" {
		c.Compiler.Output = def.Compiler.Output
	}
	if c.History.Path == "" {
		c.History.Path = def.History.Path
	}
	if c.Watch.Interval.Duration == 0 {
		c.Watch.Interval = def.Watch.Interval
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Compiler.Output = os.ExpandEnv(c.Compiler.Output)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

func configError(err error, message, path string) error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeConfigError).
		WithDetail("path", path)
}

func invalid(key string, value interface{}) error {
	return mdwerror.New(fmt.Sprintf("invalid value for %s: %v", key, value)).
		WithCode(mdwerror.CodeInvalidConfig).
		WithDetail("key", key)
}

// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	User     UserConfig     `toml:"user"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// ScheduleConfig holds the waking hours the scheduler places things in.
type ScheduleConfig struct {
	DayStart string `toml:"day_start"` // e.g., "06:30"
	DayEnd   string `toml:"day_end"`   // e.g., "23:00"
}

// UserConfig identifies whose calendar the CLI works on.
type UserConfig struct {
	Owner string `toml:"owner"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "openai", "lmstudio" or "ollama"
	Model    string `toml:"model"`    // e.g., "gpt-4o-mini"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:1234/v1"
	APIKey   string `toml:"-"`        // env only
	MaxSteps int    `toml:"max_steps"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // empty disables file logging
	Debug bool   `toml:"debug"` // also log to stderr
}

// Providers lists the supported LLM providers.
var Providers = []string{"openai", "lmstudio", "ollama"}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DayStart: "06:30",
			DayEnd:   "23:00",
		},
		User: UserConfig{
			Owner: "me",
		},
		LLM: LLMConfig{
			Provider: "lmstudio",
			Model:    "qwen2.5-7b-instruct",
			BaseURL:  "http://localhost:1234/v1",
			MaxSteps: 6,
		},
		Storage: StorageConfig{
			DBPath: defaultDataPath("lifecoach.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  defaultDataPath("lifecoach.log"),
		},
	}
}

// defaultDataPath returns a path under the user's data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "lifecoach", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "lifecoach", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFECOACH_DAY_START"); v != "" {
		cfg.Schedule.DayStart = v
	}
	if v := os.Getenv("LIFECOACH_DAY_END"); v != "" {
		cfg.Schedule.DayEnd = v
	}

	if v := os.Getenv("LIFECOACH_OWNER"); v != "" {
		cfg.User.Owner = v
	}

	if v := os.Getenv("LIFECOACH_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LIFECOACH_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LIFECOACH_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LIFECOACH_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LIFECOACH_LLM_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxSteps = n
		}
	}

	if v := os.Getenv("LIFECOACH_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("LIFECOACH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LIFECOACH_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("LIFECOACH_DEBUG"); v != "" {
		cfg.Log.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	start, err := validateTime(c.Schedule.DayStart, "day_start")
	if err != nil {
		return err
	}
	end, err := validateTime(c.Schedule.DayEnd, "day_end")
	if err != nil {
		return err
	}
	if start >= end {
		return errors.New("day_start must be before day_end")
	}

	if strings.TrimSpace(c.User.Owner) == "" {
		return errors.New("owner must be set")
	}

	if !slices.Contains(Providers, c.LLM.Provider) {
		return fmt.Errorf("invalid llm provider: %s (valid: %s)", c.LLM.Provider, strings.Join(Providers, ", "))
	}
	if c.LLM.MaxSteps < 1 {
		return errors.New("max_steps must be at least 1")
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// validateTime checks that a time string is in HH:MM format and returns it in minutes.
func validateTime(t, field string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	m, err := timeofday.Parse(t)
	if err != nil {
		return 0, fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return m, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Package config handles configuration loading and management for devteam.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// ProjectConfigName is the project-level config file searched upward from the working directory.
const ProjectConfigName = ".devteam.yaml"

// ErrUnknownKey is returned for settings that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

// Config holds all configuration for devteam.
type Config struct {
	Provider  Provider        `mapstructure:"provider"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
	Prompts   PromptsConfig   `mapstructure:"prompts"`
	Output    OutputConfig    `mapstructure:"output"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	UseBedrock     bool          `mapstructure:"use_bedrock"`
	AWSRegion      string        `mapstructure:"aws_region"`
	AWSProfile     string        `mapstructure:"aws_profile"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver string `mapstructure:"driver"`
	// Path overrides the database location. Empty uses the XDG data directory.
	Path string `mapstructure:"path"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File overrides the log file. Empty uses .devteam/logs/devteam.log in the project.
	File string `mapstructure:"file"`
}

// PromptsConfig points at a prompt override file.
type PromptsConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig holds artifact settings.
type OutputConfig struct {
	ArtifactName string `mapstructure:"artifact_name"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// defaults lists every known key with its built-in value.
var defaults = map[string]any{
	"provider":                  string(ProviderAnthropic),
	"anthropic.api_key":         "",
	"anthropic.model":           "claude-sonnet-4-20250514",
	"anthropic.use_bedrock":     false,
	"anthropic.aws_region":      "",
	"anthropic.aws_profile":     "",
	"anthropic.request_timeout": "2m",
	"gemini.api_key":            "",
	"gemini.model":              "gemini-2.0-flash",
	"history.enabled":           true,
	"history.driver":            "sqlite",
	"history.path":              "",
	"log.level":                 "info",
	"log.file":                  "",
	"prompts.path":              "",
	"output.artifact_name":      "devteam_ai_generated_code.jsx",
	"tui.refresh_rate":          "100ms",
}

// Keys returns every known config key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known config key.
func IsKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GEMINI_API_KEY, GOOGLE_API_KEY, DEVTEAM_*)
// 2. Project config (.devteam.yaml in current directory or parent)
// 3. User config (~/.config/devteam/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return LoadFrom(getUserConfigDir(), cwd)
}

// LoadFrom loads configuration using an explicit user config directory and a
// directory to start the project config search from.
func LoadFrom(userConfigDir, startDir string) (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(startDir); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Default returns a Config with default values.
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		panic(fmt.Sprintf("built-in config defaults are invalid: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("DEVTEAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider-native variables take precedence over DEVTEAM_* for keys.
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY", "DEVTEAM_ANTHROPIC_API_KEY")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY", "DEVTEAM_GEMINI_API_KEY")
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Gemini.APIKey = expandEnv(cfg.Gemini.APIKey)
	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("invalid provider %q: expected %q or %q", c.Provider, ProviderAnthropic, ProviderGemini)
	}
	switch c.History.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("invalid history.driver %q: expected \"sqlite\" or \"sqlite3\"", c.History.Driver)
	}
	if c.Output.ArtifactName == "" {
		return errors.New("output.artifact_name must not be empty")
	}
	if c.TUI.RefreshRate <= 0 {
		return fmt.Errorf("tui.refresh_rate must be positive, got %v", c.TUI.RefreshRate)
	}
	return nil
}

// Setting is one effective key/value pair for display.
type Setting struct {
	Key   string
	Value string
}

// Settings returns every effective setting in key order. API keys are masked.
func (c *Config) Settings() []Setting {
	values := map[string]string{
		"provider":                  string(c.Provider),
		"anthropic.api_key":         MaskAPIKey(c.Anthropic.APIKey),
		"anthropic.model":           c.Anthropic.Model,
		"anthropic.use_bedrock":     fmt.Sprint(c.Anthropic.UseBedrock),
		"anthropic.aws_region":      c.Anthropic.AWSRegion,
		"anthropic.aws_profile":     c.Anthropic.AWSProfile,
		"anthropic.request_timeout": c.Anthropic.RequestTimeout.String(),
		"gemini.api_key":            MaskAPIKey(c.Gemini.APIKey),
		"gemini.model":              c.Gemini.Model,
		"history.enabled":           fmt.Sprint(c.History.Enabled),
		"history.driver":            c.History.Driver,
		"history.path":              c.History.Path,
		"log.level":                 c.Log.Level,
		"log.file":                  c.Log.File,
		"prompts.path":              c.Prompts.Path,
		"output.artifact_name":      c.Output.ArtifactName,
		"tui.refresh_rate":          c.TUI.RefreshRate.String(),
	}

	settings := make([]Setting, 0, len(values))
	for _, key := range Keys() {
		settings = append(settings, Setting{Key: key, Value: values[key]})
	}
	return settings
}

// Lookup returns the display value of a single setting.
func (c *Config) Lookup(key string) (string, error) {
	for _, s := range c.Settings() {
		if s.Key == key {
			return s.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// SetUserValue writes one key to the user config file, keeping the other
// values already stored there.
func SetUserValue(key, value string) error {
	return setValue(getUserConfigDir(), key, value)
}

func setValue(userConfigDir, key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading user config: %w", err)
		}
	}

	v.Set(key, value)
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("writing user config: %w", err)
	}
	return os.Chmod(configPath, 0600)
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findProjectConfig(cwd)
}

// getUserConfigDir returns the XDG config directory for devteam.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "devteam")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "devteam")
	}
	return filepath.Join(home, ".config", "devteam")
}

// findProjectConfig searches for .devteam.yaml in dir and its parents.
func findProjectConfig(dir string) string {
	for {
		configPath := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

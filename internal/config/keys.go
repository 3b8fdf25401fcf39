package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured for the selected provider.
var ErrNoAPIKey = errors.New("no API key configured")

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv     KeySource = "environment"
	KeySourceConfig  KeySource = "config_file"
	KeySourceBedrock KeySource = "aws_bedrock"
	KeySourceNone    KeySource = "none"
)

// envKeys lists the environment variables checked per provider, in order.
var envKeys = map[Provider][]string{
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// GetAPIKey returns the API key for the configured provider.
// It checks in order: environment variable, config file.
// Bedrock needs no key and returns an empty key without error.
func GetAPIKey(cfg *Config) (string, KeySource, error) {
	if cfg == nil {
		return "", KeySourceNone, ErrNoAPIKey
	}
	if cfg.Provider == ProviderAnthropic && cfg.Anthropic.UseBedrock {
		return "", KeySourceBedrock, nil
	}

	for _, name := range envKeys[cfg.Provider] {
		if key := os.Getenv(name); key != "" {
			return key, KeySourceEnv, nil
		}
	}

	var configured string
	switch cfg.Provider {
	case ProviderAnthropic:
		configured = cfg.Anthropic.APIKey
	case ProviderGemini:
		configured = cfg.Gemini.APIKey
	}
	if configured != "" {
		// Expand any remaining env var references
		key := os.ExpandEnv(configured)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceConfig, nil
		}
	}

	return "", KeySourceNone, fmt.Errorf("%w for provider %s", ErrNoAPIKey, cfg.Provider)
}

// ValidateAPIKey performs basic format validation on a provider key.
// It does not verify the key with the provider.
func ValidateAPIKey(provider Provider, key string) error {
	if key == "" {
		return ErrNoAPIKey
	}

	switch provider {
	case ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return errors.New("invalid API key format: expected 'sk-ant-' prefix")
		}
	case ProviderGemini:
		if strings.ContainsAny(key, " \t\n") {
			return errors.New("invalid API key format: contains whitespace")
		}
	}

	// Keys should be reasonably long
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and the last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

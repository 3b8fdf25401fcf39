package config

import (
	"errors"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		cfg        *Config
		wantKey    string
		wantSource KeySource
		wantErr    bool
	}{
		{
			name:       "anthropic from environment variable",
			env:        map[string]string{"ANTHROPIC_API_KEY": "sk-ant-test-key"},
			cfg:        &Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}},
			wantKey:    "sk-ant-test-key",
			wantSource: KeySourceEnv,
		},
		{
			name:       "anthropic from config",
			cfg:        &Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-ant-config-key"}},
			wantKey:    "sk-ant-config-key",
			wantSource: KeySourceConfig,
		},
		{
			name:       "anthropic config reference expanded",
			env:        map[string]string{"MY_KEY": "sk-ant-from-ref"},
			cfg:        &Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "${MY_KEY}"}},
			wantKey:    "sk-ant-from-ref",
			wantSource: KeySourceConfig,
		},
		{
			name:       "bedrock needs no key",
			cfg:        &Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{UseBedrock: true}},
			wantSource: KeySourceBedrock,
		},
		{
			name:       "gemini falls back to GOOGLE_API_KEY",
			env:        map[string]string{"GOOGLE_API_KEY": "google-key"},
			cfg:        &Config{Provider: ProviderGemini},
			wantKey:    "google-key",
			wantSource: KeySourceEnv,
		},
		{
			name:       "gemini prefers GEMINI_API_KEY",
			env:        map[string]string{"GEMINI_API_KEY": "gemini-key", "GOOGLE_API_KEY": "google-key"},
			cfg:        &Config{Provider: ProviderGemini},
			wantKey:    "gemini-key",
			wantSource: KeySourceEnv,
		},
		{
			name:       "no key configured",
			cfg:        &Config{Provider: ProviderGemini},
			wantSource: KeySourceNone,
			wantErr:    true,
		},
		{
			name:       "nil config",
			wantSource: KeySourceNone,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
				t.Setenv(name, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			key, source, err := GetAPIKey(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNoAPIKey) {
				t.Errorf("expected ErrNoAPIKey, got %v", err)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if source != tt.wantSource {
				t.Errorf("source = %v, want %v", source, tt.wantSource)
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		key      string
		wantErr  bool
	}{
		{"valid anthropic key", ProviderAnthropic, "sk-ant-REDACTED", false},
		{"empty key", ProviderAnthropic, "", true},
		{"wrong prefix", ProviderAnthropic, "sk-openai-12345678901234567890", true},
		{"too short", ProviderAnthropic, "sk-ant-abc", true},
		{"valid gemini key", ProviderGemini, "AIzaSyabcdefghijklmnopqrstuvwxyz", false},
		{"gemini key with space", ProviderGemini, "AIzaSy abcdefghijklmnopqrstu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.provider, tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"valid key", "sk-ant-REDACTED", "sk-ant-...wxyz"},
		{"empty key", "", "(not set)"},
		{"short key", "short", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaskAPIKey(tt.key)
			if result != tt.expected {
				t.Errorf("MaskAPIKey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

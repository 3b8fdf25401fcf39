package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// clearEnv removes environment variables that would leak into Load.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"DEVTEAM_PROVIDER", "DEVTEAM_LOG_LEVEL", "DEVTEAM_ANTHROPIC_API_KEY", "DEVTEAM_GEMINI_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)

	want := &Config{
		Provider: ProviderAnthropic,
		Anthropic: AnthropicConfig{
			Model:          "claude-sonnet-4-20250514",
			RequestTimeout: 2 * time.Minute,
		},
		Gemini:  GeminiConfig{Model: "gemini-2.0-flash"},
		History: HistoryConfig{Enabled: true, Driver: "sqlite"},
		Log:     LogConfig{Level: "info"},
		Output:  OutputConfig{ArtifactName: "devteam_ai_generated_code.jsx"},
		TUI:     TUIConfig{RefreshRate: 100 * time.Millisecond},
	}
	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Errorf("Default() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, `
provider: gemini
anthropic:
  api_key: test-key
  use_bedrock: true
  aws_region: us-west-2
  request_timeout: 30s
gemini:
  model: gemini-1.5-pro
history:
  enabled: false
  driver: sqlite3
  path: /tmp/history.db
log:
  level: debug
prompts:
  path: prompts.yaml
output:
  artifact_name: app.jsx
tui:
  refresh_rate: 200ms
`)

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	want := &Config{
		Provider: ProviderGemini,
		Anthropic: AnthropicConfig{
			APIKey:         "test-key",
			Model:          "claude-sonnet-4-20250514",
			UseBedrock:     true,
			AWSRegion:      "us-west-2",
			RequestTimeout: 30 * time.Second,
		},
		Gemini:  GeminiConfig{Model: "gemini-1.5-pro"},
		History: HistoryConfig{Enabled: false, Driver: "sqlite3", Path: "/tmp/history.db"},
		Log:     LogConfig{Level: "debug"},
		Prompts: PromptsConfig{Path: "prompts.yaml"},
		Output:  OutputConfig{ArtifactName: "app.jsx"},
		TUI:     TUIConfig{RefreshRate: 200 * time.Millisecond},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFromPath() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_Precedence(t *testing.T) {
	clearEnv(t)
	userDir := t.TempDir()
	projectRoot := t.TempDir()
	nested := filepath.Join(projectRoot, "src", "app")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(userDir, "config.yaml"), `
provider: gemini
log:
  level: warn
gemini:
  model: user-model
`)
	writeFile(t, filepath.Join(projectRoot, ProjectConfigName), `
log:
  level: debug
`)
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg, err := LoadFrom(userDir, nested)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Provider != ProviderGemini {
		t.Errorf("provider = %q, want gemini from user config", cfg.Provider)
	}
	if cfg.Gemini.Model != "user-model" {
		t.Errorf("gemini.model = %q, want user-model", cfg.Gemini.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want project override debug", cfg.Log.Level)
	}
	if cfg.Gemini.APIKey != "env-gemini-key" {
		t.Errorf("gemini.api_key = %q, want env value", cfg.Gemini.APIKey)
	}
}

func TestLoadFrom_DevteamEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVTEAM_PROVIDER", "GEMINI")

	cfg, err := LoadFrom(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown provider", "provider: openai\n"},
		{"unknown driver", "history:\n  driver: postgres\n"},
		{"empty artifact name", "output:\n  artifact_name: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			userDir := t.TempDir()
			writeFile(t, filepath.Join(userDir, "config.yaml"), tt.content)

			if _, err := LoadFrom(userDir, t.TempDir()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSettings_MasksKeys(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	settings := cfg.Settings()
	if len(settings) != len(Keys()) {
		t.Fatalf("got %d settings, want %d", len(settings), len(Keys()))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i-1].Key > settings[i].Key {
			t.Errorf("settings not sorted: %q before %q", settings[i-1].Key, settings[i].Key)
		}
	}

	got, err := cfg.Lookup("anthropic.api_key")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "sk-ant-...wxyz" {
		t.Errorf("anthropic.api_key = %q, want masked", got)
	}
	if got, _ := cfg.Lookup("gemini.api_key"); got != "(not set)" {
		t.Errorf("gemini.api_key = %q, want (not set)", got)
	}
	if _, err := cfg.Lookup("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Lookup(nope) error = %v, want ErrUnknownKey", err)
	}
}

func TestSetValue(t *testing.T) {
	clearEnv(t)
	userDir := filepath.Join(t.TempDir(), "devteam")

	if err := setValue(userDir, "provider", "gemini"); err != nil {
		t.Fatalf("setValue failed: %v", err)
	}
	if err := setValue(userDir, "log.level", "debug"); err != nil {
		t.Fatalf("setValue failed: %v", err)
	}
	if err := setValue(userDir, "bogus.key", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("setValue(bogus) error = %v, want ErrUnknownKey", err)
	}

	cfg, err := LoadFrom(userDir, t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug (earlier value kept)", cfg.Log.Level)
	}
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if got := findProjectConfig(nested); got != "" {
		t.Errorf("expected no config, got %q", got)
	}

	path := filepath.Join(root, ProjectConfigName)
	writeFile(t, path, "provider: gemini\n")
	if got := findProjectConfig(nested); got != path {
		t.Errorf("findProjectConfig() = %q, want %q", got, path)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	if result := expandEnv("${TEST_VAR}"); result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}
	if result := expandEnv("prefix-${TEST_VAR}-suffix"); result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	if dir := getUserConfigDir(); dir != "/custom/config/devteam" {
		t.Errorf("expected %q, got %q", "/custom/config/devteam", dir)
	}
}

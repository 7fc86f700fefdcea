package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/prompt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("default model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Errorf("default timeout = %v", cfg.AI.Timeout)
	}
	if cfg.AI.MaxRetries != 2 {
		t.Errorf("default max retries = %d", cfg.AI.MaxRetries)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("rate limiting should default to enabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
ai:
  model: gemini-2.5-pro
  timeout: 30s
  operations:
    cv-conversion:
      model: gemini-2.0-flash
      max_retries: 1
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.AI.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", cfg.AI.Model)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}

	op := cfg.AI.ForOperation(prompt.OpCVConversion)
	if op.Model != "gemini-2.0-flash" {
		t.Errorf("operation model = %q", op.Model)
	}
	if op.MaxRetries != 1 {
		t.Errorf("operation max retries = %d", op.MaxRetries)
	}
	if op.Timeout != 30*time.Second {
		t.Errorf("operation timeout should fall back to global, got %v", op.Timeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG for missing explicit file, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty model", func(c *Config) { c.AI.Model = "" }},
		{"negative retries", func(c *Config) { c.AI.MaxRetries = -1 }},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }},
		{"unknown operation", func(c *Config) {
			c.AI.Operations = map[string]OperationConfig{"no-such-op": {}}
		}},
		{"vault without address", func(c *Config) { c.Vault.Enabled = true; c.Vault.Address = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit.RequestsPerMinute = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); !apperrors.HasCode(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestForOperationFallback(t *testing.T) {
	temp := 0.4
	a := AIConfig{
		BaseURL:     "https://example.test",
		APIKey:      "k",
		Model:       "global-model",
		Timeout:     45 * time.Second,
		MaxRetries:  3,
		Temperature: &temp,
	}

	resolved := a.ForOperation("cv-suggestion")
	if resolved.Model != "global-model" || resolved.MaxRetries != 3 {
		t.Errorf("unconfigured operation should use globals: %+v", resolved)
	}
	if resolved.Temperature == nil || *resolved.Temperature != 0.4 {
		t.Errorf("temperature should fall back to global, got %v", resolved.Temperature)
	}
}

func TestPromptOverrides(t *testing.T) {
	a := AIConfig{Operations: map[string]OperationConfig{
		prompt.OpCVConversion:  {TemplateFile: "/tmp/conv.txt"},
		prompt.OpCVSuggestion:  {Model: "other"},
		prompt.OpCVEnhancement: {SchemaFile: "/tmp/enh.schema.json"},
	}}

	overrides := a.PromptOverrides()
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}
	if overrides[prompt.OpCVConversion].TemplateFile != "/tmp/conv.txt" {
		t.Error("conversion template override missing")
	}
	if _, ok := overrides[prompt.OpCVSuggestion]; ok {
		t.Error("operations without file overrides should not appear")
	}
}

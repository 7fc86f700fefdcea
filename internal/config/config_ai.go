package config

import (
	"time"

	"cvtailor/internal/prompt"
)

// ResolvedAIConfig is the effective model configuration for one
// operation after per-operation overrides are applied over the global
// AI settings.
type ResolvedAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

// ForOperation resolves the AI configuration for an operation.
func (a *AIConfig) ForOperation(operation string) ResolvedAIConfig {
	resolved := ResolvedAIConfig{
		BaseURL:     a.BaseURL,
		APIKey:      a.APIKey,
		Model:       a.Model,
		Timeout:     a.Timeout,
		MaxRetries:  a.MaxRetries,
		Temperature: a.Temperature,
	}

	op, ok := a.Operations[operation]
	if !ok {
		return resolved
	}
	if op.Model != "" {
		resolved.Model = op.Model
	}
	if op.Timeout > 0 {
		resolved.Timeout = op.Timeout
	}
	if op.MaxRetries != nil {
		resolved.MaxRetries = *op.MaxRetries
	}
	if op.Temperature != nil {
		resolved.Temperature = op.Temperature
	}
	return resolved
}

// PromptOverrides collects the per-operation template and schema file
// overrides for the prompt library.
func (a *AIConfig) PromptOverrides() map[string]prompt.Override {
	overrides := make(map[string]prompt.Override)
	for op, opCfg := range a.Operations {
		if opCfg.TemplateFile == "" && opCfg.SchemaFile == "" {
			continue
		}
		overrides[op] = prompt.Override{
			TemplateFile: opCfg.TemplateFile,
			SchemaFile:   opCfg.SchemaFile,
		}
	}
	return overrides
}

package cli

import (
	"context"

	"cvtailor/internal/ai"
	"cvtailor/internal/config"
	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/observability"
	"cvtailor/internal/prompt"
)

// app bundles the shared wiring every command needs.
type app struct {
	cfg     *config.Config
	logger  *apperrors.Logger
	library *prompt.Library
	svc     *ai.Service
}

// loadConfigAndLogger reads the configuration named by the --config
// flag and builds the process logger from it.
func loadConfigAndLogger() (*config.Config, *apperrors.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := apperrors.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// buildApp resolves the API key and constructs the pipeline service.
// Operations with their own model settings get a dedicated client,
// each with its own circuit breaker.
func buildApp(ctx context.Context, cfg *config.Config, logger *apperrors.Logger, metrics *observability.Metrics) (*app, error) {
	if err := cfg.FetchAPIKey(ctx); err != nil {
		return nil, err
	}

	library, err := prompt.NewLibrary(cfg.AI.PromptOverrides(), logger)
	if err != nil {
		return nil, err
	}

	defaultClient, err := ai.NewGeminiClient(toGeminiConfig(cfg.AI.ForOperation("")), logger)
	if err != nil {
		return nil, err
	}
	svc := ai.NewService(defaultClient, library, logger, metrics)

	for op, opCfg := range cfg.AI.Operations {
		if !hasModelOverride(opCfg) {
			continue
		}
		client, err := ai.NewGeminiClient(toGeminiConfig(cfg.AI.ForOperation(op)), logger)
		if err != nil {
			return nil, err
		}
		svc.WithOperationGenerator(op, client)
	}

	return &app{cfg: cfg, logger: logger, library: library, svc: svc}, nil
}

func toGeminiConfig(r config.ResolvedAIConfig) ai.GeminiConfig {
	return ai.GeminiConfig{
		BaseURL:     r.BaseURL,
		APIKey:      r.APIKey,
		Model:       r.Model,
		Timeout:     r.Timeout,
		MaxRetries:  r.MaxRetries,
		Temperature: r.Temperature,
	}
}

func hasModelOverride(op config.OperationConfig) bool {
	return op.Model != "" || op.Timeout > 0 || op.MaxRetries != nil || op.Temperature != nil
}

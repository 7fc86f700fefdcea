// Package config loads and validates the process configuration from
// defaults, an optional YAML file, and CVTAILOR_* environment
// variables. The loaded Config is read-only after startup.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/prompt"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	AI            AIConfig            `mapstructure:"ai"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	APIKeys         []string        `mapstructure:"api_keys"`
	MaxRequestSize  int64           `mapstructure:"max_request_size"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// AIConfig holds the global model settings plus optional per-operation
// overrides keyed by operation name.
type AIConfig struct {
	BaseURL     string                     `mapstructure:"base_url"`
	APIKey      string                     `mapstructure:"api_key"`
	Model       string                     `mapstructure:"model"`
	Timeout     time.Duration              `mapstructure:"timeout"`
	MaxRetries  int                        `mapstructure:"max_retries"`
	Temperature *float64                   `mapstructure:"temperature"`
	Operations  map[string]OperationConfig `mapstructure:"operations"`
}

// OperationConfig overrides global AI settings for one operation. Zero
// or nil fields fall back to the global values.
type OperationConfig struct {
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   *int          `mapstructure:"max_retries"`
	Temperature  *float64      `mapstructure:"temperature"`
	TemplateFile string        `mapstructure:"template_file"`
	SchemaFile   string        `mapstructure:"schema_file"`
}

type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	MountPath  string `mapstructure:"mount_path"`
	SecretPath string `mapstructure:"secret_path"`
	KeyField   string `mapstructure:"key_field"`
}

type ObservabilityConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	TraceExporter  string `mapstructure:"trace_exporter"`
	MetricExporter string `mapstructure:"metric_exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_request_size", 10*1024*1024)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_minute", 60)
	v.SetDefault("server.rate_limit.burst", 10)

	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_retries", 2)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_path", "cvtailor")
	v.SetDefault("vault.key_field", "gemini_api_key")

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.trace_exporter", "none")
	v.SetDefault("observability.metric_exporter", "prometheus")
	v.SetDefault("observability.metrics_addr", ":9090")

	v.SetDefault("logging.level", "info")
}

// Load reads the configuration. An explicit path must exist; otherwise
// a config.yaml found next to the binary or under /etc/cvtailor is
// used when present, and defaults plus environment otherwise.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cvtailor")
	}

	v.SetEnvPrefix("CVTAILOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, apperrors.NewConfigError(
				apperrors.ErrCodeInvalidConfig,
				"failed to read config file",
				err,
			)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigError(
			apperrors.ErrCodeInvalidConfig,
			"failed to unmarshal config",
			err,
		)
	}

	// GEMINI_API_KEY is the conventional variable for this provider and
	// wins over nothing, not over an explicit config value.
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural invariants. API-key presence is checked at
// client construction, after an optional Vault fetch.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalidConfig(fmt.Sprintf("server port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxRequestSize <= 0 {
		return invalidConfig("server max_request_size must be positive")
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerMinute <= 0 {
			return invalidConfig("rate_limit.requests_per_minute must be positive")
		}
		if c.Server.RateLimit.Burst <= 0 {
			return invalidConfig("rate_limit.burst must be positive")
		}
	}
	if c.AI.Model == "" {
		return invalidConfig("ai.model is required")
	}
	if c.AI.Timeout <= 0 {
		return invalidConfig("ai.timeout must be positive")
	}
	if c.AI.MaxRetries < 0 {
		return invalidConfig("ai.max_retries must not be negative")
	}

	known := make(map[string]bool)
	for _, op := range prompt.Operations() {
		known[op] = true
	}
	for op := range c.AI.Operations {
		if !known[op] {
			return invalidConfig(fmt.Sprintf("unknown operation in ai.operations: %s", op))
		}
	}

	if c.Vault.Enabled {
		if c.Vault.Address == "" {
			return invalidConfig("vault.address is required when vault is enabled")
		}
		if c.Vault.SecretPath == "" || c.Vault.KeyField == "" {
			return invalidConfig("vault.secret_path and vault.key_field are required when vault is enabled")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalidConfig(fmt.Sprintf("unknown logging level: %s", c.Logging.Level))
	}
	return nil
}

func invalidConfig(message string) error {
	return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, message, nil)
}

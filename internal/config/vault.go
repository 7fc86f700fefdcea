package config

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	apperrors "cvtailor/internal/errors"
)

// FetchAPIKey reads the Gemini API key from Vault KV v2 when Vault is
// enabled, overriding any key from file or environment.
func (c *Config) FetchAPIKey(ctx context.Context) error {
	if !c.Vault.Enabled {
		return nil
	}

	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = c.Vault.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return apperrors.NewConfigError(
			apperrors.ErrCodeInvalidConfig,
			"failed to create vault client",
			err,
		)
	}
	if c.Vault.Token != "" {
		client.SetToken(c.Vault.Token)
	}

	secret, err := client.KVv2(c.Vault.MountPath).Get(ctx, c.Vault.SecretPath)
	if err != nil {
		return apperrors.NewConfigError(
			apperrors.ErrCodeMissingAPIKey,
			"failed to read API key from vault",
			err,
		).WithContext("mount", c.Vault.MountPath).WithContext("path", c.Vault.SecretPath)
	}

	raw, ok := secret.Data[c.Vault.KeyField]
	if !ok {
		return apperrors.NewConfigError(
			apperrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("vault secret has no field %q", c.Vault.KeyField),
			nil,
		)
	}
	key, ok := raw.(string)
	if !ok || key == "" {
		return apperrors.NewConfigError(
			apperrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("vault field %q is not a non-empty string", c.Vault.KeyField),
			nil,
		)
	}

	c.AI.APIKey = key
	return nil
}

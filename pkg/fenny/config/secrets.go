// secrets.go resolves provider credentials using the OS keyring
// (Linux: Secret Service, macOS: Keychain, Windows: Credential Manager)
// with environment variables as fallback.
//
// Priority for each secret:
//  1. OS keyring (encrypted by the OS)
//  2. Environment variable (EXCHANGE_RATE_API_KEY, FENNY_LLM_API_KEY)
//  3. config.yaml value (least secure, plaintext on disk)
package config

import (
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "fenny"

	// KeyringExchangeRateKey is the keyring entry for the currency provider.
	KeyringExchangeRateKey = "exchange_rate_api_key"

	// KeyringLLMKey is the keyring entry for the LLM endpoint.
	KeyringLLMKey = "llm_api_key"
)

// EnvExchangeRateKey is the environment variable for the currency credential.
const EnvExchangeRateKey = "EXCHANGE_RATE_API_KEY"

// EnvLLMKey is the environment variable for the LLM credential.
const EnvLLMKey = "FENNY_LLM_API_KEY"

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring.
// Returns empty string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// ResolveSecrets fills empty credential fields from the keyring and
// environment, in that order. Updates the config in place.
func ResolveSecrets(cfg *Config, logger *slog.Logger) {
	cfg.Tools.ExchangeRate.APIKey = resolveSecret(
		cfg.Tools.ExchangeRate.APIKey, KeyringExchangeRateKey, EnvExchangeRateKey)
	cfg.LLM.APIKey = resolveSecret(cfg.LLM.APIKey, KeyringLLMKey, EnvLLMKey)

	if cfg.Tools.ExchangeRate.APIKey == "" {
		logger.Warn("exchange rate API key not configured; currency conversion will be unavailable",
			"hint", "set "+EnvExchangeRateKey+" or store it in the OS keyring")
	}
}

// resolveSecret returns the first non-empty value from keyring, env, config.
func resolveSecret(configValue, keyringKey, envKey string) string {
	if val := GetKeyring(keyringKey); val != "" {
		return val
	}
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return configValue
}

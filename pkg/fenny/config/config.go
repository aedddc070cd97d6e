// Package config defines all configuration structures for the Fenny
// financial assistant backend.
package config

import "time"

// Config holds all backend configuration.
type Config struct {
	// Name is the application name shown in logs and the health endpoint.
	Name string `yaml:"name"`

	// Gateway configures the HTTP API gateway.
	Gateway GatewayConfig `yaml:"gateway"`

	// Uploads configures file upload limits.
	Uploads UploadConfig `yaml:"uploads"`

	// Session configures session lifetime and cleanup.
	Session SessionConfig `yaml:"session"`

	// Tools configures the external data providers.
	Tools ToolsConfig `yaml:"tools"`

	// LLM configures the fallback completion endpoint.
	LLM LLMConfig `yaml:"llm"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// GatewayConfig configures the HTTP server.
type GatewayConfig struct {
	// Address is the listen address (e.g. ":8090").
	Address string `yaml:"address"`

	// AuthToken, when non-empty, requires Bearer auth on /api/* routes.
	AuthToken string `yaml:"auth_token"`

	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string `yaml:"cors_origins"`
}

// UploadConfig configures file upload validation.
type UploadConfig struct {
	// MaxFileSize is the per-file size limit in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxFilesPerConversation caps total uploads in one session.
	MaxFilesPerConversation int `yaml:"max_files_per_conversation"`
}

// SessionConfig configures session expiry.
type SessionConfig struct {
	// ExpiryHours is how long a session is valid after creation.
	ExpiryHours int `yaml:"expiry_hours"`

	// CleanupInterval is the cron interval for purging expired sessions.
	// Accepts a Go duration (e.g. "1h").
	CleanupInterval string `yaml:"cleanup_interval"`
}

// ToolsConfig configures the external market-data providers.
type ToolsConfig struct {
	// Stocks configures the stock quote provider.
	Stocks StockProviderConfig `yaml:"stocks"`

	// ExchangeRate configures the currency conversion provider.
	ExchangeRate ExchangeRateConfig `yaml:"exchange_rate"`
}

// StockProviderConfig configures the quote endpoint.
type StockProviderConfig struct {
	// BaseURL is the quote API root. Defaults to Yahoo Finance.
	BaseURL string `yaml:"base_url"`
}

// ExchangeRateConfig configures exchangerate-api.com access.
type ExchangeRateConfig struct {
	// BaseURL is the API root (version segment included).
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider credential. Resolved from keyring/env when
	// empty; the currency tool refuses to call out without it.
	APIKey string `yaml:"api_key"`
}

// LLMConfig configures the fallback completion client.
type LLMConfig struct {
	// Enabled toggles the LLM fallback. When false the assistant replies
	// with a fixed apology for unclassified messages.
	Enabled bool `yaml:"enabled"`

	// BaseURL is an OpenAI-compatible completions endpoint
	// (llama.cpp server, vLLM, or a hosted provider).
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// APIKey is the optional bearer credential.
	APIKey string `yaml:"api_key"`

	// MaxTokens caps generation length.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// SessionExpiry returns the configured expiry as a duration.
func (c SessionConfig) SessionExpiry() time.Duration {
	hours := c.ExpiryHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// DefaultConfig returns a Config with sane defaults. Values from YAML
// overlay these.
func DefaultConfig() *Config {
	return &Config{
		Name: "Fenny Financial Assistant",
		Gateway: GatewayConfig{
			Address: ":8090",
		},
		Uploads: UploadConfig{
			MaxFileSize:             5 * 1024 * 1024, // 5MB
			MaxFilesPerConversation: 3,
		},
		Session: SessionConfig{
			ExpiryHours:     24,
			CleanupInterval: "1h",
		},
		Tools: ToolsConfig{
			Stocks: StockProviderConfig{
				BaseURL: "https://query1.finance.yahoo.com",
			},
			ExchangeRate: ExchangeRateConfig{
				BaseURL: "https://v6.exchangerate-api.com/v6",
			},
		},
		LLM: LLMConfig{
			Enabled:     true,
			BaseURL:     "http://127.0.0.1:8080/v1",
			Model:       "finance-chat",
			MaxTokens:   512,
			Temperature: 0.7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

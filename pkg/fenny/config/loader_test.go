package config

import (
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("name: Test Fenny\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "Test Fenny" {
		t.Errorf("expected name override, got %q", cfg.Name)
	}
	if cfg.Uploads.MaxFilesPerConversation != 3 {
		t.Errorf("expected default max files 3, got %d", cfg.Uploads.MaxFilesPerConversation)
	}
	if cfg.Session.ExpiryHours != 24 {
		t.Errorf("expected default expiry 24h, got %d", cfg.Session.ExpiryHours)
	}
	if cfg.Gateway.Address != ":8090" {
		t.Errorf("expected default address :8090, got %q", cfg.Gateway.Address)
	}
}

func TestParseOverlay(t *testing.T) {
	yaml := `
gateway:
  address: ":9000"
uploads:
  max_files_per_conversation: 5
tools:
  exchange_rate:
    api_key: test-key
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Address != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.Gateway.Address)
	}
	if cfg.Uploads.MaxFilesPerConversation != 5 {
		t.Errorf("expected 5, got %d", cfg.Uploads.MaxFilesPerConversation)
	}
	if cfg.Tools.ExchangeRate.APIKey != "test-key" {
		t.Errorf("expected api key overlay, got %q", cfg.Tools.ExchangeRate.APIKey)
	}
	// Untouched sections keep defaults.
	if cfg.Tools.Stocks.BaseURL == "" {
		t.Error("expected default stock base URL to survive overlay")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("gateway: [not a map")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FENNY_TEST_VAR", "hello")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "value: ${FENNY_TEST_VAR}", "value: hello"},
		{"unset variable", "value: ${FENNY_TEST_UNSET}", "value: "},
		{"unset with default", "value: ${FENNY_TEST_UNSET:-fallback}", "value: fallback"},
		{"set with default", "value: ${FENNY_TEST_VAR:-fallback}", "value: hello"},
		{"no reference", "value: plain", "value: plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSessionExpiry(t *testing.T) {
	c := SessionConfig{ExpiryHours: 2}
	if got := c.SessionExpiry().Hours(); got != 2 {
		t.Errorf("expected 2h, got %vh", got)
	}
	// Zero falls back to 24h.
	c = SessionConfig{}
	if got := c.SessionExpiry().Hours(); got != 24 {
		t.Errorf("expected 24h fallback, got %vh", got)
	}
}

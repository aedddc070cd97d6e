// currency.go implements the currency exchange tool backed by
// exchangerate-api.com.
//
// Unlike the stock tool, this tool wraps its payload in its own
// status/output envelope, so callers unwrap one extra level on the
// currency path. That nesting is part of the wire contract consumed by
// the router and is preserved as-is.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

// CurrencyToolName is the registry key for the currency exchange tool.
const CurrencyToolName = "currency_exchange"

// CurrencyTool converts between currencies or lists rates for a base.
type CurrencyTool struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewCurrencyTool creates the currency tool. A missing API key is not a
// construction error; Run reports it per call without touching the network.
func NewCurrencyTool(cfg config.ExchangeRateConfig, client *http.Client, logger *slog.Logger) (*CurrencyTool, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("exchange rate base URL not configured")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.APIKey == "" {
		logger.Warn("exchange rate API key not found in environment")
	}
	return &CurrencyTool{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logger.With("component", "currency_tool"),
	}, nil
}

// Name implements Tool.
func (t *CurrencyTool) Name() string { return CurrencyToolName }

// Description implements Tool.
func (t *CurrencyTool) Description() string {
	return "Get current currency exchange rates or convert between currencies"
}

// Parameters implements Tool.
func (t *CurrencyTool) Parameters() map[string]ParamSpec {
	return map[string]ParamSpec{
		"base": {
			Type:        "string",
			Description: "Base currency code (e.g., USD, EUR)",
			Required:    false,
		},
		"target": {
			Type:        "string",
			Description: "Target currency code (e.g., EUR, JPY)",
			Required:    false,
		},
		"amount": {
			Type:        "number",
			Description: "Amount to convert (default: 1)",
			Required:    false,
		},
	}
}

// exchangeRateResponse covers both the latest-rates and pair endpoints.
type exchangeRateResponse struct {
	Result            string             `json:"result"`
	ErrorType         string             `json:"error-type"`
	BaseCode          string             `json:"base_code"`
	TargetCode        string             `json:"target_code"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
	ConversionRate    float64            `json:"conversion_rate"`
	ConversionResult  float64            `json:"conversion_result"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
}

// Run returns rates for a base currency, or converts amount units of base
// into target when target is present. The return value is always the
// tool's own envelope: {status: success, output: ...} or
// {status: error, message: ...}. Run never returns a Go error.
func (t *CurrencyTool) Run(ctx context.Context, args map[string]any) (any, error) {
	if t.apiKey == "" {
		t.logger.Error("exchange rate API key not configured")
		return errEnvelope("Currency API key not configured. Please set EXCHANGE_RATE_API_KEY environment variable."), nil
	}

	base := strings.ToUpper(strings.TrimSpace(stringArg(args, "base", "USD")))
	target := strings.ToUpper(strings.TrimSpace(stringArg(args, "target", "")))
	amount := numberArg(args, "amount", 1.0)

	if target == "" {
		return t.latestRates(ctx, base), nil
	}
	return t.convertPair(ctx, base, target, amount), nil
}

// latestRates fetches all conversion rates for a base currency.
func (t *CurrencyTool) latestRates(ctx context.Context, base string) map[string]any {
	data, errEnv := t.fetch(ctx, fmt.Sprintf("/%s/latest/%s", t.apiKey, url.PathEscape(base)))
	if errEnv != nil {
		return errEnv
	}

	rates := make(map[string]any, len(data.ConversionRates))
	for code, rate := range data.ConversionRates {
		rates[code] = round4(rate)
	}
	return map[string]any{
		"status": StatusSuccess,
		"output": map[string]any{
			"base":      data.BaseCode,
			"rates":     rates,
			"timestamp": stringOr(data.TimeLastUpdateUTC, "N/A"),
		},
	}
}

// convertPair converts a specific amount between two currencies.
func (t *CurrencyTool) convertPair(ctx context.Context, base, target string, amount float64) map[string]any {
	endpoint := fmt.Sprintf("/%s/pair/%s/%s/%s",
		t.apiKey, url.PathEscape(base), url.PathEscape(target),
		strconv.FormatFloat(amount, 'f', -1, 64))

	data, errEnv := t.fetch(ctx, endpoint)
	if errEnv != nil {
		return errEnv
	}

	return map[string]any{
		"status": StatusSuccess,
		"output": map[string]any{
			"base":             data.BaseCode,
			"target":           data.TargetCode,
			"amount":           amount,
			"converted_amount": round4(data.ConversionResult),
			"rate":             round4(data.ConversionRate),
			"timestamp":        stringOr(data.TimeLastUpdateUTC, "N/A"),
		},
	}
}

// fetch performs one provider request. The second return value is a
// ready-to-return error envelope, nil on success.
func (t *CurrencyTool) fetch(ctx context.Context, endpoint string) (*exchangeRateResponse, map[string]any) {
	fullURL := t.baseURL + endpoint
	t.logger.Debug("making exchange rate request", "endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		t.logger.Error("unexpected error in currency exchange", "error", err)
		return nil, errEnvelope("Unexpected error processing currency request.")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("network error in currency exchange", "error", err)
		return nil, errEnvelope("Network error connecting to currency service. Please check your internet connection.")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Error("currency provider returned error status", "status", resp.StatusCode)
		return nil, errEnvelope("Network error connecting to currency service. Please check your internet connection.")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		t.logger.Error("network error in currency exchange", "error", err)
		return nil, errEnvelope("Network error connecting to currency service. Please check your internet connection.")
	}

	var data exchangeRateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		t.logger.Error("unexpected error in currency exchange", "error", err)
		return nil, errEnvelope("Unexpected error processing currency request.")
	}

	if data.Result != "success" {
		errMsg := stringOr(data.ErrorType, "Unknown API error")
		t.logger.Error("exchange rate API error", "error_type", errMsg)
		return nil, errEnvelope(fmt.Sprintf("API error: %s", errMsg))
	}

	return &data, nil
}

func errEnvelope(message string) map[string]any {
	return map[string]any{
		"status":  StatusError,
		"message": message,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func numberArg(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

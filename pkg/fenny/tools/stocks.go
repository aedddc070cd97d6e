// stocks.go implements the stock quote tool backed by the Yahoo Finance
// quote endpoint. All failure paths produce a payload-level error shape;
// Run never returns a Go error to the executor.
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

// StockToolName is the registry key for the stock quote tool.
const StockToolName = "stock_price"

// StockTool retrieves current price and basic information for a ticker.
type StockTool struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewStockTool creates the stock tool against the configured provider.
func NewStockTool(cfg config.StockProviderConfig, client *http.Client, logger *slog.Logger) (*StockTool, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("stock provider base URL not configured")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid stock provider base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &StockTool{
		baseURL: baseURL,
		client:  client,
		logger:  logger.With("component", "stock_tool"),
	}, nil
}

// Name implements Tool.
func (t *StockTool) Name() string { return StockToolName }

// Description implements Tool.
func (t *StockTool) Description() string {
	return "Get current stock price and basic information for a ticker symbol"
}

// Parameters implements Tool.
func (t *StockTool) Parameters() map[string]ParamSpec {
	return map[string]ParamSpec{
		"ticker": {
			Type:        "string",
			Description: "Stock ticker symbol (e.g., AAPL, MSFT, TSLA)",
			Required:    true,
		},
	}
}

// yahooQuote is one result entry from the v7 quote endpoint. Pointer fields
// distinguish "absent" from zero.
type yahooQuote struct {
	Symbol               string   `json:"symbol"`
	ShortName            string   `json:"shortName"`
	Currency             string   `json:"currency"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	RegularMarketOpen    *float64 `json:"regularMarketOpen"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketVolume  *int64   `json:"regularMarketVolume"`
	MarketCap            *float64 `json:"marketCap"`
	TrailingPE           *float64 `json:"trailingPE"`
	DividendYield        *float64 `json:"trailingAnnualDividendYield"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  any          `json:"error"`
	} `json:"quoteResponse"`
}

// Run fetches the quote for args["ticker"]. The returned payload is the
// quote data directly (no inner envelope), or {error, details} when the
// provider has no data or the request fails.
func (t *StockTool) Run(ctx context.Context, args map[string]any) (any, error) {
	ticker, _ := args["ticker"].(string)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return t.errorPayload(ticker, fmt.Errorf("ticker is required")), nil
	}

	quote, err := t.fetchQuote(ctx, ticker)
	if err != nil {
		t.logger.Error("error fetching stock data", "ticker", ticker, "error", err)
		return t.errorPayload(ticker, err), nil
	}

	payload := map[string]any{
		"ticker":         ticker,
		"name":           stringOr(quote.ShortName, ticker),
		"current_price":  priceOr(quote.RegularMarketPrice),
		"currency":       stringOr(quote.Currency, "USD"),
		"market_open":    numberOr(quote.RegularMarketOpen),
		"day_range":      fmt.Sprintf("%s - %s", formatQuoteNumber(quote.RegularMarketDayLow), formatQuoteNumber(quote.RegularMarketDayHigh)),
		"volume":         volumeOr(quote.RegularMarketVolume),
		"market_cap":     marketCapOr(quote.MarketCap),
		"pe_ratio":       numberOr(quote.TrailingPE),
		"dividend_yield": numberOr(quote.DividendYield),
	}

	t.logger.Info("retrieved stock data", "ticker", ticker, "price", payload["current_price"])
	return payload, nil
}

func (t *StockTool) fetchQuote(ctx context.Context, ticker string) (*yahooQuote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", t.baseURL, url.QueryEscape(ticker))
	t.logger.Debug("requesting quote", "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading quote response: %w", err)
	}

	var parsed yahooQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no data for symbol %s", ticker)
	}
	return &parsed.QuoteResponse.Result[0], nil
}

// errorPayload is the payload-level failure shape. It is distinct from the
// executor's envelope: the executor still wraps this as a success.
func (t *StockTool) errorPayload(ticker string, err error) map[string]any {
	return map[string]any{
		"error":   fmt.Sprintf("Could not retrieve data for %s. Please check the ticker symbol and try again.", ticker),
		"details": err.Error(),
	}
}

// formatMarketCap renders a market cap value with a T/B/M suffix.
// Non-numeric input is stringified unchanged.
func formatMarketCap(v any) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return n.String()
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n
		}
		f = parsed
	default:
		return fmt.Sprintf("%v", v)
	}

	switch {
	case f >= 1_000_000_000_000:
		return fmt.Sprintf("$%.2fT", f/1_000_000_000_000)
	case f >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", f/1_000_000_000)
	case f >= 1_000_000:
		return fmt.Sprintf("$%.2fM", f/1_000_000)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// priceOr rounds a present price to 2 decimals, or yields the "N/A" sentinel.
func priceOr(v *float64) any {
	if v == nil {
		return "N/A"
	}
	return math.Round(*v*100) / 100
}

func numberOr(v *float64) any {
	if v == nil {
		return "N/A"
	}
	return *v
}

func volumeOr(v *int64) any {
	if v == nil {
		return "N/A"
	}
	return *v
}

func marketCapOr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatMarketCap(*v)
}

func formatQuoteNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

func newStockTool(t *testing.T, baseURL string) *StockTool {
	t.Helper()
	tool, err := NewStockTool(config.StockProviderConfig{BaseURL: baseURL}, &http.Client{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tool
}

func TestStockToolSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("expected symbols=AAPL, got %q", got)
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{
			"symbol":"AAPL","shortName":"Apple Inc.","currency":"USD",
			"regularMarketPrice":150.2567,"regularMarketOpen":149.0,
			"regularMarketDayLow":148.5,"regularMarketDayHigh":151.2,
			"regularMarketVolume":52000000,"marketCap":2300000000000,
			"trailingPE":28.4,"trailingAnnualDividendYield":0.0055
		}],"error":null}}`)
	}))
	defer srv.Close()

	tool := newStockTool(t, srv.URL)
	out, err := tool.Run(context.Background(), map[string]any{"ticker": " aapl "})
	if err != nil {
		t.Fatalf("Run must not return an error: %v", err)
	}
	payload := out.(map[string]any)

	if payload["ticker"] != "AAPL" {
		t.Errorf("ticker = %v, want AAPL (normalized)", payload["ticker"])
	}
	if payload["name"] != "Apple Inc." {
		t.Errorf("name = %v", payload["name"])
	}
	if payload["current_price"] != 150.26 {
		t.Errorf("current_price = %v, want 150.26 (2dp)", payload["current_price"])
	}
	if payload["day_range"] != "148.5 - 151.2" {
		t.Errorf("day_range = %v", payload["day_range"])
	}
	if payload["market_cap"] != "$2.30T" {
		t.Errorf("market_cap = %v, want $2.30T", payload["market_cap"])
	}
	if _, hasErr := payload["error"]; hasErr {
		t.Error("success payload must not carry an error key")
	}
}

func TestStockToolMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"XYZ"}],"error":null}}`)
	}))
	defer srv.Close()

	tool := newStockTool(t, srv.URL)
	out, _ := tool.Run(context.Background(), map[string]any{"ticker": "XYZ"})
	payload := out.(map[string]any)

	if payload["current_price"] != "N/A" {
		t.Errorf("current_price = %v, want N/A sentinel", payload["current_price"])
	}
	if payload["name"] != "XYZ" {
		t.Errorf("name should fall back to ticker, got %v", payload["name"])
	}
	if payload["day_range"] != "N/A - N/A" {
		t.Errorf("day_range = %v", payload["day_range"])
	}
	if payload["market_cap"] != "N/A" {
		t.Errorf("market_cap = %v", payload["market_cap"])
	}
}

func TestStockToolNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty result", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
		}},
		{"provider error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			tool := newStockTool(t, srv.URL)
			out, err := tool.Run(context.Background(), map[string]any{"ticker": "ZZZZ"})
			if err != nil {
				t.Fatalf("Run must not return an error: %v", err)
			}
			payload := out.(map[string]any)
			if _, ok := payload["error"]; !ok {
				t.Fatalf("expected error key in payload, got %v", payload)
			}
			if _, ok := payload["details"]; !ok {
				t.Error("expected details key alongside error")
			}
			if _, ok := payload["current_price"]; ok {
				t.Error("error payload must not carry numeric fields")
			}
		})
	}
}

func TestStockToolNoNetworkOnEmptyTicker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	tool := newStockTool(t, srv.URL)
	out, _ := tool.Run(context.Background(), map[string]any{})
	if _, ok := out.(map[string]any)["error"]; !ok {
		t.Error("expected error payload for missing ticker")
	}
	if calls != 0 {
		t.Errorf("expected no provider call, got %d", calls)
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"trillions", 1_500_000_000_000.0, "$1.50T"},
		{"billions", 2_300_000_000.0, "$2.30B"},
		{"millions", 5_000_000.0, "$5.00M"},
		{"below a million", 999.0, "$999.00"},
		{"int input", 1_000_000_000, "$1.00B"},
		{"numeric string", "2300000000", "$2.30B"},
		{"non-numeric string unchanged", "unavailable", "unavailable"},
		{"nil stringified", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMarketCap(tt.in); got != tt.want {
				t.Errorf("formatMarketCap(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// testRegistry builds a registry with both tools pointed at the given
// provider URL. An empty apiKey leaves the currency tool without credential.
func testRegistry(t *testing.T, providerURL, apiKey string) *Registry {
	t.Helper()
	cfg := config.ToolsConfig{
		Stocks:       config.StockProviderConfig{BaseURL: providerURL},
		ExchangeRate: config.ExchangeRateConfig{BaseURL: providerURL, APIKey: apiKey},
	}
	return NewRegistry(cfg, &http.Client{}, testLogger())
}

func TestRegistryConstruction(t *testing.T) {
	t.Run("registers both tools", func(t *testing.T) {
		r := testRegistry(t, "http://localhost:1", "key")
		if r.Count() != 2 {
			t.Fatalf("expected 2 tools, got %d", r.Count())
		}
		if !r.Has(StockToolName) || !r.Has(CurrencyToolName) {
			t.Error("expected stock_price and currency_exchange to be registered")
		}
	})

	t.Run("names preserve registration order", func(t *testing.T) {
		r := testRegistry(t, "http://localhost:1", "key")
		names := r.Names()
		if len(names) != 2 || names[0] != StockToolName || names[1] != CurrencyToolName {
			t.Errorf("unexpected name order: %v", names)
		}
	})

	t.Run("tool construction failure is tolerated", func(t *testing.T) {
		cfg := config.ToolsConfig{
			Stocks:       config.StockProviderConfig{BaseURL: ""}, // stock tool cannot build
			ExchangeRate: config.ExchangeRateConfig{BaseURL: "http://localhost:1"},
		}
		r := NewRegistry(cfg, nil, testLogger())
		if r.Has(StockToolName) {
			t.Error("expected stock tool to be absent")
		}
		if !r.Has(CurrencyToolName) {
			t.Error("expected currency tool to survive")
		}
	})

	t.Run("list exposes descriptors", func(t *testing.T) {
		r := testRegistry(t, "http://localhost:1", "key")
		list := r.List()
		if len(list) != 2 {
			t.Fatalf("expected 2 descriptors, got %d", len(list))
		}
		if list[0].Name != StockToolName {
			t.Errorf("expected stock descriptor first, got %s", list[0].Name)
		}
		if !list[0].Parameters["ticker"].Required {
			t.Error("expected ticker parameter to be required")
		}
	})
}

func TestExecutorUnknownTool(t *testing.T) {
	r := testRegistry(t, "http://localhost:1", "key")
	exec := NewExecutor(r, testLogger())

	res := exec.Execute(context.Background(), "nonexistent", map[string]any{})
	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	want := "Tool 'nonexistent' not found. Available tools: stock_price, currency_exchange"
	if res.Message != want {
		t.Errorf("message = %q, want %q", res.Message, want)
	}
	if res.Tool != "" {
		t.Errorf("unknown-tool envelope must not name a tool, got %q", res.Tool)
	}
}

// failingTool always returns an error from Run.
type failingTool struct{}

func (failingTool) Name() string                     { return "failing" }
func (failingTool) Description() string              { return "always fails" }
func (failingTool) Parameters() map[string]ParamSpec { return nil }
func (failingTool) Run(context.Context, map[string]any) (any, error) {
	return nil, fmt.Errorf("boom")
}

// panickyTool panics from Run.
type panickyTool struct{}

func (panickyTool) Name() string                     { return "panicky" }
func (panickyTool) Description() string              { return "always panics" }
func (panickyTool) Parameters() map[string]ParamSpec { return nil }
func (panickyTool) Run(context.Context, map[string]any) (any, error) {
	panic("unexpected condition")
}

func TestExecutorToolFailure(t *testing.T) {
	r := testRegistry(t, "http://localhost:1", "key")
	r.register(failingTool{})
	r.register(panickyTool{})
	exec := NewExecutor(r, testLogger())

	t.Run("error return becomes error envelope", func(t *testing.T) {
		res := exec.Execute(context.Background(), "failing", map[string]any{})
		if res.Status != StatusError || res.Tool != "failing" {
			t.Errorf("unexpected envelope: %+v", res)
		}
		if res.Message != "Error executing tool: boom" {
			t.Errorf("unexpected message: %q", res.Message)
		}
	})

	t.Run("panic is contained", func(t *testing.T) {
		res := exec.Execute(context.Background(), "panicky", map[string]any{})
		if res.Status != StatusError || res.Tool != "panicky" {
			t.Errorf("unexpected envelope: %+v", res)
		}
	})
}

func TestExecutorSuccessEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","shortName":"Apple Inc.","currency":"USD","regularMarketPrice":150.25}],"error":null}}`)
	}))
	defer srv.Close()

	r := testRegistry(t, srv.URL, "key")
	exec := NewExecutor(r, testLogger())

	args := map[string]any{"ticker": "AAPL"}
	res := exec.Execute(context.Background(), StockToolName, args)
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Tool != StockToolName {
		t.Errorf("expected echoed tool name, got %q", res.Tool)
	}
	if res.Input["ticker"] != "AAPL" {
		t.Errorf("expected echoed input, got %v", res.Input)
	}
	payload, ok := res.Output.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", res.Output)
	}
	if payload["current_price"] != 150.25 {
		t.Errorf("expected price 150.25, got %v", payload["current_price"])
	}
}

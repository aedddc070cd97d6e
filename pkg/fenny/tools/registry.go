// registry.go holds the set of available tools. The registry is built once
// at startup and read-only afterwards.
package tools

import (
	"log/slog"
	"net/http"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

// Registry indexes tools by name, preserving registration order.
type Registry struct {
	tools  map[string]Tool
	names  []string
	logger *slog.Logger
}

// NewRegistry constructs every known tool. A construction failure for one
// tool is logged and that tool is simply absent; startup never aborts over
// a single tool.
func NewRegistry(cfg config.ToolsConfig, client *http.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With("component", "tools"),
	}

	if tool, err := NewStockTool(cfg.Stocks, client, logger); err != nil {
		r.logger.Warn("could not load stock tool", "error", err)
	} else {
		r.register(tool)
	}

	if tool, err := NewCurrencyTool(cfg.ExchangeRate, client, logger); err != nil {
		r.logger.Warn("could not load currency tool", "error", err)
	} else {
		r.register(tool)
	}

	return r
}

func (r *Registry) register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.names = append(r.names, name)
	}
	r.tools[name] = t
	r.logger.Debug("tool registered", "name", name)
}

// Get returns the tool by name, or nil when absent.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// List returns descriptors for all tools, in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		out = append(out, Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.tools)
}

// executor.go dispatches tool invocations and wraps every outcome in a
// uniform success/error envelope. The executor never returns a Go error
// for a tool failure; failures become error envelopes.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the uniform envelope around one tool invocation.
//
// Success: {status, tool, input, output}. Error: {status, tool?, message}.
// The unknown-tool error carries no tool field, matching the wire contract
// consumed by the router.
type Result struct {
	Status  string         `json:"status"`
	Tool    string         `json:"tool,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
	Output  any            `json:"output,omitempty"`
	Message string         `json:"message,omitempty"`
}

// OK reports whether the envelope carries a successful invocation.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Executor runs tools from a registry. Stateless between calls.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: registry,
		logger:   logger.With("component", "executor"),
	}
}

// Execute runs the named tool with the given argument map.
//
// An unknown tool yields an error envelope listing the available tools
// without invoking anything. A tool-returned error is converted into an
// error envelope carrying the tool name and the error text. A panicking
// tool is contained the same way.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (result Result) {
	tool := e.registry.Get(name)
	if tool == nil {
		e.logger.Error("tool not found", "name", name)
		return Result{
			Status: StatusError,
			Message: fmt.Sprintf("Tool '%s' not found. Available tools: %s",
				name, strings.Join(e.registry.Names(), ", ")),
		}
	}

	e.logger.Info("executing tool", "name", name, "input", args)

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("tool panicked", "name", name, "panic", rec)
			result = Result{
				Status:  StatusError,
				Tool:    name,
				Message: fmt.Sprintf("Error executing tool: %v", rec),
			}
		}
	}()

	output, err := tool.Run(ctx, args)
	if err != nil {
		e.logger.Error("tool execution failed", "name", name, "error", err)
		return Result{
			Status:  StatusError,
			Tool:    name,
			Message: fmt.Sprintf("Error executing tool: %s", err),
		}
	}

	return Result{
		Status: StatusSuccess,
		Tool:   name,
		Input:  args,
		Output: output,
	}
}

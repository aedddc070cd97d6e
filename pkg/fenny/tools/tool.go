// Package tools implements the tool layer of the Fenny backend: a registry
// of named capabilities (stock quotes, currency conversion) and an executor
// that dispatches invocations and wraps results in a uniform envelope.
package tools

import "context"

// ParamSpec describes one parameter of a tool.
type ParamSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is a named capability with a parameter schema and a synchronous
// invoke contract. Run never panics; domain-level failures are reported
// inside the returned payload, an error return is reserved for invocation
// failures the tool could not express as a payload.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]ParamSpec
	Run(ctx context.Context, args map[string]any) (any, error)
}

// Descriptor is the discovery listing for one tool.
type Descriptor struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]ParamSpec `json:"parameters"`
}

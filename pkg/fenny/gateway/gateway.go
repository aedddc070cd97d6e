// Package gateway provides the HTTP API for the Fenny backend.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fenny-ai/fenny/pkg/fenny/assistant"
	"github.com/fenny-ai/fenny/pkg/fenny/config"
	"github.com/fenny-ai/fenny/pkg/fenny/media"
	"github.com/fenny-ai/fenny/pkg/fenny/session"
	"github.com/fenny-ai/fenny/pkg/fenny/tools"
)

// Gateway is the HTTP server wiring sessions, uploads and the assistant.
type Gateway struct {
	appName   string
	config    config.GatewayConfig
	store     *session.Store
	assistant *assistant.Assistant
	registry  *tools.Registry
	validator *media.Validator
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// New creates a Gateway. All collaborators are injected; the gateway owns
// no global state.
func New(cfg *config.Config, store *session.Store, asst *assistant.Assistant, registry *tools.Registry, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	gwCfg := cfg.Gateway
	if gwCfg.Address == "" {
		gwCfg.Address = ":8090"
	}
	return &Gateway{
		appName:   cfg.Name,
		config:    gwCfg,
		store:     store,
		assistant: asst,
		registry:  registry,
		validator: media.NewValidator(cfg.Uploads),
		logger:    logger.With("component", "gateway"),
	}
}

// Handler builds the full middleware-wrapped route handler. Exposed so
// tests can drive the gateway through httptest without binding a port.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", g.handleIndex)
	mux.HandleFunc("/api/chat", g.handleChat)
	mux.HandleFunc("/api/clear", g.handleClear)
	mux.HandleFunc("/api/health", g.handleHealth)

	return g.recoverMiddleware(g.securityHeadersMiddleware(g.corsMiddleware(g.authMiddleware(mux))))
}

// Start starts the HTTP server in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.startedAt = time.Now()
	g.server = &http.Server{
		Addr:    g.config.Address,
		Handler: g.Handler(),
	}

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("gateway server error", "error", err)
		}
	}()
	g.logger.Info("gateway started", "address", g.config.Address)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	g.logger.Info("gateway stopping...")
	return g.server.Shutdown(ctx)
}

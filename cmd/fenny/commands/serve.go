package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenny-ai/fenny/pkg/fenny/assistant"
	"github.com/fenny-ai/fenny/pkg/fenny/config"
	"github.com/fenny-ai/fenny/pkg/fenny/gateway"
	"github.com/fenny-ai/fenny/pkg/fenny/llm"
	"github.com/fenny-ai/fenny/pkg/fenny/session"
	"github.com/fenny-ai/fenny/pkg/fenny/tools"
)

// newServeCmd creates the `fenny serve` command that runs the backend.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP backend",
		Long: `Start the Fenny backend: the chat frontend, the JSON API and the
session store, with live quote and conversion tools.

Examples:
  fenny serve
  fenny serve --config ./config.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := buildLogger(cmd, cfg)
	config.ResolveSecrets(cfg, logger)

	store := session.NewStore(cfg.Session.SessionExpiry(), logger)
	registry := tools.NewRegistry(cfg.Tools, nil, logger)
	executor := tools.NewExecutor(registry, logger)
	llmClient := llm.NewClient(cfg.LLM, logger)
	asst := assistant.New(assistant.NewKeywordClassifier(), registry, executor, llmClient, logger)
	gw := gateway.New(cfg, store, asst, registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupInterval, err := time.ParseDuration(cfg.Session.CleanupInterval)
	if err != nil {
		logger.Warn("invalid cleanup interval, using 1h", "value", cfg.Session.CleanupInterval)
		cleanupInterval = time.Hour
	}
	if err := store.StartCleanup(cleanupInterval); err != nil {
		return fmt.Errorf("starting session cleanup: %w", err)
	}

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("starting gateway: %w", err)
	}

	logger.Info("Fenny running. Press Ctrl+C to stop.",
		"name", cfg.Name,
		"address", cfg.Gateway.Address,
		"tools", registry.Names(),
		"llm_available", asst.LLMAvailable(),
		"max_file_size_mb", cfg.Uploads.MaxFileSize/1024/1024,
		"max_files_per_conversation", cfg.Uploads.MaxFilesPerConversation,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	done := make(chan struct{})
	go func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = gw.Stop(shutdownCtx)
		store.StopCleanup(shutdownCtx)
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}

	return nil
}

// resolveConfig loads config from the --config flag, a discovered file, or
// defaults when no file exists.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	if found := config.FindConfigFile(); found != "" {
		cfg, err := config.LoadFromFile(found)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", found, err)
		}
		slog.Info("config loaded", "path", found)
		return cfg, nil
	}

	return config.DefaultConfig(), nil
}

// buildLogger constructs the slog logger from the logging config and the
// --verbose flag.
func buildLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	switch {
	case verbose || cfg.Logging.Level == "debug":
		logLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		logLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		logLevel = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}

// apiBase returns the local API root for client commands, honoring the
// configured listen address.
func apiBase(cfg *config.Config) string {
	addr := cfg.Gateway.Address
	if addr == "" {
		addr = ":8090"
	}
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// Package llm implements the fallback text-completion client used when no
// tool intent matches a message. It speaks the OpenAI-compatible
// /completions protocol, which covers llama.cpp server (the runtime the
// finance-chat GGUF model ships on) as well as hosted providers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

// defaultStop are the sequences that terminate generation. They match the
// finance-chat model's conversation format.
var defaultStop = []string{"</s>", "User:", "Assistant:"}

// Client is the completion client. Safe for concurrent use.
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	enabled     bool

	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a completion client from config.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		enabled:     cfg.Enabled && cfg.BaseURL != "",
		httpClient: &http.Client{
			// No global timeout; local model inference can take tens of
			// seconds. Callers control deadlines through context.
			Transport: &http.Transport{
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       120 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 180 * time.Second,
			},
		},
		logger: logger.With("component", "llm"),
	}
}

// Available reports whether the fallback can be invoked at all.
func (c *Client) Available() bool {
	return c.enabled
}

// completionRequest is the OpenAI-compatible /completions request body.
type completionRequest struct {
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete generates a completion for the given prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm fallback is disabled")
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        0.95,
		Stop:        defaultStop,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	endpoint := c.baseURL + "/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("requesting completion", "endpoint", endpoint, "prompt_len", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d: %s",
			resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response carried no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Text)
	c.logger.Debug("completion received", "len", len(text))
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

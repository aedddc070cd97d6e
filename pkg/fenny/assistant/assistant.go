// Package assistant implements the routing core of the Fenny backend:
// classify an inbound message, invoke the matching tool through the
// executor, unwrap its result envelope and format the reply, falling
// back to the LLM for everything else.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/fenny-ai/fenny/pkg/fenny/llm"
	"github.com/fenny-ai/fenny/pkg/fenny/session"
	"github.com/fenny-ai/fenny/pkg/fenny/tools"
)

// Greeting is the fixed reply for simple salutations; it short-circuits
// the LLM.
const Greeting = "Hi, I'm Fenny! How can I help you today? Feel free to ask me any question on finance, " +
	"investing, and also feel free to upload any financial documents for analysis."

// FallbackApology is returned when no tool matched and the LLM is
// unavailable.
const FallbackApology = "I'm sorry, I can't answer that right now. The assistant model is unavailable. " +
	"Please try again later."

// ErrorApology is the generic reply for any unexpected failure during
// composition. Nothing in the routing path is allowed to surface a raw
// error to the user.
const ErrorApology = "I encountered an error while processing your request. Please try again."

// warnPrefix marks degraded replies built from tool error envelopes.
const warnPrefix = "⚠️ "

// Assistant composes the classifier, tool layer and LLM fallback.
type Assistant struct {
	classifier Classifier
	registry   *tools.Registry
	executor   *tools.Executor
	llm        *llm.Client
	logger     *slog.Logger
}

// New creates an assistant. The llm client may be nil; unclassified
// messages then get the fixed apology.
func New(classifier Classifier, registry *tools.Registry, executor *tools.Executor, llmClient *llm.Client, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		classifier: classifier,
		registry:   registry,
		executor:   executor,
		llm:        llmClient,
		logger:     logger.With("component", "assistant"),
	}
}

// LLMAvailable reports whether the fallback model can be reached.
func (a *Assistant) LLMAvailable() bool {
	return a.llm != nil && a.llm.Available()
}

// Respond produces the reply for one inbound message. The caller is
// expected to have appended the user message to the session history
// already. Respond never panics past this boundary: any failure in
// composition degrades to a generic apology.
func (a *Assistant) Respond(ctx context.Context, sess *session.Session, message string) (reply string) {
	a.logger.Info("user message", "session_id", sess.ID, "message", message)

	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("panic during response composition",
				"session_id", sess.ID, "panic", rec, "stack", string(debug.Stack()))
			reply = ErrorApology
		}
		a.logger.Info("assistant reply", "session_id", sess.ID, "response", reply)
	}()

	if isGreeting(message) {
		return Greeting
	}

	intent := a.classifier.Classify(message)
	switch intent.Kind {
	case IntentStock:
		if a.registry.Has(tools.StockToolName) {
			return a.respondStock(ctx, intent)
		}
	case IntentCurrency:
		if a.registry.Has(tools.CurrencyToolName) {
			return a.respondCurrency(ctx, intent)
		}
	}

	return a.respondFallback(ctx, sess)
}

// respondStock invokes the stock tool and formats the quote. The stock
// tool returns its payload directly inside the executor envelope, so only
// one unwrap level applies here.
func (a *Assistant) respondStock(ctx context.Context, intent Intent) string {
	res := a.executor.Execute(ctx, tools.StockToolName, map[string]any{
		"ticker": intent.Ticker,
	})
	if !res.OK() {
		return warnPrefix + res.Message
	}

	payload, ok := res.Output.(map[string]any)
	if !ok {
		return warnPrefix + "The stock service returned data I couldn't read. Please try again."
	}
	if errText, hasErr := payload["error"]; hasErr {
		return fmt.Sprintf("%s%v", warnPrefix, errText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v (%v)\n", payload["name"], payload["ticker"])
	fmt.Fprintf(&b, "Price: %v %v\n", payload["current_price"], payload["currency"])
	fmt.Fprintf(&b, "Day range: %v\n", payload["day_range"])
	fmt.Fprintf(&b, "Market cap: %v", payload["market_cap"])
	if pe, ok := payload["pe_ratio"]; ok && pe != "N/A" && pe != nil {
		fmt.Fprintf(&b, "\nP/E ratio: %.2f", toFloat(pe))
	}
	return b.String()
}

// respondCurrency invokes the currency tool and formats the conversion.
// The currency tool wraps its payload in its own status/output envelope,
// so this path unwraps two levels instead of one.
func (a *Assistant) respondCurrency(ctx context.Context, intent Intent) string {
	res := a.executor.Execute(ctx, tools.CurrencyToolName, map[string]any{
		"base":   intent.Base,
		"target": intent.Target,
		"amount": intent.Amount,
	})
	if !res.OK() {
		return warnPrefix + res.Message
	}

	inner, ok := res.Output.(map[string]any)
	if !ok {
		return warnPrefix + "The currency service returned data I couldn't read. Please try again."
	}
	if inner["status"] != tools.StatusSuccess {
		return fmt.Sprintf("%s%v", warnPrefix, inner["message"])
	}

	payload, ok := inner["output"].(map[string]any)
	if !ok {
		return warnPrefix + "The currency service returned data I couldn't read. Please try again."
	}
	if _, hasBase := payload["base"]; !hasBase {
		return warnPrefix + "The currency service returned incomplete data. Please try again."
	}
	if _, hasTarget := payload["target"]; !hasTarget {
		return warnPrefix + "The currency service returned incomplete data. Please try again."
	}

	reply := fmt.Sprintf("%v %v = %v %v (rate: %v)",
		payload["amount"], payload["base"], payload["converted_amount"], payload["target"], payload["rate"])
	if ts, ok := payload["timestamp"].(string); ok && ts != "" && ts != "N/A" {
		reply += fmt.Sprintf("\nRates as of %s", ts)
	}
	return reply
}

// respondFallback builds the conversation prompt and asks the LLM.
func (a *Assistant) respondFallback(ctx context.Context, sess *session.Session) string {
	if !a.LLMAvailable() {
		return FallbackApology
	}

	prompt := llm.BuildPrompt(sess.History())
	text, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("llm fallback failed", "session_id", sess.ID, "error", err)
		return ErrorApology
	}
	return stripActionTokens(text)
}

// isGreeting matches the simple salutations that get the canned greeting.
func isGreeting(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "hi", "hello", "hey":
		return true
	}
	return false
}

// stripActionTokens removes residual tool-call-style output the model
// sometimes emits ("Action:", "Action Input:"), truncating from the
// earliest occurrence.
func stripActionTokens(text string) string {
	cut := len(text)
	for _, marker := range []string{"Action:", "Action Input:"} {
		if idx := strings.Index(text, marker); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(text[:cut])
}

// toFloat coerces payload numbers for formatting; non-numeric input
// yields zero and callers guard against that with the N/A check.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// classifier.go implements intent classification for inbound messages.
// The classifier is a pluggable strategy so the keyword heuristics can be
// swapped for a model-based classifier without touching the router.
package assistant

import (
	"strconv"
	"strings"
)

// IntentKind tags the classified purpose of a message.
type IntentKind int

const (
	// IntentNone means no tool intent matched; the message goes to the
	// LLM fallback.
	IntentNone IntentKind = iota

	// IntentStock is a stock quote lookup.
	IntentStock

	// IntentCurrency is a currency conversion or rate query.
	IntentCurrency
)

// Intent is the tagged classification result. Only the fields of the
// matching kind are meaningful.
type Intent struct {
	Kind IntentKind

	// Ticker is set for IntentStock.
	Ticker string

	// Base, Target and Amount are set for IntentCurrency.
	Base   string
	Target string
	Amount float64
}

// Classifier maps a free-text message to an Intent.
type Classifier interface {
	Classify(message string) Intent
}

// knownTickers is the fixed candidate list scanned in order; the first
// symbol present in the message wins.
var knownTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX",
}

// knownCurrencies is the fixed currency-code list scanned in order.
var knownCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY", "INR", "BRL",
}

// KeywordClassifier classifies by substring heuristics. Branches are
// evaluated in fixed priority order (stock, then currency, then none),
// so a message matching both goes to the stock branch.
type KeywordClassifier struct {
	tickers    []string
	currencies []string
}

// NewKeywordClassifier returns the default heuristic classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		tickers:    knownTickers,
		currencies: knownCurrencies,
	}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(message string) Intent {
	lower := strings.ToLower(message)

	// Stock intent: "stock" substring (case-insensitive) or a known ticker
	// (case-sensitive, the raw message).
	if strings.Contains(lower, "stock") || c.firstMatch(message, c.tickers) != "" {
		ticker := c.firstMatch(message, c.tickers)
		if ticker == "" {
			ticker = "AAPL"
		}
		return Intent{Kind: IntentStock, Ticker: ticker}
	}

	// Currency intent: "currency"/"exchange" substrings (case-insensitive)
	// or a known currency code (case-sensitive).
	if strings.Contains(lower, "currency") || strings.Contains(lower, "exchange") ||
		c.firstMatch(message, c.currencies) != "" {
		codes := c.allMatches(message, c.currencies)
		base, target := "USD", "EUR"
		if len(codes) > 0 {
			base = codes[0]
		}
		if len(codes) > 1 {
			target = codes[1]
		}
		return Intent{
			Kind:   IntentCurrency,
			Base:   base,
			Target: target,
			Amount: extractAmount(message),
		}
	}

	return Intent{Kind: IntentNone}
}

// firstMatch returns the first candidate present in the message, scanning
// candidates in list order.
func (c *KeywordClassifier) firstMatch(message string, candidates []string) string {
	for _, cand := range candidates {
		if strings.Contains(message, cand) {
			return cand
		}
	}
	return ""
}

// allMatches returns every candidate present in the message, in list order.
func (c *KeywordClassifier) allMatches(message string, candidates []string) []string {
	var out []string
	for _, cand := range candidates {
		if strings.Contains(message, cand) {
			out = append(out, cand)
		}
	}
	return out
}

// extractAmount scans whitespace-split tokens in order and returns the
// first one that parses as a non-negative decimal number (at most one
// decimal point). Defaults to 1.0 when no token qualifies.
func extractAmount(message string) float64 {
	for _, token := range strings.Fields(message) {
		if v, ok := parseDecimal(token); ok {
			return v
		}
	}
	return 1.0
}

// parseDecimal accepts plain unsigned decimals like "100" or "99.5".
// Signs, exponents and multiple dots are rejected.
func parseDecimal(token string) (float64, bool) {
	dots := 0
	digits := 0
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Package provider abstracts the generative-model backends behind a single
// two-operation capability set. Clients are deliberately thin: they perform
// one HTTP round-trip per call and never retry, so retry policy lives in one
// place (the structured-output mediator) and provider error text survives
// intact for diagnostics.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client is the uniform interface over heterogeneous model backends.
type Client interface {
	// GenerateText sends a prompt and returns the raw completion text.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Healthy is a best-effort reachability probe. It never panics and
	// reports false on any failure.
	Healthy(ctx context.Context) bool
}

// RateLimitError marks a provider-reported rate limit. The mediator retries
// these on a separate backoff budget; everything else propagates.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Message)
}

// IsRateLimit reports whether err is (or wraps) a rate-limit failure.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// rateLimitMarkers are payload substrings providers use to signal throttling
// when the HTTP status alone is not 429.
var rateLimitMarkers = []string{
	"RESOURCE_EXHAUSTED",
	"rate limit",
	"rate_limit",
	"Too Many Requests",
}

// classifyStatus converts a non-200 response into the appropriate error.
func classifyStatus(providerName string, status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if status == http.StatusTooManyRequests {
		return &RateLimitError{Provider: providerName, Message: text}
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(text, marker) {
			return &RateLimitError{Provider: providerName, Message: text}
		}
	}
	return fmt.Errorf("API request failed with status %d: %s", status, text)
}

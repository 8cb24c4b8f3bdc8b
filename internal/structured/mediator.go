package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gridsmith/internal/logging"
	"gridsmith/internal/provider"
)

// ErrAttemptsExhausted marks a terminal mediation failure. The last
// underlying cause is attached; callers degrade gracefully rather than crash.
var ErrAttemptsExhausted = errors.New("structured generation attempts exhausted")

// Options bounds the retry loop. Zero values take the defaults below.
type Options struct {
	MaxAttempts       int           // parse/shape attempt budget (default 3)
	RateLimitAttempts int           // rate-limit backoff budget (default 5)
	BaseDelay         time.Duration // first backoff delay (default 1s)
	MaxDelay          time.Duration // backoff cap (default 60s)
	Jitter            float64       // symmetric jitter fraction (default 0.2)

	// Sleep is swappable in tests so backoff is observable without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Defaults for the retry loop.
const (
	DefaultMaxAttempts       = 3
	DefaultRateLimitAttempts = 5
	DefaultBaseDelay         = 1 * time.Second
	DefaultMaxDelay          = 60 * time.Second
	DefaultJitter            = 0.2
)

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RateLimitAttempts <= 0 {
		o.RateLimitAttempts = DefaultRateLimitAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Jitter <= 0 {
		o.Jitter = DefaultJitter
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

// Mediator wraps provider calls with schema-aware prompt augmentation,
// response cleaning, parsing, shape validation, and bounded retry. It holds
// no mutable state: any number of Generate calls may be in flight at once,
// and attempts within a single call are strictly sequential.
type Mediator struct {
	opts Options
}

// NewMediator builds a mediator with the given options.
func NewMediator(opts Options) *Mediator {
	return &Mediator{opts: opts.withDefaults()}
}

// Generate runs the mediation loop: augment the prompt with the schema's
// example skeleton, call the provider, clean and parse the response, and
// validate its shape. Parse and shape failures consume the general attempt
// budget; provider rate limits are retried with exponential backoff on a
// separate, larger budget; any other transport error propagates at once.
// The first conforming value is returned immediately.
func (m *Mediator) Generate(ctx context.Context, client provider.Client, prompt string, schema Schema) (map[string]any, error) {
	fullPrompt := prompt + schema.PromptSuffix()
	state := retryState{}

	logging.MediatorDebug("generate: schema=%s prompt_len=%d", schema.Name, len(fullPrompt))

	for {
		raw, err := client.GenerateText(ctx, fullPrompt)
		if err != nil {
			if !provider.IsRateLimit(err) {
				// A genuinely broken backend: burning the attempt budget
				// on it would only delay the caller.
				logging.MediatorError("generate: transport failure schema=%s: %v", schema.Name, err)
				return nil, fmt.Errorf("provider call failed: %w", err)
			}
			state.rateLimited++
			state.lastErr = err
			if state.rateLimited >= m.opts.RateLimitAttempts {
				logging.MediatorError("generate: rate-limit budget exhausted schema=%s", schema.Name)
				return nil, fmt.Errorf("%w after %d rate-limited calls: %w", ErrAttemptsExhausted, state.rateLimited, state.lastErr)
			}
			delay := backoffDelay(state.rateLimited, m.opts.BaseDelay, m.opts.MaxDelay, m.opts.Jitter)
			logging.MediatorWarn("generate: rate limited, retry %d/%d in %v", state.rateLimited, m.opts.RateLimitAttempts, delay)
			if err := m.opts.Sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		value, err := decode(raw, schema)
		if err == nil {
			// At-most-once success: return immediately, never re-apply.
			logging.Mediator("generate: schema=%s succeeded on attempt %d", schema.Name, state.attempts+1)
			return value, nil
		}

		state.attempts++
		state.lastErr = err
		logging.MediatorWarn("generate: attempt %d/%d failed schema=%s: %v", state.attempts, m.opts.MaxAttempts, schema.Name, err)
		if state.attempts >= m.opts.MaxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, state.attempts, state.lastErr)
		}
		delay := backoffDelay(state.attempts, m.opts.BaseDelay, m.opts.MaxDelay, m.opts.Jitter)
		if err := m.opts.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// GenerateAs mediates into a typed destination via a JSON round-trip after
// the shape has been validated.
func (m *Mediator) GenerateAs(ctx context.Context, client provider.Client, prompt string, schema Schema, dest any) error {
	value, err := m.Generate(ctx, client, prompt, schema)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to re-encode structured value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode structured value: %w", err)
	}
	return nil
}

// decode cleans, parses, and shape-checks one raw response.
func decode(raw string, schema Schema) (map[string]any, error) {
	cleaned := CleanResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}
	var value map[string]any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := schema.Check(value); err != nil {
		return nil, fmt.Errorf("response does not match schema %s: %w", schema.Name, err)
	}
	return value, nil
}

package provider

import (
	"fmt"

	"gridsmith/internal/config"
)

// New creates a client from a resolved provider config. Selection happens
// once per mediator invocation and is never cached, so a failing backend
// never corrupts state shared with other in-flight calls.
func New(cfg config.ProviderConfig) (Client, error) {
	switch cfg.Kind {
	case config.ProviderOllama:
		return NewOllamaClientWithConfig(OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}), nil

	case config.ProviderGemini:
		return NewGeminiClientWithConfig(GeminiConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}), nil

	case config.ProviderOpenAI:
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Kind)
	}
}

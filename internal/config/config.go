// Package config loads gridsmith configuration from .gridsmith/config.yaml
// with environment-variable fallbacks. Provider selection is resolved per
// mediator call, never cached, so a config change or provider failure is
// isolated to the calls that observe it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider kinds supported by the backend factory.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ProviderConfig is the resolved configuration for one backend.
type ProviderConfig struct {
	Kind        string        `yaml:"kind"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
}

// BackendConfig is the per-provider block of the config file.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"` // Go duration string, e.g. "90s"
}

// LoggingConfig is read by internal/logging directly; it is mirrored here so
// a written config file round-trips.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories,omitempty"`
	Level      string          `yaml:"level,omitempty"`
}

// UserConfig is the on-disk configuration.
type UserConfig struct {
	Provider    string        `yaml:"provider"`
	Temperature float64       `yaml:"temperature"`
	Ollama      BackendConfig `yaml:"ollama,omitempty"`
	Gemini      BackendConfig `yaml:"gemini,omitempty"`
	OpenAI      BackendConfig `yaml:"openai,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty"`
}

// Defaults per backend.
const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.1"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultTimeout       = 90 * time.Second
	defaultTemperature   = 0.2
)

// DefaultUserConfigPath returns .gridsmith/config.yaml under the workspace.
func DefaultUserConfigPath(workspace string) string {
	return filepath.Join(workspace, ".gridsmith", "config.yaml")
}

// Load reads the config file. A missing file yields defaults, not an error.
func Load(path string) (*UserConfig, error) {
	cfg := &UserConfig{Temperature: defaultTemperature}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	return cfg, nil
}

// DetectProvider resolves the active provider.
// Priority: explicit kind argument > GRIDSMITH_PROVIDER > config file >
// env API keys (GEMINI > OPENAI) > local ollama.
func DetectProvider(cfg *UserConfig, kind string) (ProviderConfig, error) {
	if kind == "" {
		kind = os.Getenv("GRIDSMITH_PROVIDER")
	}
	if kind == "" {
		kind = cfg.Provider
	}
	if kind == "" {
		if os.Getenv("GEMINI_API_KEY") != "" {
			kind = ProviderGemini
		} else if os.Getenv("OPENAI_API_KEY") != "" {
			kind = ProviderOpenAI
		} else {
			kind = ProviderOllama
		}
	}
	return cfg.Resolve(kind)
}

// Resolve materializes a full ProviderConfig for the given kind, applying
// file values, env fallbacks, and defaults.
func (c *UserConfig) Resolve(kind string) (ProviderConfig, error) {
	pc := ProviderConfig{Kind: kind, Temperature: c.Temperature, Timeout: defaultTimeout}

	var backend BackendConfig
	switch kind {
	case ProviderOllama:
		backend = c.Ollama
		pc.BaseURL = firstNonEmpty(backend.BaseURL, os.Getenv("OLLAMA_BASE_URL"), defaultOllamaBaseURL)
		pc.Model = firstNonEmpty(backend.Model, defaultOllamaModel)
	case ProviderGemini:
		backend = c.Gemini
		pc.BaseURL = firstNonEmpty(backend.BaseURL, defaultGeminiBaseURL)
		pc.Model = firstNonEmpty(backend.Model, defaultGeminiModel)
		pc.APIKey = firstNonEmpty(backend.APIKey, os.Getenv("GEMINI_API_KEY"))
		if pc.APIKey == "" {
			return pc, fmt.Errorf("gemini provider selected but no API key configured (set GEMINI_API_KEY)")
		}
	case ProviderOpenAI:
		backend = c.OpenAI
		pc.BaseURL = firstNonEmpty(backend.BaseURL, defaultOpenAIBaseURL)
		pc.Model = firstNonEmpty(backend.Model, defaultOpenAIModel)
		pc.APIKey = firstNonEmpty(backend.APIKey, os.Getenv("OPENAI_API_KEY"))
		if pc.APIKey == "" {
			return pc, fmt.Errorf("openai provider selected but no API key configured (set OPENAI_API_KEY)")
		}
	default:
		return pc, fmt.Errorf("unknown provider: %s (valid: ollama, gemini, openai)", kind)
	}

	if backend.Timeout != "" {
		d, err := time.ParseDuration(backend.Timeout)
		if err != nil {
			return pc, fmt.Errorf("invalid %s timeout %q: %w", kind, backend.Timeout, err)
		}
		pc.Timeout = d
	}
	return pc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".gridsmith", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Provider)
	assert.Equal(t, defaultTemperature, cfg.Temperature)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
provider: gemini
temperature: 0.7
gemini:
  model: gemini-2.5-pro
  api_key: file-key
  timeout: 30s
logging:
  debug_mode: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.True(t, cfg.Logging.DebugMode)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	t.Run("ollama defaults", func(t *testing.T) {
		cfg := &UserConfig{Temperature: 0.2}
		pc, err := cfg.Resolve(ProviderOllama)
		require.NoError(t, err)
		assert.Equal(t, defaultOllamaBaseURL, pc.BaseURL)
		assert.Equal(t, defaultOllamaModel, pc.Model)
		assert.Equal(t, defaultTimeout, pc.Timeout)
	})

	t.Run("file values win over defaults", func(t *testing.T) {
		cfg := &UserConfig{
			Temperature: 0.2,
			Ollama:      BackendConfig{BaseURL: "http://gpu-box:11434", Model: "mistral", Timeout: "15s"},
		}
		pc, err := cfg.Resolve(ProviderOllama)
		require.NoError(t, err)
		assert.Equal(t, "http://gpu-box:11434", pc.BaseURL)
		assert.Equal(t, "mistral", pc.Model)
		assert.Equal(t, 15*time.Second, pc.Timeout)
	})

	t.Run("gemini requires a key", func(t *testing.T) {
		cfg := &UserConfig{}
		_, err := cfg.Resolve(ProviderGemini)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("gemini key from env", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-key")
		cfg := &UserConfig{}
		pc, err := cfg.Resolve(ProviderGemini)
		require.NoError(t, err)
		assert.Equal(t, "env-key", pc.APIKey)
	})

	t.Run("openai file key wins over env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")
		cfg := &UserConfig{OpenAI: BackendConfig{APIKey: "file-key"}}
		pc, err := cfg.Resolve(ProviderOpenAI)
		require.NoError(t, err)
		assert.Equal(t, "file-key", pc.APIKey)
	})

	t.Run("bad timeout string", func(t *testing.T) {
		cfg := &UserConfig{Ollama: BackendConfig{Timeout: "ninety"}}
		_, err := cfg.Resolve(ProviderOllama)
		require.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		cfg := &UserConfig{}
		_, err := cfg.Resolve("anthropic")
		require.Error(t, err)
	})
}

func TestDetectProvider(t *testing.T) {
	t.Setenv("GRIDSMITH_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	t.Run("falls back to ollama", func(t *testing.T) {
		pc, err := DetectProvider(&UserConfig{}, "")
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, pc.Kind)
	})

	t.Run("explicit kind wins over everything", func(t *testing.T) {
		t.Setenv("GRIDSMITH_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "k")
		pc, err := DetectProvider(&UserConfig{Provider: ProviderGemini}, ProviderOllama)
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, pc.Kind)
	})

	t.Run("env var wins over config file", func(t *testing.T) {
		t.Setenv("GRIDSMITH_PROVIDER", ProviderOllama)
		pc, err := DetectProvider(&UserConfig{Provider: ProviderGemini}, "")
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, pc.Kind)
	})

	t.Run("api key implies provider", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "k")
		pc, err := DetectProvider(&UserConfig{}, "")
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, pc.Kind)
	})
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "provider: ollama\n")

	var loads int
	w, err := NewWatcher(path, func(*UserConfig) { loads++ })
	require.NoError(t, err)
	assert.Equal(t, 1, loads, "onLoad fires once for the initial load")
	assert.Equal(t, ProviderOllama, w.Current().Provider)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register before rewriting.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Current().Provider == ProviderOpenAI
	}, 3*time.Second, 20*time.Millisecond, "rewrite should be picked up")

	// A malformed rewrite keeps the previous config.
	require.NoError(t, os.WriteFile(path, []byte("provider: [broken"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, ProviderOpenAI, w.Current().Provider)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

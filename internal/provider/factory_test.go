package provider

import (
	"testing"
	"time"

	"gridsmith/internal/config"
)

func TestNew(t *testing.T) {
	base := config.ProviderConfig{
		BaseURL:     "http://example.test",
		Model:       "m",
		APIKey:      "k",
		Timeout:     time.Second,
		Temperature: 0.2,
	}

	tests := []struct {
		kind    string
		wantErr bool
	}{
		{config.ProviderOllama, false},
		{config.ProviderGemini, false},
		{config.ProviderOpenAI, false},
		{"anthropic", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("kind "+tt.kind, func(t *testing.T) {
			cfg := base
			cfg.Kind = tt.kind
			client, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown provider kind")
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%s): %v", tt.kind, err)
			}
			if client == nil {
				t.Fatal("nil client")
			}
		})
	}
}

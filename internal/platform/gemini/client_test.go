package gemini

import (
	"context"
	"testing"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), nil, Config{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")
	cfg := ConfigFromEnv()
	if cfg.APIKey != "" || cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

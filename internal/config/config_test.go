package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HistoryDays != 30 {
		t.Errorf("expected 30 history days, got %d", cfg.HistoryDays)
	}
	if cfg.FetchParallelism <= 0 {
		t.Errorf("fetch parallelism must be positive, got %d", cfg.FetchParallelism)
	}
	if cfg.ResultCacheTTL != time.Hour {
		t.Errorf("expected 1h result cache TTL, got %v", cfg.ResultCacheTTL)
	}
	if cfg.LLMModel == "" {
		t.Error("expected a default LLM model")
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	t.Setenv("LLM_MODEL", "deepseek-chat")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("HISTORY_DAYS", "90")
	t.Setenv("VOICE_ENABLED", "true")

	cfg := DefaultConfig()

	if cfg.LLMProvider != "deepseek" {
		t.Errorf("expected provider deepseek, got %s", cfg.LLMProvider)
	}
	if cfg.LLMModel != "deepseek-chat" {
		t.Errorf("expected model deepseek-chat, got %s", cfg.LLMModel)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("expected 5s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.HistoryDays != 90 {
		t.Errorf("expected 90 history days, got %d", cfg.HistoryDays)
	}
	if !cfg.VoiceEnabled {
		t.Error("expected voice enabled")
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := &Config{LLMProvider: "openrouter", LLMModel: "openai/gpt-4o-mini"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing API key")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.LLMProvider = "something-else"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

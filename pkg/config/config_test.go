package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if !cfg.DemoMode {
		t.Error("Expected DemoMode to default to true")
	}

	if cfg.FixturesDir != "fixtures" {
		t.Errorf("Expected FixturesDir to be fixtures, got %s", cfg.FixturesDir)
	}

	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected DB MaxConns to be 10, got %d", cfg.Database.MaxConns)
	}

	if cfg.LLM.MaxConcurrent != 3 {
		t.Errorf("Expected LLM MaxConcurrent to be 3, got %d", cfg.LLM.MaxConcurrent)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestDemoModeForcedWithoutCredentials(t *testing.T) {
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("MOONSHOT_API_KEY", "")
	t.Setenv("HELIUS_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.DemoMode {
		t.Error("Expected DemoMode to be forced on without external credentials")
	}
}

func TestLiveModeWithLLMKey(t *testing.T) {
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("MOONSHOT_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DemoMode {
		t.Error("Expected DemoMode to be off with an LLM key")
	}

	if !cfg.HasLLM() {
		t.Error("Expected HasLLM() to be true")
	}
}

func TestValidationRejectsBadEnv(t *testing.T) {
	t.Setenv("ENV", "qa")

	if _, err := Load(); err == nil {
		t.Error("Expected Load() to fail for unknown ENV")
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(""); got != nil {
		t.Errorf("Expected nil for empty input, got %v", got)
	}

	got := splitList("a,,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
}

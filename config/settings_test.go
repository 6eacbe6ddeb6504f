package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable the config layer reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOOLLOOP_PROVIDER", "TOOLLOOP_LOG_LEVEL", "TOOLLOOP_TRANSCRIPT",
		"LLM_MAX_TOKENS", "LLM_TEMPERATURE", "AGENT_STEP_BUDGET",
		"TOOL_COMMAND_TIMEOUT_MS", "TOOL_MAX_OUTPUT_CHARS", "TOOL_TRUNCATION_MARKER",
		"OPENAI_MODEL", "OPENAI_API_KEY", "OPENAI_API_BASE",
		"ANTHROPIC_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL",
		"DEEPSEEK_MODEL", "DEEPSEEK_API_KEY", "GEMINI_MODEL", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	if s.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", s.LLM.Provider)
	}
	if s.Agent.StepBudget != 5 {
		t.Errorf("expected step budget 5, got %d", s.Agent.StepBudget)
	}
	if s.Tools.MaxOutputChars != 50000 {
		t.Errorf("expected 50000 output chars, got %d", s.Tools.MaxOutputChars)
	}
	if s.Tools.CommandTimeoutMs != 300000 {
		t.Errorf("expected 300000ms timeout, got %d", s.Tools.CommandTimeoutMs)
	}
}

func TestCompleteWithAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	s := Defaults()
	s.LLM.Provider = "claude"
	if err := s.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", s.LLM.Provider)
	}
	if s.LLM.APIKey != "test-key" {
		t.Errorf("expected 'test-key', got %q", s.LLM.APIKey)
	}
	if s.LLM.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected default model, got %q", s.LLM.Model)
	}
}

func TestCompleteUnknownProvider(t *testing.T) {
	clearEnv(t)
	s := Defaults()
	s.LLM.Provider = "unknown_provider"
	if err := s.Complete(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestCompleteModelFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_MODEL", "deepseek-reasoner")

	s := Defaults()
	s.LLM.Provider = "deepseek"
	if err := s.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.Model != "deepseek-reasoner" {
		t.Errorf("expected 'deepseek-reasoner', got %q", s.LLM.Model)
	}
}

func TestCompleteKeepsExplicitModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	s := Defaults()
	s.LLM.Model = "o3-mini"
	if err := s.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.Model != "o3-mini" {
		t.Errorf("expected flag model to win, got %q", s.LLM.Model)
	}
}

func TestCompleteBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_BASE", "http://localhost:11434/v1")

	s := Defaults()
	if err := s.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("expected base URL from env, got %q", s.LLM.BaseURL)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	clearEnv(t)
	s := Defaults()
	if err := s.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Validate()
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected error to name the variable, got %q", err.Error())
	}
}

func TestValidateStepBudget(t *testing.T) {
	s := Defaults()
	s.LLM.APIKey = "k"
	s.LLM.Model = "m"
	s.Agent.StepBudget = 0
	if err := s.Validate(); err == nil {
		t.Error("expected error for zero step budget")
	}
}

func TestValidateLogLevel(t *testing.T) {
	s := Defaults()
	s.LLM.APIKey = "k"
	s.LLM.Model = "m"
	s.LogLevel = "loud"
	if err := s.Validate(); err == nil {
		t.Error("expected error for bad log level")
	}

	s.LogLevel = "debug"
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOOLLOOP_PROVIDER", "gemini")
	t.Setenv("AGENT_STEP_BUDGET", "12")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("TOOL_TRUNCATION_MARKER", "true")

	s := Defaults()
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got %q", s.LLM.Provider)
	}
	if s.Agent.StepBudget != 12 {
		t.Errorf("expected step budget 12, got %d", s.Agent.StepBudget)
	}
	if s.LLM.MaxTokens != 2048 {
		t.Errorf("expected 2048 max tokens, got %d", s.LLM.MaxTokens)
	}
	if s.LLM.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", s.LLM.Temperature)
	}
	if !s.Tools.TruncationMarker {
		t.Error("expected truncation marker enabled")
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENT_STEP_BUDGET", "not_a_number")

	s := Defaults()
	if err := s.ApplyEnv(); err == nil {
		t.Error("expected error for invalid integer")
	}
}

func TestGetEnvFloat64Invalid(t *testing.T) {
	t.Setenv("TEST_FLOAT_INVALID", "not_a_float")
	if _, err := getEnvFloat64("TEST_FLOAT_INVALID", 0.0); err == nil {
		t.Error("expected error for invalid float")
	}
}

func TestLoadReadsWorkspaceFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "llm:\n  provider: deepseek\nagent:\n  step_budget: 9\ntools:\n  max_output_chars: 100\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LLM.Provider != "deepseek" {
		t.Errorf("expected provider 'deepseek', got %q", s.LLM.Provider)
	}
	if s.Agent.StepBudget != 9 {
		t.Errorf("expected step budget 9, got %d", s.Agent.StepBudget)
	}
	if s.Tools.MaxOutputChars != 100 {
		t.Errorf("expected 100 output chars, got %d", s.Tools.MaxOutputChars)
	}
	// untouched keys keep defaults
	if s.Tools.CommandTimeoutMs != 300000 {
		t.Errorf("expected default timeout, got %d", s.Tools.CommandTimeoutMs)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENT_STEP_BUDGET", "3")
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  step_budget: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(t.TempDir(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Agent.StepBudget != 3 {
		t.Errorf("expected env to win with 3, got %d", s.Agent.StepBudget)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  steps: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Defaults()
	if err := LoadFile(path, &s); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := Defaults()
	if err := LoadFile(path, &s); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFindDotEnvWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FindDotEnv(nested); got != filepath.Join(root, ".env") {
		t.Errorf("expected root .env, got %q", got)
	}
}

func TestFindDotEnvDepthLimit(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "1", "2", "3", "4", "5", "6")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FindDotEnv(nested); got == filepath.Join(root, ".env") {
		t.Error("expected .env beyond the search depth to be ignored")
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	content := "TOOLLOOP_TEST_SET=file\nTOOLLOOP_TEST_UNSET=file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOOLLOOP_TEST_SET", "process")
	t.Setenv("TOOLLOOP_TEST_UNSET", "")
	os.Unsetenv("TOOLLOOP_TEST_UNSET")

	path, err := LoadDotEnv(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == "" {
		t.Fatal("expected .env to be found")
	}
	if got := os.Getenv("TOOLLOOP_TEST_SET"); got != "process" {
		t.Errorf("expected process value to win, got %q", got)
	}
	if got := os.Getenv("TOOLLOOP_TEST_UNSET"); got != "file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	s := Defaults()
	s.LogLevel = "info"
	logger, err := s.NewLogger(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown", "step", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "step=1") {
		t.Errorf("expected structured attribute, got %q", out)
	}
}

func TestSupportedProvidersSorted(t *testing.T) {
	got := SupportedProviders()
	want := []string{"anthropic", "deepseek", "gemini", "openai"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

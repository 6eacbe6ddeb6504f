// Package config provides application settings.
//
// Settings are layered, later layers winning:
// - built-in defaults (Defaults)
// - an optional YAML file (LoadFile)
// - a .env file found by walking up from the workspace (LoadDotEnv)
// - environment variables (ApplyEnv)
// - command-line flags, applied by the caller
//
// Complete fills provider-dependent values (model, API key, base URL) once
// the provider is final; Validate then rejects unusable settings.

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrConfigurationMissing reports a required setting with no value.
var ErrConfigurationMissing = errors.New("configuration missing")

// Settings holds all application configuration.
type Settings struct {
	LLM        LLMConfig        `yaml:"llm"`
	Agent      AgentConfig      `yaml:"agent"`
	Tools      ToolsConfig      `yaml:"tools"`
	Transcript TranscriptConfig `yaml:"transcript"`
	LogLevel   string           `yaml:"log_level"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"-"` // environment only
	MaxTokens   uint32  `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig holds agent loop configuration.
type AgentConfig struct {
	StepBudget       int    `yaml:"step_budget"`
	SystemPromptFile string `yaml:"system_prompt_file"`
	EnableTodos      bool   `yaml:"enable_todos"`
}

// ToolsConfig holds tool execution limits.
type ToolsConfig struct {
	CommandTimeoutMs      int  `yaml:"command_timeout_ms"`
	MaxOutputChars        int  `yaml:"max_output_chars"`
	MaxCommandOutputBytes int  `yaml:"max_command_output_bytes"`
	TruncationMarker      bool `yaml:"truncation_marker"`
}

// TranscriptConfig holds transcript recording configuration.
type TranscriptConfig struct {
	// Path of the SQLite database. Empty disables recording.
	Path string `yaml:"path"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		LLM: LLMConfig{
			Provider:    "openai",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Agent: AgentConfig{
			StepBudget: 5,
		},
		Tools: ToolsConfig{
			CommandTimeoutMs:      300000,
			MaxOutputChars:        50000,
			MaxCommandOutputBytes: 10 * 1024 * 1024,
		},
		LogLevel: "warn",
	}
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
	baseURLEnv   string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o-mini", "OPENAI_API_KEY", "OPENAI_API_BASE"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY", ""},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY", ""},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// ApplyEnv overlays provider-independent environment variables onto s.
// Returns an error if a variable holds an invalid value.
func (s *Settings) ApplyEnv() error {
	if v := os.Getenv("TOOLLOOP_PROVIDER"); v != "" {
		s.LLM.Provider = v
	}
	if v := os.Getenv("TOOLLOOP_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("TOOLLOOP_TRANSCRIPT"); v != "" {
		s.Transcript.Path = v
	}

	var err error
	if s.LLM.MaxTokens, err = getEnvUint32("LLM_MAX_TOKENS", s.LLM.MaxTokens); err != nil {
		return err
	}
	if s.LLM.Temperature, err = getEnvFloat64("LLM_TEMPERATURE", s.LLM.Temperature); err != nil {
		return err
	}
	if s.Agent.StepBudget, err = getEnvInt("AGENT_STEP_BUDGET", s.Agent.StepBudget); err != nil {
		return err
	}
	if s.Tools.CommandTimeoutMs, err = getEnvInt("TOOL_COMMAND_TIMEOUT_MS", s.Tools.CommandTimeoutMs); err != nil {
		return err
	}
	if s.Tools.MaxOutputChars, err = getEnvInt("TOOL_MAX_OUTPUT_CHARS", s.Tools.MaxOutputChars); err != nil {
		return err
	}
	if s.Tools.TruncationMarker, err = getEnvBool("TOOL_TRUNCATION_MARKER", s.Tools.TruncationMarker); err != nil {
		return err
	}
	return nil
}

// Complete normalizes the provider name and fills the model, API key and
// base URL from the provider's environment variables where still empty.
func (s *Settings) Complete() error {
	s.LLM.Provider = normalizeProvider(s.LLM.Provider)
	info, err := getProviderInfo(s.LLM.Provider)
	if err != nil {
		return err
	}

	if s.LLM.Model == "" {
		s.LLM.Model = os.Getenv(info.modelEnv)
	}
	if s.LLM.Model == "" {
		s.LLM.Model = info.defaultModel
	}
	if s.LLM.APIKey == "" {
		s.LLM.APIKey = os.Getenv(info.apiKeyEnv)
	}
	if s.LLM.BaseURL == "" && info.baseURLEnv != "" {
		s.LLM.BaseURL = os.Getenv(info.baseURLEnv)
	}
	return nil
}

// Validate rejects settings that cannot run a turn.
func (s Settings) Validate() error {
	info, err := getProviderInfo(normalizeProvider(s.LLM.Provider))
	if err != nil {
		return err
	}
	if s.LLM.APIKey == "" {
		return fmt.Errorf("%w: %s environment variable not set", ErrConfigurationMissing, info.apiKeyEnv)
	}
	if s.LLM.Model == "" {
		return fmt.Errorf("%w: model for %s", ErrConfigurationMissing, s.LLM.Provider)
	}
	if s.Agent.StepBudget < 1 {
		return fmt.Errorf("invalid step budget %d: must be at least 1", s.Agent.StepBudget)
	}
	if s.Tools.CommandTimeoutMs <= 0 {
		return fmt.Errorf("invalid command timeout %dms: must be positive", s.Tools.CommandTimeoutMs)
	}
	if s.Tools.MaxOutputChars <= 0 {
		return fmt.Errorf("invalid max output chars %d: must be positive", s.Tools.MaxOutputChars)
	}
	if s.Tools.MaxCommandOutputBytes <= 0 {
		return fmt.Errorf("invalid max command output %d bytes: must be positive", s.Tools.MaxCommandOutputBytes)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// SupportedProviders returns the supported provider names, sorted.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}

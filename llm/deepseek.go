// DeepSeek Provider - OpenAI-compatible API with a fixed base URL.

package llm

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider creates a provider for DeepSeek. It shares the
// OpenAI transport and sends max_completion_tokens.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	p := NewOpenAIProvider(apiKey, deepseekBaseURL, model, maxTokens, temperature)
	p.name = "deepseek"
	p.completionTokens = true
	return p
}

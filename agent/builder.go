// Agent configuration builder.
//
// Information Hiding:
// - Builder state management hidden
// - Prompt source precedence (file over text over default) hidden

package agent

// Builder provides fluent configuration for creating agent configs.
type Builder struct {
	workDir      string
	systemPrompt string
	promptFile   string
	stepBudget   int
}

// NewBuilder creates a builder for a workspace rooted at workDir.
func NewBuilder(workDir string) *Builder {
	return &Builder{workDir: workDir, stepBudget: DefaultStepBudget}
}

// SystemPrompt sets the prompt template text. {{.WorkDir}} is substituted.
func (b *Builder) SystemPrompt(prompt string) *Builder {
	b.systemPrompt = prompt
	return b
}

// PromptFile reads the prompt template from path. It wins over SystemPrompt.
func (b *Builder) PromptFile(path string) *Builder {
	b.promptFile = path
	return b
}

// StepBudget sets the completion calls allowed per turn. Zero keeps the default.
func (b *Builder) StepBudget(n int) *Builder {
	if n != 0 {
		b.stepBudget = n
	}
	return b
}

// Build creates the agent configuration.
func (b *Builder) Build() (Config, error) {
	cfg := Config{StepBudget: b.stepBudget}

	switch {
	case b.promptFile != "":
		prompt, err := LoadPromptFile(b.promptFile, b.workDir)
		if err != nil {
			return Config{}, err
		}
		cfg.SystemPrompt = prompt
	case b.systemPrompt != "":
		prompt, err := RenderPrompt(b.systemPrompt, b.workDir)
		if err != nil {
			return Config{}, err
		}
		cfg.SystemPrompt = prompt
	default:
		cfg.SystemPrompt = DefaultSystemPrompt(b.workDir)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

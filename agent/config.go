// Agent configuration types.
//
// Information Hiding:
// - Configuration validation logic hidden
// - Default values hidden

package agent

import "fmt"

// DefaultStepBudget is the number of completion calls allowed per turn.
const DefaultStepBudget = 5

// Config holds agent configuration.
type Config struct {
	// SystemPrompt is sent ahead of the history on every completion call.
	SystemPrompt string

	// StepBudget bounds completion calls per turn. Must be at least 1.
	StepBudget int
}

// DefaultConfig returns the configuration used for a workspace rooted at workDir.
func DefaultConfig(workDir string) Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt(workDir),
		StepBudget:   DefaultStepBudget,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StepBudget < 1 {
		return fmt.Errorf("step budget must be at least 1, got %d", c.StepBudget)
	}
	return nil
}

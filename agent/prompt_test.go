package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSystemPrompt(t *testing.T) {
	prompt := DefaultSystemPrompt("/work/project")
	assert.Contains(t, prompt, "You are a CLI agent at /work/project.")
	assert.Contains(t, prompt, "Prefer tools over prose")
}

func TestBuilderPromptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Work in {{.WorkDir}} only."), 0o644))

	cfg, err := NewBuilder("/srv/app").SystemPrompt("ignored").PromptFile(path).StepBudget(7).Build()
	require.NoError(t, err)
	assert.Equal(t, "Work in /srv/app only.", cfg.SystemPrompt)
	assert.Equal(t, 7, cfg.StepBudget)
}

func TestBuilderDefaultsAndErrors(t *testing.T) {
	cfg, err := NewBuilder("/a").Build()
	require.NoError(t, err)
	assert.Equal(t, DefaultStepBudget, cfg.StepBudget)
	assert.Equal(t, DefaultSystemPrompt("/a"), cfg.SystemPrompt)

	_, err = NewBuilder("/a").StepBudget(-1).Build()
	assert.Error(t, err)

	_, err = NewBuilder("/a").PromptFile("/does/not/exist").Build()
	assert.Error(t, err)

	_, err = NewBuilder("/a").SystemPrompt("{{.Nope}}").Build()
	assert.Error(t, err)
}

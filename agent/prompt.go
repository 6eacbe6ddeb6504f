package agent

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

const defaultPromptTemplate = `You are a CLI agent at {{.WorkDir}}.

Loop: think briefly -> use tools -> report results.

Rules:
- Prefer tools over prose. Act, don't just explain.
- Never invent file paths. Use bash ls/find first if unsure.
- Make minimal changes. Don't over-engineer.
- After finishing, summarize what changed.`

type promptData struct {
	WorkDir string
}

// DefaultSystemPrompt returns the built-in prompt for workDir.
func DefaultSystemPrompt(workDir string) string {
	out, err := RenderPrompt(defaultPromptTemplate, workDir)
	if err != nil {
		// The built-in template is static.
		panic(err)
	}
	return out
}

// RenderPrompt executes text as a template with {{.WorkDir}} available.
func RenderPrompt(text, workDir string) (string, error) {
	tmpl, err := template.New("system").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{WorkDir: workDir}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return buf.String(), nil
}

// LoadPromptFile reads and renders a prompt template from path.
func LoadPromptFile(path, workDir string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return RenderPrompt(string(data), workDir)
}

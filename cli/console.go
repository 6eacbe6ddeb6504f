package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/richinex/toolloop/agent"
)

// maxResultPreview is how many characters of a tool result verbose mode shows.
const maxResultPreview = 400

type styles struct {
	prompt lipgloss.Style
	call   lipgloss.Style
	dim    lipgloss.Style
	err    lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{prompt: plain, call: plain, dim: plain, err: plain}
	}
	return styles{
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		call:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// ConsoleObserver echoes tool activity to a terminal.
type ConsoleObserver struct {
	Out     io.Writer
	Verbose bool

	styles styles
}

var _ agent.Observer = (*ConsoleObserver)(nil)

// OnAssistantText shows intermediate model prose in verbose mode. The final
// text is printed by the runner.
func (c *ConsoleObserver) OnAssistantText(text string) {
	if !c.Verbose || strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintln(c.Out, c.styles.dim.Render(text))
}

// OnToolCall prints "$ name" followed by the indented JSON input.
func (c *ConsoleObserver) OnToolCall(name string, input map[string]any) {
	fmt.Fprintln(c.Out, c.styles.call.Render("$ "+name))
	if len(input) == 0 {
		return
	}
	data, err := json.MarshalIndent(input, "  ", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(c.Out, "  "+string(data))
}

// OnToolResult previews the result in verbose mode.
func (c *ConsoleObserver) OnToolResult(name, output string) {
	if !c.Verbose {
		return
	}
	fmt.Fprintln(c.Out, c.styles.dim.Render(indent(truncateString(output, maxResultPreview), "  ")))
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

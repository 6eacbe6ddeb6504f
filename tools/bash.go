// Bash Tool - shell command execution behind a substring deny-list.
//
// Information Hiding:
// - Deny-list matching hidden
// - Process execution delegated to a CommandRunner
// - Output assembly ("(no output)", partial output on failure) hidden

package tools

import (
	"context"
	"errors"
	"strings"
)

// ErrDangerousCommand is returned by CheckCommand for deny-listed input.
var ErrDangerousCommand = errors.New("dangerous command blocked")

// The match is literal and easy to get around; it only catches accidents.
var dangerousPatterns = []string{"rm -rf /", "sudo", "shutdown", "reboot", "> /dev/"}

// CheckCommand rejects commands containing a deny-listed substring.
func CheckCommand(command string) error {
	for _, p := range dangerousPatterns {
		if strings.Contains(command, p) {
			return ErrDangerousCommand
		}
	}
	return nil
}

// BashTool runs shell commands in the workspace.
type BashTool struct {
	runner CommandRunner
}

// NewBashTool creates a bash tool that executes through runner.
func NewBashTool(runner CommandRunner) *BashTool {
	return &BashTool{runner: runner}
}

// Kind implements Tool.
func (t *BashTool) Kind() Kind { return KindBash }

// Definition implements Tool.
func (t *BashTool) Definition() Definition {
	return Definition{
		Name:        KindBash.String(),
		Description: "Run a shell command. Use for: ls, find, grep, git, npm, python, etc.",
		Fields: []Field{
			{Name: "command", Type: "string", Description: "The shell command to execute", Required: true},
		},
	}
}

type bashInput struct {
	Command string `mapstructure:"command"`
}

// Execute runs the command unless it is deny-listed.
func (t *BashTool) Execute(ctx context.Context, args map[string]any) string {
	var in bashInput
	if err := decodeInput(KindBash, args, &in, "command"); err != nil {
		return errorResult("%v", err)
	}
	if strings.TrimSpace(in.Command) == "" {
		return errorResult("command cannot be empty")
	}
	if err := CheckCommand(in.Command); err != nil {
		return "Error: Dangerous command blocked"
	}

	res, err := t.runner.Run(ctx, in.Command)
	output := res.Stdout + res.Stderr
	if err != nil {
		msg := errorResult("%v", err)
		if output != "" {
			msg += "\n" + output
		}
		return msg
	}
	if output == "" {
		return "(no output)"
	}
	return output
}

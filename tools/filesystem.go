// Filesystem Tools - Read, Write, Edit operations inside the workspace.
//
// Information Hiding:
// - File I/O implementation details hidden
// - Path resolution delegated to workspace.Guard
// - Error handling for file operations folded into result strings

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinex/toolloop/workspace"
)

// ReadFileTool reads file contents.
type ReadFileTool struct {
	guard *workspace.Guard
}

// NewReadFileTool creates a new read file tool.
func NewReadFileTool(guard *workspace.Guard) *ReadFileTool {
	return &ReadFileTool{guard: guard}
}

// Kind implements Tool.
func (t *ReadFileTool) Kind() Kind { return KindReadFile }

// Definition implements Tool.
func (t *ReadFileTool) Definition() Definition {
	return Definition{
		Name:        KindReadFile.String(),
		Description: "Read file contents. Returns UTF-8 text.",
		Fields: []Field{
			{Name: "path", Type: "string", Description: "Relative path to the file", Required: true},
			{Name: "limit", Type: "integer", Description: "Max lines to read (default: all)"},
		},
	}
}

type readFileInput struct {
	Path  string `mapstructure:"path"`
	Limit *int   `mapstructure:"limit"`
}

// Execute reads the file, optionally keeping only the first limit lines.
func (t *ReadFileTool) Execute(_ context.Context, args map[string]any) string {
	var in readFileInput
	if err := decodeInput(KindReadFile, args, &in, "path"); err != nil {
		return errorResult("%v", err)
	}
	if in.Limit != nil && *in.Limit <= 0 {
		return errorResult("limit must be a positive integer")
	}

	path, err := t.guard.Resolve(in.Path)
	if err != nil {
		return errorResult("%v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errorResult("%v", err)
	}

	text := string(data)
	if in.Limit == nil {
		return text
	}
	return limitLines(text, *in.Limit)
}

// limitLines keeps the first limit lines and reports how many were dropped.
// A single trailing newline does not start another line.
func limitLines(text string, limit int) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if limit >= len(lines) {
		return text
	}
	kept := append(lines[:limit:limit], fmt.Sprintf("... (%d more lines)", len(lines)-limit))
	return strings.Join(kept, "\n")
}

// WriteFileTool writes whole files.
type WriteFileTool struct {
	guard *workspace.Guard
}

// NewWriteFileTool creates a new write file tool.
func NewWriteFileTool(guard *workspace.Guard) *WriteFileTool {
	return &WriteFileTool{guard: guard}
}

// Kind implements Tool.
func (t *WriteFileTool) Kind() Kind { return KindWriteFile }

// Definition implements Tool.
func (t *WriteFileTool) Definition() Definition {
	return Definition{
		Name:        KindWriteFile.String(),
		Description: "Write content to a file. Creates parent directories if needed.",
		Fields: []Field{
			{Name: "path", Type: "string", Description: "Relative path for the file", Required: true},
			{Name: "content", Type: "string", Description: "Content to write", Required: true},
		},
	}
}

type writeFileInput struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

// Execute overwrites the file with content.
func (t *WriteFileTool) Execute(_ context.Context, args map[string]any) string {
	var in writeFileInput
	if err := decodeInput(KindWriteFile, args, &in, "path", "content"); err != nil {
		return errorResult("%v", err)
	}

	path, err := t.guard.Resolve(in.Path)
	if err != nil {
		return errorResult("%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errorResult("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(in.Content), 0o644); err != nil {
		return errorResult("failed to write file: %v", err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(in.Content), in.Path)
}

// EditFileTool replaces the first occurrence of a literal string.
type EditFileTool struct {
	guard *workspace.Guard
}

// NewEditFileTool creates a new edit file tool.
func NewEditFileTool(guard *workspace.Guard) *EditFileTool {
	return &EditFileTool{guard: guard}
}

// Kind implements Tool.
func (t *EditFileTool) Kind() Kind { return KindEditFile }

// Definition implements Tool.
func (t *EditFileTool) Definition() Definition {
	return Definition{
		Name:        KindEditFile.String(),
		Description: "Replace exact text in a file. Use for surgical edits.",
		Fields: []Field{
			{Name: "path", Type: "string", Description: "Relative path to the file", Required: true},
			{Name: "old_text", Type: "string", Description: "Exact text to find (must match precisely)", Required: true},
			{Name: "new_text", Type: "string", Description: "Replacement text", Required: true},
		},
	}
}

type editFileInput struct {
	Path    string `mapstructure:"path"`
	OldText string `mapstructure:"old_text"`
	NewText string `mapstructure:"new_text"`
}

// Execute performs the replacement.
func (t *EditFileTool) Execute(_ context.Context, args map[string]any) string {
	var in editFileInput
	if err := decodeInput(KindEditFile, args, &in, "path", "old_text", "new_text"); err != nil {
		return errorResult("%v", err)
	}
	if in.OldText == "" {
		return errorResult("old_text cannot be empty")
	}

	path, err := t.guard.Resolve(in.Path)
	if err != nil {
		return errorResult("%v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errorResult("%v", err)
	}

	content := string(data)
	if !strings.Contains(content, in.OldText) {
		return fmt.Sprintf("Error: Text not found in %s", in.Path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errorResult("%v", err)
	}
	updated := strings.Replace(content, in.OldText, in.NewText, 1)
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return errorResult("failed to write file: %v", err)
	}
	return fmt.Sprintf("Edited %s", in.Path)
}

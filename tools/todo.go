// TodoWrite Tool - a session task list the model rewrites as it works.
//
// Information Hiding:
// - Validation rules (required fields, status set, focus and size limits) hidden
// - Rendering format hidden

package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MaxTodoItems bounds the task list length.
const MaxTodoItems = 20

// Todo statuses.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// TodoItem is one entry of the task list.
type TodoItem struct {
	Content    string `mapstructure:"content"`
	Status     string `mapstructure:"status"`
	ActiveForm string `mapstructure:"activeForm"`
}

// TodoList holds the current task list.
type TodoList struct {
	mu    sync.Mutex
	items []TodoItem
}

// Update validates items and replaces the list with them.
func (l *TodoList) Update(items []TodoItem) (string, error) {
	validated := make([]TodoItem, 0, len(items))
	inProgress := 0

	for i, item := range items {
		item.Content = strings.TrimSpace(item.Content)
		item.Status = strings.ToLower(strings.TrimSpace(item.Status))
		item.ActiveForm = strings.TrimSpace(item.ActiveForm)

		if item.Content == "" {
			return "", fmt.Errorf("item %d: content required", i)
		}
		switch item.Status {
		case TodoPending, TodoCompleted:
		case TodoInProgress:
			inProgress++
		default:
			return "", fmt.Errorf("item %d: invalid status '%s'", i, item.Status)
		}
		if item.ActiveForm == "" {
			return "", fmt.Errorf("item %d: activeForm required", i)
		}
		validated = append(validated, item)
	}

	if len(validated) > MaxTodoItems {
		return "", fmt.Errorf("max %d todos allowed", MaxTodoItems)
	}
	if inProgress > 1 {
		return "", fmt.Errorf("only one task can be in_progress at a time")
	}

	l.mu.Lock()
	l.items = validated
	l.mu.Unlock()
	return l.Render(), nil
}

// Items returns a copy of the current list.
func (l *TodoList) Items() []TodoItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TodoItem, len(l.items))
	copy(out, l.items)
	return out
}

// Render formats the list as a checklist with a completion count.
func (l *TodoList) Render() string {
	items := l.Items()
	if len(items) == 0 {
		return "No todos."
	}

	lines := make([]string, 0, len(items)+1)
	completed := 0
	for _, item := range items {
		switch item.Status {
		case TodoCompleted:
			completed++
			lines = append(lines, "[x] "+item.Content)
		case TodoInProgress:
			lines = append(lines, fmt.Sprintf("[>] %s <- %s", item.Content, item.ActiveForm))
		default:
			lines = append(lines, "[ ] "+item.Content)
		}
	}
	lines = append(lines, fmt.Sprintf("\n(%d/%d completed)", completed, len(items)))
	return strings.Join(lines, "\n")
}

// TodoWriteTool exposes a TodoList to the model.
type TodoWriteTool struct {
	list *TodoList
}

// NewTodoWriteTool creates the tool over list. A nil list gets a fresh one.
func NewTodoWriteTool(list *TodoList) *TodoWriteTool {
	if list == nil {
		list = &TodoList{}
	}
	return &TodoWriteTool{list: list}
}

// Kind implements Tool.
func (t *TodoWriteTool) Kind() Kind { return KindTodoWrite }

// Definition implements Tool.
func (t *TodoWriteTool) Definition() Definition {
	return Definition{
		Name:        KindTodoWrite.String(),
		Description: "Update the task list. Use to plan and track progress.",
		Fields: []Field{{
			Name:        "items",
			Type:        "array",
			Description: "Complete task list; replaces the previous one",
			Required:    true,
			Items: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"content":    map[string]interface{}{"type": "string"},
					"status":     map[string]interface{}{"type": "string", "enum": []string{TodoPending, TodoInProgress, TodoCompleted}},
					"activeForm": map[string]interface{}{"type": "string"},
				},
				"required": []string{"content", "status", "activeForm"},
			},
		}},
	}
}

type todoInput struct {
	Items []TodoItem `mapstructure:"items"`
}

// Execute replaces the list and returns the rendered result.
func (t *TodoWriteTool) Execute(_ context.Context, args map[string]any) string {
	var in todoInput
	if err := decodeInput(KindTodoWrite, args, &in, "items"); err != nil {
		return errorResult("%v", err)
	}
	out, err := t.list.Update(in.Items)
	if err != nil {
		return errorResult("%v", err)
	}
	return out
}

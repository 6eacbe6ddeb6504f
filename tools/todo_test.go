package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoWriteRenders(t *testing.T) {
	list := &TodoList{}
	tool := NewTodoWriteTool(list)

	out := tool.Execute(context.Background(), map[string]any{"items": []any{
		map[string]any{"content": "Read code", "status": "completed", "activeForm": "Reading code"},
		map[string]any{"content": "Add tests", "status": "in_progress", "activeForm": "Adding tests"},
		map[string]any{"content": "Ship", "status": "pending", "activeForm": "Shipping"},
	}})

	assert.Equal(t, "[x] Read code\n[>] Add tests <- Adding tests\n[ ] Ship\n\n(1/3 completed)", out)
	assert.Len(t, list.Items(), 3)
}

func TestTodoWriteValidation(t *testing.T) {
	list := &TodoList{}
	tool := NewTodoWriteTool(list)
	ctx := context.Background()

	item := func(status string) map[string]any {
		return map[string]any{"content": "c", "status": status, "activeForm": "doing c"}
	}

	out := tool.Execute(ctx, map[string]any{"items": []any{item("in_progress"), item("in_progress")}})
	assert.Equal(t, "Error: only one task can be in_progress at a time", out)

	out = tool.Execute(ctx, map[string]any{"items": []any{item("blocked")}})
	assert.Equal(t, "Error: item 0: invalid status 'blocked'", out)

	out = tool.Execute(ctx, map[string]any{"items": []any{map[string]any{"content": "c", "status": "pending"}}})
	assert.Equal(t, "Error: item 0: activeForm required", out)

	many := make([]any, MaxTodoItems+1)
	for i := range many {
		many[i] = map[string]any{"content": fmt.Sprintf("t%d", i), "status": "pending", "activeForm": "x"}
	}
	out = tool.Execute(ctx, map[string]any{"items": many})
	assert.Equal(t, "Error: max 20 todos allowed", out)

	require.Empty(t, list.Items(), "rejected updates leave the list untouched")
	assert.Equal(t, "No todos.", list.Render())
}

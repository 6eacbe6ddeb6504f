package agent

import (
	"log/slog"
)

// Observer receives progress events during a turn. Calls happen on the
// turn's goroutine, in order; implementations should return quickly.
type Observer interface {
	OnAssistantText(text string)
	OnToolCall(name string, input map[string]any)
	OnToolResult(name, output string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnAssistantText(string)            {}
func (NopObserver) OnToolCall(string, map[string]any) {}
func (NopObserver) OnToolResult(string, string)       {}

// Observers fans events out to each member in order.
type Observers []Observer

func (o Observers) OnAssistantText(text string) {
	for _, obs := range o {
		obs.OnAssistantText(text)
	}
}

func (o Observers) OnToolCall(name string, input map[string]any) {
	for _, obs := range o {
		obs.OnToolCall(name, input)
	}
}

func (o Observers) OnToolResult(name, output string) {
	for _, obs := range o {
		obs.OnToolResult(name, output)
	}
}

// LogObserver writes events to a structured logger at debug level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) OnAssistantText(text string) {
	o.Logger.Debug("assistant text", "len", len(text))
}

func (o LogObserver) OnToolCall(name string, input map[string]any) {
	o.Logger.Debug("tool call", "tool", name, "fields", len(input))
}

func (o LogObserver) OnToolResult(name, output string) {
	o.Logger.Debug("tool result", "tool", name, "result_len", len(output))
}

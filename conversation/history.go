package conversation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/richinex/toolloop/llm"
)

var (
	// ErrPendingToolResults is returned when a message other than a tool
	// result is appended while tool calls are still unanswered.
	ErrPendingToolResults = errors.New("tool results pending")
	// ErrUnexpectedToolResult is returned for a tool result that does not
	// answer the next pending call.
	ErrUnexpectedToolResult = errors.New("unexpected tool result")
)

// History is an append-only message log. Every AssistantToolCalls must be
// answered by one ToolResult per call, in call order, before anything else
// is appended. Not safe for concurrent use.
type History struct {
	messages []Message
	pending  []ToolInvocation
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds msgs in order. Either all of them are appended or, on the
// first violation, none are.
func (h *History) Append(msgs ...Message) error {
	pending := h.pending
	for i, m := range msgs {
		switch m := m.(type) {
		case UserText, AssistantText:
			if len(pending) > 0 {
				return fmt.Errorf("message %d (%s): %w: %d outstanding", i, m.Kind(), ErrPendingToolResults, len(pending))
			}
		case AssistantToolCalls:
			if len(pending) > 0 {
				return fmt.Errorf("message %d (%s): %w: %d outstanding", i, m.Kind(), ErrPendingToolResults, len(pending))
			}
			if len(m.Calls) == 0 {
				return fmt.Errorf("message %d: tool call round has no calls", i)
			}
			pending = m.Calls
		case ToolResult:
			if len(pending) == 0 {
				return fmt.Errorf("message %d: %w: no call awaits %q", i, ErrUnexpectedToolResult, m.CallID)
			}
			if pending[0].ID != m.CallID {
				return fmt.Errorf("message %d: %w: got %q, want %q", i, ErrUnexpectedToolResult, m.CallID, pending[0].ID)
			}
			pending = pending[1:]
		default:
			return fmt.Errorf("message %d: unsupported message type %T", i, m)
		}
	}

	h.messages = append(h.messages, msgs...)
	h.pending = pending
	return nil
}

// Messages returns a copy of the log.
func (h *History) Messages() []Message {
	return h.Since(0)
}

// Since returns a copy of the messages appended after the first n.
func (h *History) Since(n int) []Message {
	if n < 0 {
		n = 0
	}
	if n >= len(h.messages) {
		return []Message{}
	}
	out := make([]Message, len(h.messages)-n)
	copy(out, h.messages[n:])
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Pending returns the tool calls still waiting for a result.
func (h *History) Pending() []ToolInvocation {
	out := make([]ToolInvocation, len(h.pending))
	copy(out, h.pending)
	return out
}

// ChatMessages renders the history for a completion request, preceded by
// system when it is non-empty. Assistant text directly followed by a tool
// call round becomes a single assistant message.
func (h *History) ChatMessages(system string) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(h.messages)+1)
	if system != "" {
		out = append(out, llm.SystemMessage(system))
	}

	for i, m := range h.messages {
		switch m := m.(type) {
		case UserText:
			out = append(out, llm.UserMessage(m.Text))
		case AssistantText:
			if i+1 < len(h.messages) {
				if _, ok := h.messages[i+1].(AssistantToolCalls); ok {
					continue
				}
			}
			out = append(out, llm.AssistantMessage(m.Text))
		case AssistantToolCalls:
			msg := llm.ChatMessage{Role: llm.RoleAssistant}
			if i > 0 {
				if prev, ok := h.messages[i-1].(AssistantText); ok {
					msg.Content = prev.Text
				}
			}
			for _, c := range m.Calls {
				msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
					ID:        c.ID,
					Name:      c.Name,
					Arguments: encodeInput(c.Input),
				})
			}
			out = append(out, msg)
		case ToolResult:
			out = append(out, llm.ToolMessage(m.CallID, m.Name, m.Output))
		}
	}
	return out
}

func encodeInput(input map[string]any) json.RawMessage {
	if input == nil {
		return json.RawMessage("{}")
	}
	data, err := json.Marshal(input)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

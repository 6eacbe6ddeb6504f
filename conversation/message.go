// Package conversation holds the ordered message history of a session.
//
// Information Hiding:
// - Message variants sealed behind the Message interface
// - Request/result pairing rules enforced inside History.Append
// - Wire conversion to llm.ChatMessage hidden in ChatMessages
package conversation

// Message is one entry of a History. The set of variants is closed.
type Message interface {
	// Kind names the variant: user_text, assistant_text, assistant_tool_calls or tool_result.
	Kind() string
	isMessage()
}

// ToolInvocation is a tool call requested by the model.
type ToolInvocation struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// UserText is what the user typed.
type UserText struct {
	Text string `json:"text"`
}

// AssistantText is prose produced by the model.
type AssistantText struct {
	Text string `json:"text"`
}

// AssistantToolCalls is one round of tool requests, in the order the model listed them.
type AssistantToolCalls struct {
	Calls []ToolInvocation `json:"calls"`
}

// ToolResult answers the ToolInvocation with the same ID.
type ToolResult struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Output string `json:"output"`
}

func (UserText) Kind() string           { return "user_text" }
func (AssistantText) Kind() string      { return "assistant_text" }
func (AssistantToolCalls) Kind() string { return "assistant_tool_calls" }
func (ToolResult) Kind() string         { return "tool_result" }

func (UserText) isMessage()           {}
func (AssistantText) isMessage()      {}
func (AssistantToolCalls) isMessage() {}
func (ToolResult) isMessage()         {}

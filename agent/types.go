package agent

import (
	"time"

	"github.com/richinex/toolloop/llm"
)

// StopReason says why a turn ended.
type StopReason int

const (
	// StopCompleted means the model answered without requesting tools.
	StopCompleted StopReason = iota
	// StopBudgetExhausted means the step budget ran out after a tool round.
	StopBudgetExhausted
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopBudgetExhausted:
		return "budget_exhausted"
	default:
		return "unknown"
	}
}

// ToolCallStat contains metrics about one tool dispatch.
type ToolCallStat struct {
	Name       string        `json:"name"`
	InputSize  int           `json:"input_size"`
	OutputSize int           `json:"output_size"`
	Duration   time.Duration `json:"duration"`
	Failed     bool          `json:"failed"`
}

// TurnResult summarizes one turn.
type TurnResult struct {
	// Text of the last completion response; may be empty.
	Text       string
	Steps      int
	StopReason StopReason
	ToolCalls  []ToolCallStat
	Usage      llm.TokenUsage
	Duration   time.Duration
}

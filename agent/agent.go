// Step-bounded tool-calling loop.
//
// Information Hiding:
// - Completion calls, argument parsing and tool dispatch hidden behind Turn
// - History bookkeeping (request/result pairing) hidden
// - Cancellation handling hidden: unanswered calls are closed out before returning

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/toolloop/conversation"
	jsonutil "github.com/richinex/toolloop/internal/json"
	"github.com/richinex/toolloop/llm"
	"github.com/richinex/toolloop/tools"
)

// cancelledResult is recorded for calls that never ran because the turn was cancelled.
const cancelledResult = "Error: turn cancelled"

// Agent runs turns against a provider with a fixed tool catalog.
type Agent struct {
	config   Config
	provider llm.Provider
	catalog  *tools.Catalog
	observer Observer
	logger   *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(a *Agent) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an agent. The configuration is validated here so that a bad
// budget fails before any turn runs.
func New(config Config, provider llm.Provider, catalog *tools.Catalog, opts ...Option) (*Agent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("tool catalog is required")
	}

	a := &Agent{
		config:   config,
		provider: provider,
		catalog:  catalog,
		observer: NopObserver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the agent's configuration.
func (a *Agent) Config() Config {
	return a.config
}

// Turn appends utterance to history and runs completion rounds until the
// model stops requesting tools or the step budget is used up. Tool failures
// are reported to the model and never end the turn; transport failures and
// cancellation do.
func (a *Agent) Turn(ctx context.Context, history *conversation.History, utterance string) (TurnResult, error) {
	start := time.Now()
	result := TurnResult{}

	if err := history.Append(conversation.UserText{Text: utterance}); err != nil {
		return result, fmt.Errorf("failed to record user message: %w", err)
	}

	definitions := a.definitions()

	for step := 1; step <= a.config.StepBudget; step++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		a.logger.Debug("completion request", "step", step, "budget", a.config.StepBudget, "messages", history.Len())
		resp, err := a.provider.ChatWithTools(ctx, history.ChatMessages(a.config.SystemPrompt), definitions)
		result.Steps = step
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("step %d: %w", step, err)
		}
		result.Usage.Add(resp.Usage)
		result.Text = resp.Content

		if resp.Content != "" {
			if err := history.Append(conversation.AssistantText{Text: resp.Content}); err != nil {
				return result, fmt.Errorf("failed to record assistant text: %w", err)
			}
			a.observer.OnAssistantText(resp.Content)
		}

		if len(resp.ToolCalls) == 0 {
			result.StopReason = StopCompleted
			result.Duration = time.Since(start)
			a.logger.Debug("turn completed", "steps", step)
			return result, nil
		}

		calls := a.invocations(resp.ToolCalls)
		if err := history.Append(conversation.AssistantToolCalls{Calls: calls}); err != nil {
			return result, fmt.Errorf("failed to record tool calls: %w", err)
		}

		if err := a.dispatch(ctx, history, calls, resp.ToolCalls, &result); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
	}

	a.logger.Info("step budget exhausted", "budget", a.config.StepBudget)
	result.StopReason = StopBudgetExhausted
	result.Duration = time.Since(start)
	return result, nil
}

// dispatch runs calls one at a time, recording each result before the next
// call starts. On cancellation the remaining calls are answered with
// cancelledResult and the context error is returned.
func (a *Agent) dispatch(ctx context.Context, history *conversation.History, calls []conversation.ToolInvocation, raw []llm.ToolCall, result *TurnResult) error {
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			for _, rest := range calls[i:] {
				if aerr := history.Append(conversation.ToolResult{CallID: rest.ID, Name: rest.Name, Output: cancelledResult}); aerr != nil {
					return fmt.Errorf("failed to record tool result: %w", aerr)
				}
			}
			return err
		}

		output, stat := a.runTool(ctx, call, raw[i])
		result.ToolCalls = append(result.ToolCalls, stat)

		if err := history.Append(conversation.ToolResult{CallID: call.ID, Name: call.Name, Output: output}); err != nil {
			return fmt.Errorf("failed to record tool result: %w", err)
		}
	}
	return nil
}

func (a *Agent) runTool(ctx context.Context, call conversation.ToolInvocation, raw llm.ToolCall) (string, ToolCallStat) {
	started := time.Now()
	a.observer.OnToolCall(call.Name, call.Input)
	a.logger.Debug("dispatching tool", "tool", call.Name, "id", call.ID)

	var output string
	if call.Input == nil {
		output = fmt.Sprintf("Error: invalid arguments for %s: could not parse %s", call.Name, preview(string(raw.Arguments)))
	} else {
		output = a.catalog.Dispatch(ctx, call.Name, call.Input)
	}

	a.observer.OnToolResult(call.Name, output)
	return output, ToolCallStat{
		Name:       call.Name,
		InputSize:  len(raw.Arguments),
		OutputSize: len(output),
		Duration:   time.Since(started),
		Failed:     strings.HasPrefix(output, "Error:"),
	}
}

// invocations converts provider tool calls, assigning IDs where the
// provider left them empty. Unparseable arguments leave Input nil.
func (a *Agent) invocations(calls []llm.ToolCall) []conversation.ToolInvocation {
	out := make([]conversation.ToolInvocation, len(calls))
	for i, c := range calls {
		id := c.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		input, err := parseArguments(c.Arguments)
		if err != nil {
			a.logger.Warn("unparseable tool arguments", "tool", c.Name, "error", err)
		}
		out[i] = conversation.ToolInvocation{ID: id, Name: c.Name, Input: input}
	}
	return out
}

func (a *Agent) definitions() []llm.ToolDefinition {
	defs := a.catalog.Definitions()
	out := make([]llm.ToolDefinition, len(defs))
	for i, d := range defs {
		out[i] = llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.JSONSchema(),
		}
	}
	return out
}

func parseArguments(raw json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return obj, nil
	}
	return jsonutil.DecodeObject(string(raw))
}

func preview(s string) string {
	if len(s) > 80 {
		return fmt.Sprintf("%q...", s[:80])
	}
	return fmt.Sprintf("%q", s)
}

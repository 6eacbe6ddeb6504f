package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/richinex/toolloop/agent"
	"github.com/richinex/toolloop/conversation"
	"github.com/richinex/toolloop/storage"
	"github.com/richinex/toolloop/tools"
)

// maxInputLine bounds one line of interactive input.
const maxInputLine = 1024 * 1024

// RunBatch runs task as one turn on a fresh history and prints the final text.
func (rt *Runtime) RunBatch(ctx context.Context, task string) error {
	history := conversation.NewHistory()
	result, err := rt.turn(ctx, history, task)
	if err != nil {
		return err
	}
	rt.printResult(result)
	return nil
}

// RunInteractive reads utterances from in until end of input, an empty line,
// "q" or "exit". All turns share one history. A failed turn is reported
// and the session continues. SIGINT cancels only the turn in progress.
func (rt *Runtime) RunInteractive(ctx context.Context, in io.Reader) error {
	history := conversation.NewHistory()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	for {
		fmt.Fprint(rt.out, rt.styles.prompt.Render(">>")+" ")
		if !scanner.Scan() {
			fmt.Fprintln(rt.out)
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" || input == "q" || input == "exit" {
			break
		}

		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		result, err := rt.turn(turnCtx, history, input)
		stop()

		switch {
		case err == nil:
			rt.printResult(result)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			fmt.Fprintln(rt.out, rt.styles.err.Render("Error: "+err.Error()))
		}
		fmt.Fprintln(rt.out)
	}

	return scanner.Err()
}

// turn runs one agent turn and records whatever it appended.
func (rt *Runtime) turn(ctx context.Context, history *conversation.History, utterance string) (agent.TurnResult, error) {
	before := history.Len()
	result, err := rt.Agent.Turn(ctx, history, utterance)
	rt.record(history.Since(before))
	return result, err
}

// record appends msgs to the transcript. Failures are logged, never fatal.
func (rt *Runtime) record(msgs []conversation.Message) {
	if rt.Store == nil || len(msgs) == 0 {
		return
	}
	// The turn's context may be cancelled; the transcript still gets written.
	if err := rt.Store.Append(context.Background(), rt.SessionID, msgs); err != nil {
		rt.logger.Warn("failed to record transcript", "session", rt.SessionID, "error", err)
	}
}

func (rt *Runtime) printResult(result agent.TurnResult) {
	if text := strings.TrimSpace(result.Text); text != "" {
		fmt.Fprintln(rt.out, text)
	}
	if result.StopReason == agent.StopBudgetExhausted {
		fmt.Fprintln(rt.out, rt.styles.dim.Render(fmt.Sprintf("(stopped after %d steps)", result.Steps)))
	}
}

// ListTools prints the catalog. Verbose prints the full description with
// every field, as the model sees it.
func ListTools(w io.Writer, catalog *tools.Catalog, verbose bool) {
	if verbose {
		fmt.Fprintln(w, catalog.Description())
		return
	}

	fmt.Fprintln(w, "Available tools:")
	fmt.Fprintln(w)
	for _, def := range catalog.Definitions() {
		fmt.Fprintf(w, "  %s\n", def.Name)
		fmt.Fprintf(w, "    %s\n", def.Description)
		fmt.Fprintln(w)
	}
}

// ListSessions prints recorded sessions, most recent first.
func ListSessions(ctx context.Context, w io.Writer, store storage.TranscriptStore) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  %d messages\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04:05"), s.Messages)
	}
	return nil
}

// ShowSession prints one recorded transcript.
func ShowSession(ctx context.Context, w io.Writer, store storage.TranscriptStore, sessionID string) error {
	records, err := store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		msg, err := rec.Message()
		if err != nil {
			return fmt.Errorf("record %d: %w", rec.Index, err)
		}
		fmt.Fprintln(w, formatMessage(msg))
	}
	return nil
}

func formatMessage(msg conversation.Message) string {
	switch m := msg.(type) {
	case conversation.UserText:
		return ">> " + m.Text
	case conversation.AssistantText:
		return m.Text
	case conversation.AssistantToolCalls:
		names := make([]string, len(m.Calls))
		for i, c := range m.Calls {
			names[i] = "$ " + c.Name
		}
		return strings.Join(names, "\n")
	case conversation.ToolResult:
		return indent(truncateString(m.Output, maxResultPreview), "  ")
	default:
		return fmt.Sprintf("(%s)", msg.Kind())
	}
}


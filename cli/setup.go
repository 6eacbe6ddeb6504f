// Package cli wires settings into a runnable agent and drives it from a
// terminal.
//
// Information Hiding:
// - Provider, catalog and agent construction hidden behind NewRuntime
// - Transcript recording hidden behind Runtime.record
// - Output formatting hidden

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/richinex/toolloop/agent"
	"github.com/richinex/toolloop/config"
	"github.com/richinex/toolloop/llm"
	"github.com/richinex/toolloop/storage"
	"github.com/richinex/toolloop/tools"
	"github.com/richinex/toolloop/workspace"
)

// Options holds CLI execution options that are not settings.
type Options struct {
	WorkDir   string
	SessionID string
	Verbose   bool
	NoColor   bool
	Out       io.Writer
	Logger    *slog.Logger
}

// Runtime is everything a session needs: one agent, its catalog and the
// optional transcript store.
type Runtime struct {
	Agent     *agent.Agent
	Catalog   *tools.Catalog
	Store     storage.TranscriptStore
	SessionID string

	out    io.Writer
	logger *slog.Logger
	styles styles
}

// NewRuntime builds a Runtime from validated settings.
func NewRuntime(settings config.Settings, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	provider, err := CreateProvider(settings)
	if err != nil {
		return nil, err
	}

	catalog, err := BuildCatalog(settings, opts.WorkDir)
	if err != nil {
		return nil, err
	}

	cfg, err := agent.NewBuilder(opts.WorkDir).
		PromptFile(settings.Agent.SystemPromptFile).
		StepBudget(settings.Agent.StepBudget).
		Build()
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Catalog:   catalog,
		SessionID: opts.SessionID,
		out:       opts.Out,
		logger:    logger,
		styles:    newStyles(opts.NoColor),
	}

	console := &ConsoleObserver{Out: opts.Out, Verbose: opts.Verbose, styles: rt.styles}
	rt.Agent, err = agent.New(cfg, provider, catalog,
		agent.WithLogger(logger),
		agent.WithObserver(agent.Observers{console, agent.LogObserver{Logger: logger}}),
	)
	if err != nil {
		return nil, err
	}

	if settings.Transcript.Path != "" {
		store, err := storage.OpenSqlite(settings.Transcript.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript database: %w", err)
		}
		rt.Store = store
		if rt.SessionID == "" {
			rt.SessionID = storage.NewSessionID()
		}
	}

	return rt, nil
}

// Close releases the transcript store, if any.
func (rt *Runtime) Close() error {
	if rt.Store == nil {
		return nil
	}
	return rt.Store.Close()
}

// CreateProvider builds the completion client named by settings.
func CreateProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		BaseURL(settings.LLM.BaseURL).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(settings.LLM.APIKey)
}

// BuildCatalog creates the tool catalog for a workspace rooted at workDir.
// TodoWrite is added only when enabled in settings.
func BuildCatalog(settings config.Settings, workDir string) (*tools.Catalog, error) {
	guard, err := workspace.New(workDir)
	if err != nil {
		return nil, err
	}

	runner := tools.NewShellRunner(guard.Root())
	if settings.Tools.CommandTimeoutMs > 0 {
		runner.Timeout = time.Duration(settings.Tools.CommandTimeoutMs) * time.Millisecond
	}
	if settings.Tools.MaxCommandOutputBytes > 0 {
		runner.MaxOutputBytes = settings.Tools.MaxCommandOutputBytes
	}

	catalog, err := tools.WithDefaults(guard, runner)
	if err != nil {
		return nil, err
	}
	if settings.Agent.EnableTodos {
		if err := catalog.Register(tools.NewTodoWriteTool(&tools.TodoList{})); err != nil {
			return nil, err
		}
	}

	return catalog.WithTruncator(tools.Truncator{
		Limit:  settings.Tools.MaxOutputChars,
		Marker: settings.Tools.TruncationMarker,
	}), nil
}

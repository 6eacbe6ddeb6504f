// Package main provides the toolloop CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/richinex/toolloop/cli"
	"github.com/richinex/toolloop/config"
	"github.com/richinex/toolloop/storage"
	"github.com/spf13/cobra"
)

// flags holds command-line overrides; zero values leave settings alone.
type flags struct {
	provider   string
	model      string
	baseURL    string
	steps      int
	configFile string
	prompt     string
	todos      bool
	transcript string
	session    string
	logLevel   string
	verbose    bool
}

// app is the state shared by every command once settings are loaded.
type app struct {
	flags    flags
	workDir  string
	settings config.Settings
	logger   *slog.Logger
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toolloop [task...]",
		Short: "A coding agent that works in the current directory",
		Long: `toolloop lets a language model run shell commands and read, write and edit
files inside the current directory.

With a task, it runs one turn and prints the answer. Without one, it starts
an interactive session: an empty line, "q" or "exit" ends it, and Ctrl-C
cancels only the turn in progress.

A task that starts with a subcommand name (tools, sessions, show) runs that
subcommand. Put "--" before such a task: toolloop -- show me the README`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE:              a.run,
	}

	f := rootCmd.PersistentFlags()
	f.StringVarP(&a.flags.provider, "provider", "p", "", "LLM provider ("+strings.Join(config.SupportedProviders(), ", ")+")")
	f.StringVarP(&a.flags.model, "model", "m", "", "Model name (default: provider's *_MODEL or built-in default)")
	f.StringVar(&a.flags.baseURL, "base-url", "", "OpenAI-compatible endpoint base URL")
	f.IntVarP(&a.flags.steps, "steps", "s", 0, "Completion calls allowed per turn")
	f.StringVarP(&a.flags.configFile, "config", "c", "", "YAML config file (default: ./"+config.DefaultFileName+" if present)")
	f.StringVar(&a.flags.prompt, "prompt", "", "System prompt template file; {{.WorkDir}} is substituted")
	f.BoolVar(&a.flags.todos, "todos", false, "Enable the TodoWrite planning tool")
	f.StringVar(&a.flags.transcript, "transcript", "", "SQLite database to record transcripts in")
	f.StringVar(&a.flags.session, "session", "", "Session ID for the transcript (default: random)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Show model prose and tool results")

	rootCmd.AddCommand(toolsCmd(a))
	rootCmd.AddCommand(sessionsCmd(a))
	rootCmd.AddCommand(showCmd(a))

	return rootCmd
}

// load resolves settings: defaults, config file, .env, environment, flags.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	a.workDir = wd

	dotenv, dotenvErr := config.LoadDotEnv(wd)

	settings, err := config.Load(wd, a.flags.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		settings.LLM.Provider = a.flags.provider
	}
	if flags.Changed("model") {
		settings.LLM.Model = a.flags.model
	}
	if flags.Changed("base-url") {
		settings.LLM.BaseURL = a.flags.baseURL
	}
	if flags.Changed("steps") {
		settings.Agent.StepBudget = a.flags.steps
	}
	if flags.Changed("prompt") {
		settings.Agent.SystemPromptFile = a.flags.prompt
	}
	if flags.Changed("todos") {
		settings.Agent.EnableTodos = a.flags.todos
	}
	if flags.Changed("transcript") {
		settings.Transcript.Path = a.flags.transcript
	}
	if flags.Changed("log-level") {
		settings.LogLevel = a.flags.logLevel
	}

	if err := settings.Complete(); err != nil {
		return err
	}

	logger, err := settings.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	if dotenvErr != nil {
		logger.Warn("ignoring .env file", "error", dotenvErr)
	} else if dotenv != "" {
		logger.Debug("loaded .env", "path", dotenv)
	}

	a.settings = settings
	a.logger = logger
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	if err := a.settings.Validate(); err != nil {
		return err
	}

	rt, err := cli.NewRuntime(a.settings, cli.Options{
		WorkDir:   a.workDir,
		SessionID: a.flags.session,
		Verbose:   a.flags.verbose,
		Out:       cmd.OutOrStdout(),
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	a.logger.Info("session started",
		"provider", a.settings.LLM.Provider,
		"model", a.settings.LLM.Model,
		"workdir", a.workDir,
		"steps", rt.Agent.Config().StepBudget,
		"session", rt.SessionID)

	if len(args) > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return rt.RunBatch(ctx, strings.Join(args, " "))
	}
	return rt.RunInteractive(context.Background(), cmd.InOrStdin())
}

func toolsCmd(a *app) *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := cli.BuildCatalog(a.settings, a.workDir)
			if err != nil {
				return err
			}
			cli.ListTools(cmd.OutOrStdout(), catalog, verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func sessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openTranscripts()
			if err != nil {
				return err
			}
			defer store.Close()
			return cli.ListSessions(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a recorded transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openTranscripts()
			if err != nil {
				return err
			}
			defer store.Close()
			return cli.ShowSession(cmd.Context(), cmd.OutOrStdout(), store, args[0])
		},
	}
}

func (a *app) openTranscripts() (*storage.SqliteStorage, error) {
	path := a.settings.Transcript.Path
	if path == "" {
		return nil, fmt.Errorf("%w: transcript database (use --transcript or TOOLLOOP_TRANSCRIPT)", config.ErrConfigurationMissing)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("transcript database %s: %w", path, err)
	}
	return storage.OpenSqlite(path)
}

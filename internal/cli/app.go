// Package cli is the command-line front end of the BookCafe client. One-shot
// commands and the interactive shell share the same cobra command tree.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/logging"
	"github.com/example/bookcafe-client/internal/view"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Options configures an App.
type Options struct {
	Services *application.Services
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
}

// App runs commands against one set of services. Caches live as long as the
// App; the cubicle edit marker is only honoured inside the shell.
type App struct {
	services    *application.Services
	composer    *view.Composer
	in          *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	logger      *slog.Logger
	interactive bool
}

// failure is an error already phrased for the user.
type failure struct {
	message string
	err     error
}

func (f *failure) Error() string {
	if f.err == nil {
		return f.message
	}
	return f.message + ": " + f.err.Error()
}

func (f *failure) Unwrap() error { return f.err }

// fail pairs err with the message shown when the API gives none.
func fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &failure{message: application.UserMessage(err, fallback), err: err}
}

type usageError struct {
	message string
}

func (u usageError) Error() string { return u.message }

func usagef(format string, args ...any) error {
	return usageError{message: fmt.Sprintf(format, args...)}
}

// commandError marks errors returned by a command body, as opposed to
// cobra's own argument and lookup errors.
type commandError struct {
	err error
}

func (c *commandError) Error() string { return c.err.Error() }

func (c *commandError) Unwrap() error { return c.err }

// New returns an App. Stdin, Stdout and Stderr default to empty input and
// io.Discard.
func New(opts Options) (*App, error) {
	if opts.Services == nil {
		return nil, errors.New("cli: services are required")
	}
	in := opts.Stdin
	if in == nil {
		in = strings.NewReader("")
	}
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	errOut := opts.Stderr
	if errOut == nil {
		errOut = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		services: opts.Services,
		composer: view.NewComposer(),
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		logger:   logger.With("component", "cli"),
	}, nil
}

// Run restores any persisted session and executes args as one command.
func (a *App) Run(ctx context.Context, args []string) int {
	ctx = logging.ContextWithLogger(ctx, a.logger)
	if _, err := a.services.Auth.Restore(ctx); err != nil {
		a.logger.WarnContext(ctx, "failed to restore session", "error", err)
	}
	return a.exec(ctx, args)
}

// newRootCommand builds a fresh command tree, so flag values never leak from
// one shell line into the next.
func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookcafe",
		Short:         "Book cubicles at BookCafe",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{message: err.Error()}
	})

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.dashboardCommand(),
		a.cubiclesCommand(),
		a.bookingsCommand(),
		a.usersCommand(),
		a.profileCommand(),
		a.shellCommand(),
	)
	return root
}

// action adapts a command body to cobra.
func action(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd.Context(), cmd, args); err != nil {
			return &commandError{err: err}
		}
		return nil
	}
}

// group returns a parent command that only dispatches to its subcommands.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usagef("expected a subcommand; run \"%s --help\" for a list", cmd.CommandPath())
		},
	}
}

// exec runs one command and reports its failure on stderr.
func (a *App) exec(ctx context.Context, args []string) int {
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	root := a.newRootCommand()
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}
	name := root.Name()
	if cmd != nil {
		name = cmd.CommandPath()
	}

	var uErr usageError
	var fErr *failure
	var cErr *commandError
	switch {
	case errors.As(err, &uErr):
		fmt.Fprintf(a.errOut, "%s: %s\n", name, uErr.message)
		return ExitUsage
	case errors.As(err, &fErr):
		a.logger.DebugContext(ctx, "command failed", "command", name, "error", err, "error_kind", application.ErrorKind(err))
		fmt.Fprintln(a.errOut, fErr.message)
		return ExitFailure
	case errors.As(err, &cErr):
		a.logger.ErrorContext(ctx, "command failed", "command", name, "error", err, "error_kind", application.ErrorKind(err))
		fmt.Fprintln(a.errOut, application.UserMessage(err, "Something went wrong."))
		return ExitFailure
	}
	fmt.Fprintln(a.errOut, err)
	return ExitUsage
}

// confirm asks question on stdout and reads a yes/no answer.
func (a *App) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

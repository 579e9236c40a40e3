package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

const prompt = "bookcafe> "

func (a *App) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			if a.interactive {
				a.printf("Already in the shell.\n")
				return nil
			}
			a.interactive = true
			defer func() { a.interactive = false }()
			return a.shell(ctx)
		}),
	}
}

// shell reads commands until EOF or "exit". A restored session shows its
// dashboard first.
func (a *App) shell(ctx context.Context) error {
	if a.services.Session.Active() {
		if err := a.showDashboard(ctx); err != nil {
			return err
		}
	} else {
		a.printf("Not logged in. Use \"login --email <address> --password <password>\" or \"register\".\n")
	}

	for {
		a.printf(prompt)
		line, err := a.in.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			args, splitErr := shellwords.Parse(line)
			switch {
			case splitErr != nil:
				fmt.Fprintln(a.errOut, splitErr)
			case len(args) == 0:
			case args[0] == "exit" || args[0] == "quit":
				return nil
			default:
				a.exec(ctx, args)
			}
		}
		if errors.Is(err, io.EOF) {
			a.printf("\n")
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

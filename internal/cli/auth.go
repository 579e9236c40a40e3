package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
)

func (a *App) registerCommand() *cobra.Command {
	var input application.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			if err := a.services.Auth.Register(ctx, input); err != nil {
				return fail(err, "Registration failed")
			}
			a.printf("Account created! You can now log in.\n")
			return nil
		}),
	}
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	return cmd
}

func (a *App) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and show the dashboard",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			user, err := a.services.Auth.Login(ctx, email, password)
			if err != nil {
				return fail(err, "Invalid credentials")
			}
			a.printf("Welcome, %s.\n\n", user.FullName())
			return a.showDashboard(ctx)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			if err := a.services.Auth.Logout(ctx); err != nil {
				return fail(err, "Logout failed")
			}
			a.printf("Logged out.\n")
			return nil
		}),
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: action(func(_ context.Context, _ *cobra.Command, _ []string) error {
			session := a.services.Session.Session()
			if !session.Active() {
				a.printf("Not logged in.\n")
				return nil
			}
			return renderPanel(a.out, a.composer.Whoami(*session.User))
		}),
	}
}

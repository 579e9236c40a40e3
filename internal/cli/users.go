package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/view"
)

func (a *App) usersCommand() *cobra.Command {
	cmd := group("users", "Manage accounts (admins only)")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
				users, err := a.services.Users.List(ctx)
				if err != nil {
					return fail(err, "Failed to load users")
				}
				return a.renderUsers(users)
			}),
		},
		a.addUserCommand(),
		a.editUserCommand(),
		&cobra.Command{
			Use:   "role <id> <role>",
			Short: "Change an account's role",
			Args:  cobra.ExactArgs(2),
			RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
				id, err := parseID(args[0], "user")
				if err != nil {
					return err
				}
				if err := a.services.Users.ChangeRole(ctx, id, application.Role(args[1])); err != nil {
					return fail(err, "Failed to update role")
				}
				a.printf("Role updated.\n")
				return a.renderCachedUsers()
			}),
		},
		a.deleteUserCommand(),
	)
	return cmd
}

func (a *App) renderUsers(users []application.User) error {
	d := view.DashboardFor(a.services.Session.Viewer())
	return renderPanel(a.out, a.composer.Users(d, users))
}

func (a *App) renderCachedUsers() error {
	users, _ := a.services.Users.Cached()
	return a.renderUsers(users)
}

func (a *App) addUserCommand() *cobra.Command {
	var (
		input application.UserInput
		role  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account with any role",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			input.Role = application.Role(role)
			if err := a.services.Users.Create(ctx, input); err != nil {
				return fail(err, "Failed to add user")
			}
			a.printf("User added.\n")
			return a.renderCachedUsers()
		}),
	}
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(application.RoleUser), "user, staff or admin")
	return cmd
}

func (a *App) editUserCommand() *cobra.Command {
	var input application.UserInput
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an account's name, email or password",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if err := a.services.Users.UpdateCredentials(ctx, id, input); err != nil {
				return fail(err, "Failed to update user")
			}
			a.printf("User updated.\n")
			return a.renderCachedUsers()
		}),
	}
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "new last name")
	cmd.Flags().StringVar(&input.Email, "email", "", "new email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "new password, left unchanged when empty")
	return cmd
}

func (a *App) deleteUserCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an account",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if !yes && !a.confirm("Are you sure you want to delete this user?") {
				a.printf("Cancelled.\n")
				return nil
			}
			if err := a.services.Users.Delete(ctx, id); err != nil {
				return fail(err, "Failed to delete user")
			}
			a.printf("User deleted.\n")
			return a.renderCachedUsers()
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *App) profileCommand() *cobra.Command {
	cmd := group("profile", "Show or change your own account")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the profile form",
			Args:  cobra.NoArgs,
			RunE: action(func(_ context.Context, _ *cobra.Command, _ []string) error {
				form, err := a.services.Profile.Form()
				if err != nil {
					return fail(err, "Failed to load profile")
				}
				a.printf("first name: %s\nlast name: %s\nemail: %s\navatar url: %s\n",
					form.FirstName, form.LastName, form.Email, form.AvatarURL)
				return nil
			}),
		},
		a.updateProfileCommand(),
		&cobra.Command{
			Use:   "avatar <file>",
			Short: "Upload a profile picture",
			Args:  cobra.ExactArgs(1),
			RunE:  action(a.uploadAvatar),
		},
	)
	return cmd
}

// updateProfileCommand starts from the prefilled form and applies the flags given.
func (a *App) updateProfileCommand() *cobra.Command {
	var firstName, lastName, email, avatarURL, password string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email, avatar or password",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			form, err := a.services.Profile.Form()
			if err != nil {
				return fail(err, "Failed to update profile")
			}
			flags := cmd.Flags()
			if flags.Changed("first-name") {
				form.FirstName = firstName
			}
			if flags.Changed("last-name") {
				form.LastName = lastName
			}
			if flags.Changed("email") {
				form.Email = email
			}
			if flags.Changed("avatar-url") {
				form.AvatarURL = avatarURL
			}
			form.Password = password

			if err := a.services.Profile.Update(ctx, form); err != nil {
				return fail(err, "Failed to update profile")
			}
			a.printf("Profile updated successfully.\n")
			return nil
		}),
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "avatar image URL")
	cmd.Flags().StringVar(&password, "password", "", "new password, left unchanged when empty")
	return cmd
}

func (a *App) uploadAvatar(ctx context.Context, _ *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return &failure{message: fmt.Sprintf("Cannot read %s.", args[0]), err: err}
	}
	defer file.Close()

	url, err := a.services.Profile.UploadAvatar(ctx, file.Name(), file)
	if err != nil {
		return fail(err, "Failed to upload avatar")
	}
	a.printf("Avatar updated: %s\n", url)
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/view"
)

func (a *App) cubiclesCommand() *cobra.Command {
	cmd := group("cubicles", "List and manage cubicles")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cubicles",
			Args:  cobra.NoArgs,
			RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
				cubicles, err := a.services.Cubicles.List(ctx)
				if err != nil {
					return fail(err, "Failed to load cubicles")
				}
				return a.renderCubicles(cubicles)
			}),
		},
		&cobra.Command{
			Use:   "edit <id>",
			Short: "Load a cubicle into the form",
			Args:  cobra.ExactArgs(1),
			RunE:  action(a.editCubicle),
		},
		withCubicleForm(&cobra.Command{
			Use:   "save",
			Short: "Submit the form, updating the cubicle being edited",
			Args:  cobra.NoArgs,
		}, a.saveCubicle),
		&cobra.Command{
			Use:   "cancel-edit",
			Short: "Clear the form",
			Args:  cobra.NoArgs,
			RunE: action(func(_ context.Context, _ *cobra.Command, _ []string) error {
				a.services.Cubicles.CancelEdit()
				a.printf("Edit cancelled.\n")
				return nil
			}),
		},
		withCubicleForm(&cobra.Command{
			Use:   "create",
			Short: "Add a cubicle",
			Args:  cobra.NoArgs,
		}, func(ctx context.Context, cmd *cobra.Command, form *cubicleForm, _ []string) error {
			a.services.Cubicles.CancelEdit()
			return a.submitCubicle(ctx, cmd, form)
		}),
		withCubicleForm(&cobra.Command{
			Use:   "update <id>",
			Short: "Change a cubicle",
			Args:  cobra.ExactArgs(1),
		}, a.updateCubicle),
		a.deleteCubicleCommand(),
	)
	return cmd
}

func (a *App) renderCubicles(cubicles []application.Cubicle) error {
	d := view.DashboardFor(a.services.Session.Viewer())
	switch {
	case d.Has(view.PanelAdminCubicles):
		return renderPanel(a.out, a.composer.Cubicles(d, view.PanelAdminCubicles, cubicles))
	case d.Has(view.PanelStaffCubicles):
		return renderPanel(a.out, a.composer.Cubicles(d, view.PanelStaffCubicles, cubicles))
	}
	return renderPanel(a.out, a.composer.CubicleSelect(cubicles))
}

// editCubicle fills the form from a cubicle. Outside the shell the form does
// not outlive the process, so the user is pointed at "cubicles update".
func (a *App) editCubicle(ctx context.Context, _ *cobra.Command, args []string) error {
	id, err := parseID(args[0], "cubicle")
	if err != nil {
		return err
	}
	cubicle, err := a.services.Cubicles.BeginEdit(ctx, id)
	if err != nil {
		return fail(err, "Failed to load cubicle")
	}
	a.printf("Editing cubicle #%d\n  name: %s\n  description: %s\n  hourly rate: %.2f\n  beer: %t\n",
		cubicle.ID, cubicle.Name, cubicle.Description, cubicle.HourlyRate, cubicle.HasBeer)
	if !a.interactive {
		a.services.Cubicles.CancelEdit()
		a.printf("Run \"cubicles update %d\" with the fields to change.\n", cubicle.ID)
		return nil
	}
	a.printf("Run \"cubicles save\" with the fields to change, or \"cubicles cancel-edit\".\n")
	return nil
}

type cubicleForm struct {
	name        string
	description string
	rate        float64
	beer        bool
}

// withCubicleForm binds the form flags to cmd and runs fn with them.
func withCubicleForm(cmd *cobra.Command, fn func(ctx context.Context, cmd *cobra.Command, form *cubicleForm, args []string) error) *cobra.Command {
	form := &cubicleForm{}
	cmd.RunE = action(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		return fn(ctx, cmd, form, args)
	})
	cmd.Flags().StringVar(&form.name, "name", "", "cubicle name")
	cmd.Flags().StringVar(&form.description, "description", "", "description")
	cmd.Flags().Float64Var(&form.rate, "rate", 0, "hourly rate")
	cmd.Flags().BoolVar(&form.beer, "beer", false, "beer allowed")
	return cmd
}

// saveCubicle only makes sense while the shell keeps the edit marker alive.
func (a *App) saveCubicle(ctx context.Context, cmd *cobra.Command, form *cubicleForm, _ []string) error {
	if !a.interactive {
		return usagef("only available in the shell; use \"cubicles create\" or \"cubicles update <id>\"")
	}
	return a.submitCubicle(ctx, cmd, form)
}

func (a *App) updateCubicle(ctx context.Context, cmd *cobra.Command, form *cubicleForm, args []string) error {
	id, err := parseID(args[0], "cubicle")
	if err != nil {
		return err
	}
	if _, err := a.services.Cubicles.BeginEdit(ctx, id); err != nil {
		return fail(err, "Failed to load cubicle")
	}
	return a.submitCubicle(ctx, cmd, form)
}

// submitCubicle saves the form. With an edit in progress, flags that were not
// given keep the edited cubicle's values.
func (a *App) submitCubicle(ctx context.Context, cmd *cobra.Command, form *cubicleForm) error {
	var input application.CubicleInput
	if id, editing := a.services.Session.EditingID(); editing {
		if cached, ok := a.services.Cubicles.Cached(); ok {
			for _, c := range cached {
				if c.ID == id {
					input = application.CubicleInput{Name: c.Name, Description: c.Description, HourlyRate: c.HourlyRate, HasBeer: c.HasBeer}
				}
			}
		}
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = form.name
	}
	if flags.Changed("description") {
		input.Description = form.description
	}
	if flags.Changed("rate") {
		input.HourlyRate = form.rate
	}
	if flags.Changed("beer") {
		input.HasBeer = form.beer
	}

	if err := a.services.Cubicles.Save(ctx, input); err != nil {
		return fail(err, "Failed to save cubicle")
	}
	a.printf("Cubicle saved.\n")
	cubicles, _ := a.services.Cubicles.Cached()
	return a.renderCubicles(cubicles)
}

func (a *App) deleteCubicleCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a cubicle",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0], "cubicle")
			if err != nil {
				return err
			}
			if !yes && !a.confirm("Are you sure you want to delete this cubicle?") {
				a.printf("Cancelled.\n")
				return nil
			}
			if err := a.services.Cubicles.Delete(ctx, id); err != nil {
				return fail(err, "Failed to delete cubicle")
			}
			a.printf("Cubicle deleted.\n")
			cubicles, _ := a.services.Cubicles.Cached()
			return a.renderCubicles(cubicles)
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

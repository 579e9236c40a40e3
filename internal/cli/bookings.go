package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/view"
)

func (a *App) bookingsCommand() *cobra.Command {
	cmd := group("bookings", "List, create and manage bookings")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the bookings your role can see",
			Args:  cobra.NoArgs,
			RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
				if _, _, err := a.services.Bookings.Load(ctx); err != nil {
					return fail(err, "Failed to load bookings")
				}
				return a.renderBookings(application.FilterQuery{})
			}),
		},
		a.createBookingCommand(),
		a.lookupBookingsCommand(),
		a.transitionCommand("confirm <id>", "Confirm a pending booking", application.BookingConfirmed),
		a.transitionCommand("cancel <id>", "Cancel a booking", application.BookingCancelled),
		a.filterBookingsCommand(),
	)
	return cmd
}

// renderBookings draws the viewer's bookings panel from the cache.
func (a *App) renderBookings(q application.FilterQuery) error {
	viewer := a.services.Session.Viewer()
	d := view.DashboardFor(viewer)
	panel, ok := a.composer.FilteredBookings(d, bookingsPanel(viewer.Role), a.services.Bookings, q)
	if !ok {
		return nil
	}
	return renderPanel(a.out, panel)
}

func (a *App) filterBookingsCommand() *cobra.Command {
	var text, status string
	cmd := &cobra.Command{
		Use:   "filter [text]",
		Short: "Filter the loaded bookings",
		Args:  cobra.MaximumNArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			if text == "" && len(args) > 0 {
				text = args[0]
			}
			q, err := application.ParseFilterQuery(text, status)
			if err != nil {
				return fail(err, "Invalid filter")
			}

			key := application.CacheKeyFor(a.services.Session.Viewer().Role)
			if _, ok := a.services.Bookings.Cached(key); !ok {
				if _, _, err := a.services.Bookings.Load(ctx); err != nil {
					return fail(err, "Failed to load bookings")
				}
			}
			return a.renderBookings(q)
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "search text")
	cmd.Flags().StringVar(&status, "status", "", "pending, confirmed or cancelled")
	return cmd
}

func (a *App) createBookingCommand() *cobra.Command {
	var (
		cubicleID int
		start     string
		hours     int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book a cubicle",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			input := application.BookingInput{CubicleID: cubicleID, Duration: hours}
			if start != "" {
				t, err := parseStart(start)
				if err != nil {
					return err
				}
				input.StartTime = t
			}

			if err := a.services.Bookings.Create(ctx, input); err != nil {
				return fail(err, "Booking failed")
			}
			a.printf("Booking created successfully!\n")
			return a.renderBookings(application.FilterQuery{})
		}),
	}
	cmd.Flags().IntVar(&cubicleID, "cubicle", 0, "cubicle id")
	cmd.Flags().StringVar(&start, "start", "", "start time, e.g. 2026-03-14 15:00")
	cmd.Flags().IntVar(&hours, "hours", 1, "duration in hours")
	return cmd
}

func (a *App) lookupBookingsCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "lookup [email]",
		Short: "Find a guest's bookings by email",
		Args:  cobra.MaximumNArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			if email == "" && len(args) > 0 {
				email = args[0]
			}
			results, err := a.services.Bookings.Lookup(ctx, email)
			if err != nil {
				return fail(err, "Lookup failed")
			}
			d := view.DashboardFor(a.services.Session.Viewer())
			return renderPanel(a.out, a.composer.Bookings(d, view.PanelStaffLookup, results))
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "guest email address")
	return cmd
}

func (a *App) transitionCommand(use, short string, to application.BookingStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: action(func(ctx context.Context, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			if err := a.services.Bookings.Transition(ctx, id, to); err != nil {
				return fail(err, "Failed to update booking")
			}
			a.printf("Booking #%d is now %s.\n", id, to)
			return a.renderBookings(application.FilterQuery{})
		}),
	}
}

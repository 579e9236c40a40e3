package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/view"
)

func (a *App) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the role dashboard",
		Args:  cobra.NoArgs,
		RunE: action(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			return a.showDashboard(ctx)
		}),
	}
}

// showDashboard issues the dashboard's initial loads and renders every panel.
// A failed load leaves its panel empty, as a page would.
func (a *App) showDashboard(ctx context.Context) error {
	session := a.services.Session.Session()
	if !session.Active() {
		a.printf("Not logged in.\n")
		return nil
	}
	d := view.DashboardFor(a.services.Session.Viewer())

	var panels []view.Panel
	for _, load := range d.Loads {
		switch load {
		case view.LoadCubicles:
			cubicles, err := a.services.Cubicles.List(ctx)
			a.loadFailed(ctx, load, err)
			switch {
			case d.Has(view.PanelAdminCubicles):
				panels = append(panels, a.composer.Cubicles(d, view.PanelAdminCubicles, cubicles))
			case d.Has(view.PanelStaffCubicles):
				panels = append(panels, a.composer.Cubicles(d, view.PanelStaffCubicles, cubicles))
			default:
				panels = append(panels, a.composer.CubicleSelect(cubicles))
			}
		case view.LoadAllBookings, view.LoadTodayBookings, view.LoadMyBookings:
			_, bookings, err := a.services.Bookings.Load(ctx)
			a.loadFailed(ctx, load, err)
			panels = append(panels, a.composer.Bookings(d, bookingsPanel(d.Viewer.Role), bookings))
		case view.LoadUsers:
			users, err := a.services.Users.List(ctx)
			a.loadFailed(ctx, load, err)
			panels = append(panels, a.composer.Users(d, users))
		}
	}
	panels = append(panels,
		view.Panel{ID: view.PanelAddUser, Heading: "Add user", Hint: `Run "users add" to create an account with any role.`},
		view.Panel{ID: view.PanelStaffLookup, Heading: "Find bookings", Hint: `Run "bookings lookup --email <address>" to find a guest's bookings.`},
		a.composer.Whoami(*session.User),
	)
	return view.RenderDashboard(a.out, d, panels...)
}

func (a *App) loadFailed(ctx context.Context, load view.Load, err error) {
	if err == nil {
		return
	}
	level := slog.LevelWarn
	if errors.Is(err, application.ErrStaleSession) {
		level = slog.LevelDebug
	}
	a.logger.Log(ctx, level, "dashboard load failed", "load", string(load), "error", err, "error_kind", application.ErrorKind(err))
}

// bookingsPanel is the bookings list a role's dashboard shows.
func bookingsPanel(role application.Role) view.PanelID {
	switch role {
	case application.RoleAdmin:
		return view.PanelAdminBookings
	case application.RoleStaff:
		return view.PanelStaffBookings
	}
	return view.PanelUserBookings
}

func renderPanel(w io.Writer, p view.Panel) error {
	if err := view.Render(w, p); err != nil {
		return fmt.Errorf("render %s: %w", p.ID, err)
	}
	return nil
}

package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/bookcafe-client/internal/application"
)

var (
	adminViewer = application.Viewer{UserID: 5, Role: application.RoleAdmin}
	superViewer = application.Viewer{UserID: 1, Role: application.RoleAdmin, SuperAdmin: true}
	staffViewer = application.Viewer{UserID: 3, Role: application.RoleStaff}
	guestViewer = application.Viewer{UserID: 2, Role: application.RoleUser}
)

type cacheStub map[string][]application.Booking

func (c cacheStub) Cached(key string) ([]application.Booking, bool) {
	b, ok := c[key]
	return b, ok
}

func sampleBookings() []application.Booking {
	start := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	return []application.Booking{
		{ID: 1, CubicleName: "Nook A", UserID: 2, UserName: "Ana Reyes", Status: application.BookingPending, StartTime: start, EndTime: start.Add(2 * time.Hour), TotalPrice: 240},
		{ID: 2, CubicleName: "Loft", UserID: 4, UserName: "Ben Ong", Status: application.BookingConfirmed, StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), TotalPrice: 250.5},
	}
}

func TestDashboardFor(t *testing.T) {
	tests := []struct {
		name     string
		viewer   application.Viewer
		title    string
		subtitle string
		panels   []PanelID
		loads    []Load
	}{
		{
			name:     "admin",
			viewer:   adminViewer,
			title:    "Admin Dashboard",
			subtitle: "Manage cubicles, bookings, and users.",
			panels:   []PanelID{PanelAdminCubicles, PanelAdminBookings, PanelAdminUsers, PanelProfile},
			loads:    []Load{LoadCubicles, LoadAllBookings, LoadUsers},
		},
		{
			name:     "super admin",
			viewer:   superViewer,
			title:    "Admin Dashboard",
			subtitle: "Manage cubicles, bookings, and users.",
			panels:   []PanelID{PanelAdminCubicles, PanelAdminBookings, PanelAdminUsers, PanelAddUser, PanelProfile},
			loads:    []Load{LoadCubicles, LoadAllBookings, LoadUsers},
		},
		{
			name:     "staff",
			viewer:   staffViewer,
			title:    "Staff Dashboard",
			subtitle: "View today's bookings and help guests.",
			panels:   []PanelID{PanelStaffBookings, PanelStaffLookup, PanelStaffCubicles, PanelProfile},
			loads:    []Load{LoadTodayBookings, LoadCubicles},
		},
		{
			name:     "user",
			viewer:   guestViewer,
			title:    "User Dashboard",
			subtitle: "Book a private cubicle and view your reservations.",
			panels:   []PanelID{PanelCubicleSelect, PanelUserBookings, PanelProfile},
			loads:    []Load{LoadCubicles, LoadMyBookings},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DashboardFor(tt.viewer)
			require.Equal(t, tt.title, d.Title)
			require.Equal(t, tt.subtitle, d.Subtitle)
			require.Equal(t, tt.panels, d.Panels)
			require.Equal(t, tt.loads, d.Loads)
		})
	}

	require.Empty(t, DashboardFor(application.Viewer{}).Panels)
}

func TestComposer_BookingAffordancesFollowCapabilities(t *testing.T) {
	c := NewComposer()
	bookings := sampleBookings()

	staff := c.Bookings(DashboardFor(staffViewer), PanelStaffBookings, bookings)
	require.Equal(t, "Today's bookings", staff.Heading)
	require.Equal(t, application.Actions{application.ActionConfirm, application.ActionCancel}, staff.Rows[0].Actions)
	require.Equal(t, application.Actions{application.ActionCancel}, staff.Rows[1].Actions)

	guest := c.Bookings(DashboardFor(guestViewer), PanelUserBookings, bookings)
	require.Equal(t, application.Actions{application.ActionCancel}, guest.Rows[0].Actions)
	require.Empty(t, guest.Rows[1].Actions, "other guests' bookings are read-only")
	require.Equal(t, []string{"#1", "Nook A", "pending", "2026-03-14 10:00 to 2026-03-14 12:00", "Ana Reyes", "₱240.00"}, guest.Rows[0].Cells)
}

func TestComposer_UserAffordances(t *testing.T) {
	c := NewComposer()
	users := []application.User{
		{ID: 1, FirstName: "Super", LastName: "Admin", Role: application.RoleAdmin},
		{ID: 2, FirstName: "Ana", LastName: "Reyes", Role: application.RoleUser},
		{ID: 5, FirstName: "Xavier", LastName: "Yu", Role: application.RoleAdmin},
	}

	panel := c.Users(DashboardFor(adminViewer), users)
	require.Empty(t, panel.Rows[0].Actions, "admin accounts are left to the super admin")
	require.Equal(t, application.Actions{application.ActionEdit, application.ActionChangeRole, application.ActionDelete}, panel.Rows[1].Actions)
	require.Empty(t, panel.Rows[2].Actions, "own row is never managed here")

	panel = c.Users(DashboardFor(superViewer), users)
	require.False(t, panel.Rows[0].Actions.Has(application.ActionDelete))
	require.True(t, panel.Rows[2].Actions.Has(application.ActionDelete))
}

func TestComposer_CubicleRows(t *testing.T) {
	c := NewComposer()
	cubicles := []application.Cubicle{
		{ID: 1, Name: "Nook A", HourlyRate: 120},
		{ID: 2, Name: "Loft", Description: "Upstairs", HourlyRate: 250.5, HasBeer: true},
	}

	admin := c.Cubicles(DashboardFor(adminViewer), PanelAdminCubicles, cubicles)
	require.Equal(t, []string{"#1", "Nook A", "No description", "No beer, ₱120.00/hour"}, admin.Rows[0].Cells)
	require.Equal(t, "Beer allowed, ₱250.50/hour", admin.Rows[1].Cells[3])
	require.Equal(t, application.Actions{application.ActionEdit, application.ActionDelete}, admin.Rows[0].Actions)

	staff := c.Cubicles(DashboardFor(staffViewer), PanelStaffCubicles, cubicles)
	require.Equal(t, application.Actions{application.ActionEdit}, staff.Rows[0].Actions)

	sel := c.CubicleSelect(cubicles)
	require.Equal(t, "Loft - ₱250.50/hour", sel.Rows[1].Cells[1])
	require.Empty(t, sel.Rows[1].Actions)
}

func TestComposer_FilteredBookings(t *testing.T) {
	c := NewComposer()
	cache := cacheStub{application.CacheStaffBookings: sampleBookings()}
	staff := DashboardFor(staffViewer)

	panel, ok := c.FilteredBookings(staff, PanelStaffBookings, cache, application.FilterQuery{Text: "ana"})
	require.True(t, ok)
	require.Len(t, panel.Rows, 1)
	require.Equal(t, 1, panel.Rows[0].ID)

	panel, ok = c.FilteredBookings(staff, PanelStaffBookings, cache, application.FilterQuery{Status: application.BookingCancelled})
	require.True(t, ok)
	require.Empty(t, panel.Rows)
	require.Equal(t, "No bookings found.", panel.Hint)

	_, ok = c.FilteredBookings(staff, PanelAdminBookings, cache, application.FilterQuery{})
	require.False(t, ok, "panels missing from the dashboard are skipped")
	_, ok = c.FilteredBookings(staff, PanelAdminUsers, cache, application.FilterQuery{})
	require.False(t, ok)

	panel, ok = c.FilteredBookings(DashboardFor(adminViewer), PanelAdminBookings, cache, application.FilterQuery{})
	require.True(t, ok, "an unloaded cache renders as empty")
	require.Empty(t, panel.Rows)
}

func TestComposer_Whoami(t *testing.T) {
	c := NewComposer()
	panel := c.Whoami(application.User{ID: 2, FirstName: "Ana", LastName: "Reyes", Email: "a@b.com", Role: application.RoleUser})
	require.Equal(t, "Ana Reyes", panel.Heading)
	require.Equal(t, []string{"Avatar", DefaultAvatar}, panel.Rows[2].Cells)

	panel = c.Whoami(application.User{ID: 2, AvatarURL: "https://cdn/x.png"})
	require.Equal(t, "https://cdn/x.png", panel.Rows[2].Cells[1])
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Panel{Heading: "Users", Hint: "No users found."}))
	require.Equal(t, "== Users ==\nNo users found.\n", buf.String())

	buf.Reset()
	c := NewComposer()
	panel := c.Bookings(DashboardFor(staffViewer), PanelStaffBookings, sampleBookings())
	require.NoError(t, Render(&buf, panel))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasSuffix(lines[1], "[confirm] [cancel]"))
	require.True(t, strings.HasSuffix(lines[2], "[cancel]"))
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDashboard(&buf, DashboardFor(application.Viewer{})))
	require.Equal(t, "Not logged in.\n", buf.String())

	buf.Reset()
	c := NewComposer()
	d := DashboardFor(guestViewer)
	err := RenderDashboard(&buf, d,
		c.CubicleSelect(nil),
		c.Users(d, nil),
	)
	require.NoError(t, err)
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "User Dashboard\nBook a private cubicle and view your reservations.\n"))
	require.Contains(t, out, "No cubicles yet. Create one above.")
	require.NotContains(t, out, "Users", "panels outside the dashboard are not rendered")
}

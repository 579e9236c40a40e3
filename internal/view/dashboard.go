// Package view composes role-specific dashboards from session state and
// cached collections, and renders them as text.
package view

import (
	"strings"

	"github.com/example/bookcafe-client/internal/application"
)

// PanelID names a dashboard panel.
type PanelID string

const (
	PanelAdminCubicles PanelID = "admin-cubicles"
	PanelAdminBookings PanelID = "admin-bookings"
	PanelAdminUsers    PanelID = "admin-users"
	PanelAddUser       PanelID = "admin-add-user"
	PanelStaffBookings PanelID = "staff-bookings"
	PanelStaffLookup   PanelID = "staff-lookup"
	PanelStaffCubicles PanelID = "staff-cubicles"
	PanelCubicleSelect PanelID = "user-cubicle-select"
	PanelUserBookings  PanelID = "user-bookings"
	PanelProfile       PanelID = "profile"
)

// Load is a collection a dashboard fetches when it is shown.
type Load string

const (
	LoadCubicles      Load = "cubicles"
	LoadAllBookings   Load = "bookings"
	LoadTodayBookings Load = "bookings/today"
	LoadMyBookings    Load = "bookings/mine"
	LoadUsers         Load = "users"
)

// Dashboard is what a viewer sees after login.
type Dashboard struct {
	Viewer   application.Viewer
	Title    string
	Subtitle string
	Panels   []PanelID
	Loads    []Load
}

// Has reports whether panel id is visible.
func (d Dashboard) Has(id PanelID) bool {
	for _, p := range d.Panels {
		if p == id {
			return true
		}
	}
	return false
}

// DashboardFor selects the dashboard for viewer. Anonymous viewers get an
// empty dashboard.
func DashboardFor(viewer application.Viewer) Dashboard {
	if viewer.Anonymous() {
		return Dashboard{Viewer: viewer}
	}

	d := Dashboard{Viewer: viewer, Title: roleTitle(viewer.Role) + " Dashboard"}
	switch viewer.Role {
	case application.RoleAdmin:
		d.Subtitle = "Manage cubicles, bookings, and users."
		d.Panels = []PanelID{PanelAdminCubicles, PanelAdminBookings, PanelAdminUsers}
		if application.AddUserAllowed(viewer) {
			d.Panels = append(d.Panels, PanelAddUser)
		}
		d.Loads = []Load{LoadCubicles, LoadAllBookings, LoadUsers}
	case application.RoleStaff:
		d.Subtitle = "View today's bookings and help guests."
		d.Panels = []PanelID{PanelStaffBookings, PanelStaffLookup, PanelStaffCubicles}
		d.Loads = []Load{LoadTodayBookings, LoadCubicles}
	default:
		d.Subtitle = "Book a private cubicle and view your reservations."
		d.Panels = []PanelID{PanelCubicleSelect, PanelUserBookings}
		d.Loads = []Load{LoadCubicles, LoadMyBookings}
	}
	d.Panels = append(d.Panels, PanelProfile)
	return d
}

func roleTitle(role application.Role) string {
	r := string(role)
	if r == "" {
		return ""
	}
	return strings.ToUpper(r[:1]) + r[1:]
}

// bookingCacheKey is the cache a bookings panel renders from.
func bookingCacheKey(id PanelID) (string, bool) {
	switch id {
	case PanelAdminBookings, PanelUserBookings:
		return application.CacheBookings, true
	case PanelStaffBookings:
		return application.CacheStaffBookings, true
	}
	return "", false
}

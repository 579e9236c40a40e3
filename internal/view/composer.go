package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/example/bookcafe-client/internal/application"
)

// DefaultAvatar is shown when an account has no avatar.
const DefaultAvatar = "assets/img/default-user.png"

const (
	hintNoCubicles = "No cubicles yet. Create one above."
	hintNoBookings = "No bookings found."
	hintNoUsers    = "No users found."
)

// Row is one rendered list entry with the affordances offered on it.
type Row struct {
	ID      int
	Cells   []string
	Actions application.Actions
}

// Panel is a rendered dashboard section. Hint is shown when Rows is empty.
type Panel struct {
	ID      PanelID
	Heading string
	Rows    []Row
	Hint    string
}

// BookingSource exposes cached booking lists by cache key.
type BookingSource interface {
	Cached(key string) ([]application.Booking, bool)
}

// Composer turns collections into panels. Affordances come from
// application.CapabilitiesFor only.
type Composer struct{}

// NewComposer returns a Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Cubicles renders the cubicle list of an admin or staff dashboard.
func (c *Composer) Cubicles(d Dashboard, id PanelID, cubicles []application.Cubicle) Panel {
	p := Panel{ID: id, Heading: "Cubicles", Hint: hintNoCubicles}
	for _, cub := range cubicles {
		description := cub.Description
		if description == "" {
			description = "No description"
		}
		p.Rows = append(p.Rows, Row{
			ID:      cub.ID,
			Cells:   []string{ref(cub.ID), cub.Name, description, beerLine(cub)},
			Actions: application.CapabilitiesFor(d.Viewer, application.EntityCubicle, cub),
		})
	}
	return p
}

// CubicleSelect renders the options a guest books from.
func (c *Composer) CubicleSelect(cubicles []application.Cubicle) Panel {
	p := Panel{ID: PanelCubicleSelect, Heading: "Book a cubicle", Hint: hintNoCubicles}
	for _, cub := range cubicles {
		p.Rows = append(p.Rows, Row{ID: cub.ID, Cells: []string{ref(cub.ID), CubicleOption(cub)}})
	}
	return p
}

// Bookings renders a bookings panel from an already filtered list.
func (c *Composer) Bookings(d Dashboard, id PanelID, bookings []application.Booking) Panel {
	heading := "Bookings"
	switch id {
	case PanelStaffBookings:
		heading = "Today's bookings"
	case PanelUserBookings:
		heading = "My bookings"
	case PanelStaffLookup:
		heading = "Lookup results"
	}

	p := Panel{ID: id, Heading: heading, Hint: hintNoBookings}
	for _, b := range bookings {
		p.Rows = append(p.Rows, Row{
			ID: b.ID,
			Cells: []string{
				ref(b.ID),
				b.CubicleName,
				string(b.Status),
				formatTime(b.StartTime) + " to " + formatTime(b.EndTime),
				b.UserName,
				peso(b.TotalPrice),
			},
			Actions: application.CapabilitiesFor(d.Viewer, application.EntityBooking, b),
		})
	}
	return p
}

// FilteredBookings re-renders bookings panel id from source filtered by q.
// It reports false without error when the panel is not on the dashboard.
func (c *Composer) FilteredBookings(d Dashboard, id PanelID, source BookingSource, q application.FilterQuery) (Panel, bool) {
	key, ok := bookingCacheKey(id)
	if !ok || !d.Has(id) {
		return Panel{}, false
	}
	cached, _ := source.Cached(key)
	return c.Bookings(d, id, application.ApplyFilter(cached, q)), true
}

// Users renders the account list of the admin dashboard.
func (c *Composer) Users(d Dashboard, users []application.User) Panel {
	p := Panel{ID: PanelAdminUsers, Heading: "Users", Hint: hintNoUsers}
	for _, u := range users {
		p.Rows = append(p.Rows, Row{
			ID:      u.ID,
			Cells:   []string{ref(u.ID), u.FullName(), string(u.Role), u.Email},
			Actions: application.CapabilitiesFor(d.Viewer, application.EntityUser, u),
		})
	}
	return p
}

// Whoami renders the navigation summary of the logged-in user.
func (c *Composer) Whoami(user application.User) Panel {
	avatar := user.AvatarURL
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Panel{
		ID:      PanelProfile,
		Heading: user.FullName(),
		Rows: []Row{
			{ID: user.ID, Cells: []string{"Role", string(user.Role)}},
			{ID: user.ID, Cells: []string{"Email", user.Email}},
			{ID: user.ID, Cells: []string{"Avatar", avatar}},
		},
	}
}

// CubicleOption is the select text of a cubicle.
func CubicleOption(c application.Cubicle) string {
	return fmt.Sprintf("%s - %s/hour", c.Name, peso(c.HourlyRate))
}

func beerLine(c application.Cubicle) string {
	beer := "No beer"
	if c.HasBeer {
		beer = "Beer allowed"
	}
	return fmt.Sprintf("%s, %s/hour", beer, peso(c.HourlyRate))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format(application.DisplayTimeLayout)
}

func peso(amount float64) string {
	return fmt.Sprintf("₱%.2f", amount)
}

func ref(id int) string {
	return "#" + strconv.Itoa(id)
}

package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/bookcafe-client/internal/application"
)

var referenceTime = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical "now" of fixtures: a Saturday morning.
func ReferenceTime() time.Time {
	return referenceTime
}

// Password is the password of every seeded account.
const Password = "secret123"

var userCounter uint64 = 100

// ----------------------------- User fixtures -----------------------------

// UserFixture is an account known to the fake backend.
type UserFixture struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      application.Role
	AvatarURL string
}

// Model converts the fixture into the record the client sees.
func (f UserFixture) Model() application.User {
	return application.User{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Role:      f.Role,
		AvatarURL: f.AvatarURL,
	}
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a guest account with a fresh id and optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		ID:        int(idx),
		FirstName: "Guest",
		LastName:  fmt.Sprintf("%03d", idx),
		Email:     fmt.Sprintf("guest%03d@example.com", idx),
		Password:  Password,
		Role:      application.RoleUser,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated id.
func WithUserID(id int) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserName overrides the first and last name.
func WithUserName(first, last string) UserOption {
	return func(f *UserFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithUserRole overrides the role.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) { f.Role = role }
}

// SuperAdmin is the primordial admin, identified by the sentinel email.
func SuperAdmin() UserFixture {
	return NewUserFixture(
		WithUserID(application.PrimordialAdminID),
		WithUserEmail(application.DefaultSuperAdminEmail),
		WithUserName("Super", "Admin"),
		WithUserRole(application.RoleAdmin),
	)
}

// Guest is an ordinary customer.
func Guest() UserFixture {
	return NewUserFixture(
		WithUserID(2),
		WithUserEmail("a@b.com"),
		WithUserName("Ana", "Reyes"),
	)
}

// Staff works the front desk.
func Staff() UserFixture {
	return NewUserFixture(
		WithUserID(3),
		WithUserEmail("staff@bookcafe.com"),
		WithUserName("Sam", "Cruz"),
		WithUserRole(application.RoleStaff),
	)
}

// OtherGuest owns bookings the Guest must not touch.
func OtherGuest() UserFixture {
	return NewUserFixture(
		WithUserID(4),
		WithUserEmail("ben@example.com"),
		WithUserName("Ben", "Ong"),
	)
}

// Admin is an ordinary admin who is not the super-admin.
func Admin() UserFixture {
	return NewUserFixture(
		WithUserID(5),
		WithUserEmail("x@y.com"),
		WithUserName("Xia", "Yu"),
		WithUserRole(application.RoleAdmin),
	)
}

// ---------------------------- Cubicle fixtures ----------------------------

// CubicleFixture is a cubicle known to the fake backend.
type CubicleFixture struct {
	ID          int
	Name        string
	Description string
	HourlyRate  float64
	HasBeer     bool
}

// Model converts the fixture into the record the client sees.
func (f CubicleFixture) Model() application.Cubicle {
	return application.Cubicle{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		HourlyRate:  f.HourlyRate,
		HasBeer:     f.HasBeer,
	}
}

// Cubicles returns the seeded catalog.
func Cubicles() []CubicleFixture {
	return []CubicleFixture{
		{ID: 1, Name: "Nook A", Description: "Window seat", HourlyRate: 120, HasBeer: false},
		{ID: 2, Name: "Loft", Description: "", HourlyRate: 250.5, HasBeer: true},
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture is a booking known to the fake backend.
type BookingFixture struct {
	ID        int
	CubicleID int
	UserID    int
	StartTime time.Time
	Hours     int
	Status    application.BookingStatus
}

// Bookings returns one booking per status: today's pending and confirmed
// ones and a cancelled one tomorrow.
func Bookings() []BookingFixture {
	return []BookingFixture{
		{ID: 1, CubicleID: 1, UserID: 2, StartTime: referenceTime.Add(time.Hour), Hours: 2, Status: application.BookingPending},
		{ID: 2, CubicleID: 2, UserID: 4, StartTime: referenceTime.Add(3 * time.Hour), Hours: 1, Status: application.BookingConfirmed},
		{ID: 3, CubicleID: 1, UserID: 2, StartTime: referenceTime.Add(25 * time.Hour), Hours: 3, Status: application.BookingCancelled},
	}
}

// Seed is the initial state of a fake backend.
type Seed struct {
	Users    []UserFixture
	Cubicles []CubicleFixture
	Bookings []BookingFixture
}

// DefaultSeed returns every well-known fixture.
func DefaultSeed() Seed {
	return Seed{
		Users:    []UserFixture{SuperAdmin(), Guest(), Staff(), OtherGuest(), Admin()},
		Cubicles: Cubicles(),
		Bookings: Bookings(),
	}
}

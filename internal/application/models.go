package application

import (
	"strings"
	"time"
)

// Role identifies the privilege tier of a BookCafe account.
type Role string

const (
	// RoleUser books cubicles and manages their own reservations.
	RoleUser Role = "user"
	// RoleStaff handles the front desk: today's bookings, lookups and cubicle edits.
	RoleStaff Role = "staff"
	// RoleAdmin manages cubicles, every booking and user accounts.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// PrimordialAdminID is the account created with the backend. It can never be deleted.
const PrimordialAdminID = 1

// User mirrors a server-owned account record.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Role      Role
	AvatarURL string
}

// FullName joins the first and last name the way the navigation bar shows it.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Cubicle is a bookable private booth.
type Cubicle struct {
	ID          int
	Name        string
	Description string
	HourlyRate  float64
	HasBeer     bool
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// DisplayTimeLayout is used whenever a booking time is shown or searched.
const DisplayTimeLayout = "2006-01-02 15:04"

// Booking is a reservation of a cubicle for a time range.
type Booking struct {
	ID          int
	CubicleID   int
	CubicleName string
	UserID      int
	UserName    string
	StartTime   time.Time
	EndTime     time.Time
	Status      BookingStatus
	HourlyRate  float64
	TotalPrice  float64
}

// Session is the authenticated state of the client. Token and User are either
// both present or both absent.
type Session struct {
	Token string
	User  *User
}

// Active reports whether the session carries credentials.
func (s Session) Active() bool {
	return s.Token != "" && s.User != nil
}

// Viewer is the identity every capability decision is evaluated for.
type Viewer struct {
	UserID     int
	Role       Role
	SuperAdmin bool
}

// Anonymous reports whether nobody is logged in.
func (v Viewer) Anonymous() bool {
	return v.UserID == 0
}

// RegisterInput captures the self-service registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// CubicleInput captures the shared create/edit cubicle form.
type CubicleInput struct {
	Name        string
	Description string
	HourlyRate  float64
	HasBeer     bool
}

// BookingInput captures the booking form of a guest.
type BookingInput struct {
	CubicleID int
	StartTime time.Time
	// Duration is expressed in whole hours.
	Duration int
}

// UserInput captures the add-user and edit-credentials forms. Password is
// only sent when non-empty on updates.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role
}

// ProfileInput captures the profile form of the logged-in user.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	AvatarURL string
	Password  string
}

// ProfileUpdate is merged into the session user after a successful profile call.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	AvatarURL string
}

// LoginResult is what the backend returns for valid credentials.
type LoginResult struct {
	Token string
	User  User
}

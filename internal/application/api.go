package application

import (
	"context"
	"io"
)

// API is the BookCafe backend as seen by the services. Implementations turn
// failed calls into *RemoteError.
type API interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, input RegisterInput) error

	ListCubicles(ctx context.Context) ([]Cubicle, error)
	CreateCubicle(ctx context.Context, input CubicleInput) error
	UpdateCubicle(ctx context.Context, id int, input CubicleInput) error
	DeleteCubicle(ctx context.Context, id int) error

	ListBookings(ctx context.Context) ([]Booking, error)
	ListTodayBookings(ctx context.Context) ([]Booking, error)
	ListMyBookings(ctx context.Context) ([]Booking, error)
	LookupBookings(ctx context.Context, email string) ([]Booking, error)
	CreateBooking(ctx context.Context, input BookingInput) error
	UpdateBookingStatus(ctx context.Context, id int, status BookingStatus) error

	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, input UserInput) error
	// UpdateUser sends only the non-empty fields of input.
	UpdateUser(ctx context.Context, id int, input UserInput) error
	DeleteUser(ctx context.Context, id int) error

	UpdateProfile(ctx context.Context, input ProfileInput) error
	// UploadAvatar returns the URL the backend stored the image under.
	UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error)
}

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

package application

import (
	"context"
	"io"
	"sync"
)

// apiStub is an in-memory API. Error fields force the matching call to fail;
// calls records every invoked method in order.
type apiStub struct {
	mu sync.Mutex

	loginResult LoginResult
	loginErr    error
	onLogin     func()

	registerErr error

	cubicles     []Cubicle
	cubicleErr   error
	bookings     []Booking
	today        []Booking
	mine         []Booking
	lookup       []Booking
	bookingErr   error
	statusErr    error
	users        []User
	userErr      error
	profileErr   error
	avatarURL    string
	onListMine   func()
	lastStatus   BookingStatus
	lastUserEdit UserInput
	lastProfile  ProfileInput
	lastCubicle  CubicleInput

	calls []string
}

func (a *apiStub) record(name string) {
	a.mu.Lock()
	a.calls = append(a.calls, name)
	a.mu.Unlock()
}

func (a *apiStub) called(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (a *apiStub) Login(ctx context.Context, email, password string) (LoginResult, error) {
	a.record("Login")
	if a.onLogin != nil {
		a.onLogin()
	}
	return a.loginResult, a.loginErr
}

func (a *apiStub) Register(ctx context.Context, input RegisterInput) error {
	a.record("Register")
	return a.registerErr
}

func (a *apiStub) ListCubicles(ctx context.Context) ([]Cubicle, error) {
	a.record("ListCubicles")
	return cloneList(a.cubicles), a.cubicleErr
}

func (a *apiStub) CreateCubicle(ctx context.Context, input CubicleInput) error {
	a.record("CreateCubicle")
	a.lastCubicle = input
	return a.cubicleErr
}

func (a *apiStub) UpdateCubicle(ctx context.Context, id int, input CubicleInput) error {
	a.record("UpdateCubicle")
	a.lastCubicle = input
	return a.cubicleErr
}

func (a *apiStub) DeleteCubicle(ctx context.Context, id int) error {
	a.record("DeleteCubicle")
	return a.cubicleErr
}

func (a *apiStub) ListBookings(ctx context.Context) ([]Booking, error) {
	a.record("ListBookings")
	return cloneList(a.bookings), a.bookingErr
}

func (a *apiStub) ListTodayBookings(ctx context.Context) ([]Booking, error) {
	a.record("ListTodayBookings")
	return cloneList(a.today), a.bookingErr
}

func (a *apiStub) ListMyBookings(ctx context.Context) ([]Booking, error) {
	a.record("ListMyBookings")
	if a.onListMine != nil {
		a.onListMine()
	}
	return cloneList(a.mine), a.bookingErr
}

func (a *apiStub) LookupBookings(ctx context.Context, email string) ([]Booking, error) {
	a.record("LookupBookings")
	return cloneList(a.lookup), a.bookingErr
}

func (a *apiStub) CreateBooking(ctx context.Context, input BookingInput) error {
	a.record("CreateBooking")
	return a.bookingErr
}

func (a *apiStub) UpdateBookingStatus(ctx context.Context, id int, status BookingStatus) error {
	a.record("UpdateBookingStatus")
	a.lastStatus = status
	if a.statusErr != nil {
		return a.statusErr
	}
	for _, list := range [][]Booking{a.bookings, a.today, a.mine} {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
			}
		}
	}
	return nil
}

func (a *apiStub) ListUsers(ctx context.Context) ([]User, error) {
	a.record("ListUsers")
	return cloneList(a.users), a.userErr
}

func (a *apiStub) CreateUser(ctx context.Context, input UserInput) error {
	a.record("CreateUser")
	return a.userErr
}

func (a *apiStub) UpdateUser(ctx context.Context, id int, input UserInput) error {
	a.record("UpdateUser")
	a.lastUserEdit = input
	return a.userErr
}

func (a *apiStub) DeleteUser(ctx context.Context, id int) error {
	a.record("DeleteUser")
	return a.userErr
}

func (a *apiStub) UpdateProfile(ctx context.Context, input ProfileInput) error {
	a.record("UpdateProfile")
	a.lastProfile = input
	return a.profileErr
}

func (a *apiStub) UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error) {
	a.record("UploadAvatar")
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	return a.avatarURL, a.profileErr
}

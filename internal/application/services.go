package application

import (
	"log/slog"
	"time"
)

// Services bundles one session holder with every service that shares it.
type Services struct {
	Session  *SessionHolder
	Auth     *AuthService
	Cubicles *CubicleService
	Bookings *BookingService
	Users    *UserService
	Profile  *ProfileService
}

// ServicesConfig configures NewServices.
type ServicesConfig struct {
	SuperAdminEmail string
	Now             func() time.Time
	Logger          *slog.Logger
}

// NewServices wires the services around a fresh session holder backed by store.
func NewServices(api API, store SessionStore, cfg ServicesConfig) *Services {
	session := NewSessionHolder(store, SessionOptions{
		SuperAdminEmail: cfg.SuperAdminEmail,
		Now:             cfg.Now,
		Logger:          cfg.Logger,
	})
	return &Services{
		Session:  session,
		Auth:     NewAuthServiceWithLogger(api, session, cfg.Logger),
		Cubicles: NewCubicleServiceWithLogger(api, session, cfg.Logger),
		Bookings: NewBookingServiceWithLogger(api, session, cfg.Logger),
		Users:    NewUserServiceWithLogger(api, session, cfg.Logger),
		Profile:  NewProfileServiceWithLogger(api, session, cfg.Logger),
	}
}

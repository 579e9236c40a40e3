package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// BookingService loads the role's booking list and drives status changes.
type BookingService struct {
	api     API
	session *SessionHolder
	cache   *listCache[Booking]
	logger  *slog.Logger
}

// NewBookingService constructs a booking service.
func NewBookingService(api API, session *SessionHolder) *BookingService {
	return NewBookingServiceWithLogger(api, session, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(api API, session *SessionHolder, logger *slog.Logger) *BookingService {
	s := &BookingService{
		api:     api,
		session: session,
		cache:   newListCache[Booking](),
		logger:  defaultLogger(logger),
	}
	invalidateOnSessionChange(session, s.cache)
	return s
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CacheKeyFor returns the cache a role's booking list is kept under.
func CacheKeyFor(role Role) string {
	if role == RoleStaff {
		return CacheStaffBookings
	}
	return CacheBookings
}

// Load fetches the booking list for the viewer's role: every booking for
// admins, today's bookings for staff and their own bookings for users.
func (s *BookingService) Load(ctx context.Context) (key string, bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	var viewer Viewer
	if viewer, err = requireViewer(s.session); err != nil {
		return
	}
	key = CacheKeyFor(viewer.Role)

	logger := s.loggerWith(ctx, "Load", "role", viewer.Role, "cache_key", key)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "bookings loaded", "count", len(bookings))
	}()

	bookings, err = guarded(s.session, func() ([]Booking, error) {
		switch viewer.Role {
		case RoleAdmin:
			return s.api.ListBookings(ctx)
		case RoleStaff:
			return s.api.ListTodayBookings(ctx)
		default:
			return s.api.ListMyBookings(ctx)
		}
	})
	if err != nil {
		bookings = nil
		return
	}

	if viewer.Role == RoleUser {
		for i := range bookings {
			if bookings[i].UserID == 0 {
				bookings[i].UserID = viewer.UserID
			}
		}
	}
	s.cache.Store(key, bookings)
	return
}

// Cached returns the last list fetched under key.
func (s *BookingService) Cached(key string) ([]Booking, bool) {
	return s.cache.Get(key)
}

// Filter applies q to the list cached under key. ok is false when nothing
// has been loaded under key yet.
func (s *BookingService) Filter(key string, q FilterQuery) (bookings []Booking, ok bool) {
	cached, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	return ApplyFilter(cached, q), true
}

// Create books a cubicle and re-fetches the user's bookings.
func (s *BookingService) Create(ctx context.Context, input BookingInput) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if _, err = requireViewer(s.session); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Create", "cubicle_id", input.CubicleID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{}
	if input.CubicleID <= 0 {
		vErr.Add("cubicle_id", "Choose a cubicle.")
	}
	if input.StartTime.IsZero() {
		vErr.Add("start_time", "Start time is required.")
	}
	if input.Duration < 1 {
		vErr.Add("duration", "Duration must be at least one hour.")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if err = guardedErr(s.session, func() error { return s.api.CreateBooking(ctx, input) }); err != nil {
		return err
	}
	_, _, err = s.Load(ctx)
	return err
}

// Lookup returns the bookings of the guest with email. Staff and admins only.
func (s *BookingService) Lookup(ctx context.Context, email string) (bookings []Booking, err error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return nil, err
	}
	if viewer.Role == RoleUser {
		return nil, refuse("Only staff can look up bookings.")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		vErr := &ValidationError{}
		vErr.Add("email", "Email is required.")
		return nil, vErr
	}

	bookings, err = guarded(s.session, func() ([]Booking, error) {
		return s.api.LookupBookings(ctx, email)
	})
	if err != nil {
		s.loggerWith(ctx, "Lookup").ErrorContext(ctx, "failed to look up bookings", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return bookings, nil
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id int) error {
	return s.Transition(ctx, id, BookingConfirmed)
}

// Cancel moves a pending or confirmed booking to cancelled.
func (s *BookingService) Cancel(ctx context.Context, id int) error {
	return s.Transition(ctx, id, BookingCancelled)
}

// Transition changes the status of a booking from the viewer's cached list.
// Changes outside the transition table fail with ErrInvalidTransition before
// any request is sent. The list is re-fetched after the change.
func (s *BookingService) Transition(ctx context.Context, id int, to BookingStatus) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Transition", "booking_id", id, "to", to)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change booking status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking status changed")
	}()

	key := CacheKeyFor(viewer.Role)
	cached, ok := s.cache.Get(key)
	if !ok {
		if _, cached, err = s.Load(ctx); err != nil {
			return err
		}
	}

	var booking *Booking
	for i := range cached {
		if cached[i].ID == id {
			booking = &cached[i]
			break
		}
	}
	if booking == nil {
		return ErrNotFound
	}

	if viewer.Role == RoleUser && booking.UserID != viewer.UserID {
		return ErrInvalidTransition
	}
	if !CanTransition(viewer.Role, booking.Status, to) {
		return ErrInvalidTransition
	}

	if err = guardedErr(s.session, func() error { return s.api.UpdateBookingStatus(ctx, id, to) }); err != nil {
		return err
	}
	_, _, err = s.Load(ctx)
	return err
}

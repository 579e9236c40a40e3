package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/bookcafe-client/internal/persistence"
)

// DefaultSuperAdminEmail is the sentinel address of the super-admin account.
const DefaultSuperAdminEmail = "superadmin@bookcafe.com"

// SessionEvent tells listeners which screen the client should show.
type SessionEvent int

const (
	// SessionEventDashboard follows a login or a successful restore.
	SessionEventDashboard SessionEvent = iota + 1
	// SessionEventAuth follows a logout.
	SessionEventAuth
)

func (e SessionEvent) String() string {
	switch e {
	case SessionEventDashboard:
		return "dashboard"
	case SessionEventAuth:
		return "auth"
	}
	return "unknown"
}

// SessionStore persists the session pair.
type SessionStore interface {
	LoadSession(ctx context.Context) (persistence.StoredSession, error)
	SaveSession(ctx context.Context, session persistence.StoredSession) error
	ClearSession(ctx context.Context) error
}

// SessionOptions configures a SessionHolder.
type SessionOptions struct {
	SuperAdminEmail string
	Now             func() time.Time
	NewEpoch        func() string
	Logger          *slog.Logger
}

// SessionHolder owns the authenticated state of the client. The store is
// always written before memory changes, so a failed write leaves the holder
// as it was.
type SessionHolder struct {
	mu         sync.RWMutex
	store      SessionStore
	superAdmin string
	now        func() time.Time
	newEpoch   func() string
	logger     *slog.Logger

	session   Session
	editingID int
	epoch     string

	listeners map[int]func(SessionEvent, Session)
	nextID    int
}

// NewSessionHolder returns a logged-out holder backed by store.
func NewSessionHolder(store SessionStore, opts SessionOptions) *SessionHolder {
	superAdmin := strings.TrimSpace(opts.SuperAdminEmail)
	if superAdmin == "" {
		superAdmin = DefaultSuperAdminEmail
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewEpoch == nil {
		opts.NewEpoch = func() string { return uuid.NewString() }
	}
	h := &SessionHolder{
		store:      store,
		superAdmin: superAdmin,
		now:        opts.Now,
		newEpoch:   opts.NewEpoch,
		logger:     defaultLogger(opts.Logger),
		listeners:  make(map[int]func(SessionEvent, Session)),
	}
	h.epoch = h.newEpoch()
	return h
}

// storedUser is the persisted shape of the session user, the same object the
// backend returns from auth/login.
type storedUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func encodeUser(u User) (string, error) {
	raw, err := json.Marshal(storedUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeUser(raw string) (User, error) {
	var su storedUser
	if err := json.Unmarshal([]byte(raw), &su); err != nil {
		return User{}, err
	}
	user := User{
		ID:        su.ID,
		FirstName: su.FirstName,
		LastName:  su.LastName,
		Email:     su.Email,
		Role:      Role(su.Role),
		AvatarURL: su.AvatarURL,
	}
	if err := checkSessionUser(user); err != nil {
		return User{}, err
	}
	return user, nil
}

func checkSessionUser(u User) error {
	if u.ID < 1 {
		return fmt.Errorf("user id %d is not valid", u.ID)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("role %q is not valid", u.Role)
	}
	return nil
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire on the client.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// Restore activates the persisted session. A missing or unreadable pair
// leaves the client logged out without an error; storage failures are
// returned.
func (h *SessionHolder) Restore(ctx context.Context) (bool, error) {
	logger := serviceLogger(ctx, h.logger, "SessionHolder", "Restore")

	stored, err := h.store.LoadSession(ctx)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return false, nil
	case errors.Is(err, persistence.ErrCorrupt):
		logger.WarnContext(ctx, "persisted session is unreadable", "error", err)
		return false, nil
	case err != nil:
		logger.ErrorContext(ctx, "failed to load session", "error", err)
		return false, err
	}

	user, err := decodeUser(stored.User)
	if err != nil {
		logger.WarnContext(ctx, "persisted user is malformed", "error", err)
		return false, nil
	}

	if tokenExpired(stored.Token, h.now()) {
		logger.InfoContext(ctx, "persisted token expired")
		if err := h.store.ClearSession(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	h.activate(stored.Token, user)
	logger.With("user_id", user.ID).InfoContext(ctx, "session restored")
	return true, nil
}

// Login persists token and user and then activates them.
func (h *SessionHolder) Login(ctx context.Context, token string, user User) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("login: token is required")
	}
	if err := checkSessionUser(user); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	raw, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("login: encode user: %w", err)
	}
	if err := h.store.SaveSession(ctx, persistence.StoredSession{Token: token, User: raw}); err != nil {
		return err
	}

	h.activate(token, user)
	return nil
}

func (h *SessionHolder) activate(token string, user User) {
	h.mu.Lock()
	h.session = Session{Token: token, User: &user}
	h.editingID = 0
	h.epoch = h.newEpoch()
	snapshot := h.snapshotLocked()
	listeners := h.listenersLocked()
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(SessionEventDashboard, snapshot)
	}
}

// Logout clears the persisted pair, then the in-memory session and the edit marker.
func (h *SessionHolder) Logout(ctx context.Context) error {
	if err := h.store.ClearSession(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.session = Session{}
	h.editingID = 0
	h.epoch = h.newEpoch()
	listeners := h.listenersLocked()
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(SessionEventAuth, Session{})
	}
	return nil
}

// UpdateProfile merges a successful profile update into the session user and
// persists the result. The avatar is only replaced when a new one is given.
func (h *SessionHolder) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	h.mu.RLock()
	if !h.session.Active() {
		h.mu.RUnlock()
		return ErrNoSession
	}
	token := h.session.Token
	user := *h.session.User
	h.mu.RUnlock()

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.AvatarURL != "" {
		user.AvatarURL = update.AvatarURL
	}

	raw, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("update profile: encode user: %w", err)
	}
	if err := h.store.SaveSession(ctx, persistence.StoredSession{Token: token, User: raw}); err != nil {
		return err
	}

	h.mu.Lock()
	if h.session.Token == token {
		h.session.User = &user
	}
	h.mu.Unlock()
	return nil
}

// Session returns a copy of the current session.
func (h *SessionHolder) Session() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

func (h *SessionHolder) snapshotLocked() Session {
	if !h.session.Active() {
		return Session{}
	}
	user := *h.session.User
	return Session{Token: h.session.Token, User: &user}
}

// Active reports whether a user is logged in.
func (h *SessionHolder) Active() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.Active()
}

// Token implements TokenSource.
func (h *SessionHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.Token
}

// IsSuperAdmin reports whether the logged-in user is the super-admin.
func (h *SessionHolder) IsSuperAdmin() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isSuperAdminLocked()
}

func (h *SessionHolder) isSuperAdminLocked() bool {
	if !h.session.Active() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(h.session.User.Email), h.superAdmin)
}

// Viewer returns the identity capabilities are resolved for. It is the zero
// Viewer when nobody is logged in.
func (h *SessionHolder) Viewer() Viewer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.session.Active() {
		return Viewer{}
	}
	return Viewer{
		UserID:     h.session.User.ID,
		Role:       h.session.User.Role,
		SuperAdmin: h.isSuperAdminLocked(),
	}
}

// BeginEdit marks cubicle id as being edited.
func (h *SessionHolder) BeginEdit(id int) {
	h.mu.Lock()
	h.editingID = id
	h.mu.Unlock()
}

// EditingID returns the cubicle being edited, if any.
func (h *SessionHolder) EditingID() (int, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.editingID, h.editingID != 0
}

// EndEdit clears the edit marker.
func (h *SessionHolder) EndEdit() {
	h.mu.Lock()
	h.editingID = 0
	h.mu.Unlock()
}

// Epoch identifies the current session. It changes on every login, restore and logout.
func (h *SessionHolder) Epoch() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.epoch
}

// CheckEpoch returns ErrStaleSession when the session changed after epoch was taken.
func (h *SessionHolder) CheckEpoch(epoch string) error {
	if h.Epoch() != epoch {
		return ErrStaleSession
	}
	return nil
}

// Subscribe registers fn for session changes and returns a function that removes it.
func (h *SessionHolder) Subscribe(fn func(SessionEvent, Session)) func() {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *SessionHolder) listenersLocked() []func(SessionEvent, Session) {
	out := make([]func(SessionEvent, Session), 0, len(h.listeners))
	for id := 1; id <= h.nextID; id++ {
		if fn, ok := h.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/example/bookcafe-client/internal/persistence"
)

var (
	guestUser  = User{ID: 2, FirstName: "Ana", LastName: "Reyes", Email: "a@b.com", Role: RoleUser}
	staffUser  = User{ID: 3, FirstName: "Sam", LastName: "Cruz", Email: "staff@bookcafe.com", Role: RoleStaff}
	adminUser  = User{ID: 5, FirstName: "Xia", LastName: "Yu", Email: "x@y.com", Role: RoleAdmin}
	superAdmin = User{ID: 1, FirstName: "Super", LastName: "Admin", Email: "SuperAdmin@BookCafe.com", Role: RoleAdmin}
)

type sessionStoreStub struct {
	*persistence.SessionRepository
	saveErr  error
	clearErr error
}

func (s *sessionStoreStub) SaveSession(ctx context.Context, session persistence.StoredSession) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.SessionRepository.SaveSession(ctx, session)
}

func (s *sessionStoreStub) ClearSession(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.SessionRepository.ClearSession(ctx)
}

func newTestHolder(t *testing.T) (*SessionHolder, *sessionStoreStub) {
	t.Helper()
	store := &sessionStoreStub{SessionRepository: persistence.NewSessionRepository(persistence.NewMemoryStore(), nil)}
	return NewSessionHolder(store, SessionOptions{}), store
}

func loginAs(t *testing.T, h *SessionHolder, user User) {
	t.Helper()
	require.NoError(t, h.Login(context.Background(), "token-"+user.Email, user))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "2", "exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionHolder_PersistThenRestoreYieldsIdenticalSession(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHolder(t)

	user := User{ID: 2, Role: RoleUser, Email: "a@b.com"}
	require.NoError(t, h.Login(ctx, "t1", user))

	restored := NewSessionHolder(store, SessionOptions{})
	ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h.Session(), restored.Session())
	require.Equal(t, Session{Token: "t1", User: &user}, restored.Session())
}

func TestSessionHolder_TokenAndUserTravelTogether(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHolder(t)

	check := func() {
		s := h.Session()
		require.Equal(t, s.Token == "", s.User == nil, "partial session in memory: %+v", s)
		_, err := store.LoadSession(ctx)
		if err != nil {
			require.ErrorIs(t, err, persistence.ErrNotFound)
		}
	}

	check()
	require.Error(t, h.Login(ctx, "", guestUser))
	check()
	require.Error(t, h.Login(ctx, "t1", User{}))
	check()
	loginAs(t, h, guestUser)
	check()
	require.NoError(t, h.Logout(ctx))
	check()
	_, err := h.Restore(ctx)
	require.NoError(t, err)
	check()
}

func TestSessionHolder_FailedWriteLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHolder(t)

	store.saveErr = errors.New("disk full")
	require.Error(t, h.Login(ctx, "t1", guestUser))
	require.False(t, h.Active())

	store.saveErr = nil
	loginAs(t, h, guestUser)

	store.clearErr = errors.New("disk full")
	require.Error(t, h.Logout(ctx))
	require.True(t, h.Active())

	store.saveErr = errors.New("disk full")
	name := "Changed"
	require.Error(t, h.UpdateProfile(ctx, ProfileUpdate{FirstName: &name}))
	require.Equal(t, "Ana", h.Session().User.FirstName)
}

func TestSessionHolder_RestoreIgnoresBadState(t *testing.T) {
	ctx := context.Background()

	cases := map[string]map[string]string{
		"nothing stored": {},
		"token only":     {persistence.TokenKey: "t1"},
		"user only":      {persistence.UserKey: `{"id":2,"role":"user"}`},
		"malformed json": {persistence.TokenKey: "t1", persistence.UserKey: "{not json"},
		"missing id":     {persistence.TokenKey: "t1", persistence.UserKey: `{"role":"user"}`},
		"unknown role":   {persistence.TokenKey: "t1", persistence.UserKey: `{"id":2,"role":"owner"}`},
	}

	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			kv := persistence.NewMemoryStore()
			require.NoError(t, kv.SetItems(ctx, items))
			h := NewSessionHolder(persistence.NewSessionRepository(kv, nil), SessionOptions{})

			ok, err := h.Restore(ctx)
			require.NoError(t, err)
			require.False(t, ok)
			require.False(t, h.Active())
		})
	}
}

func TestSessionHolder_RestoreClearsExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	kv := persistence.NewMemoryStore()
	repo := persistence.NewSessionRepository(kv, nil)

	require.NoError(t, repo.SaveSession(ctx, persistence.StoredSession{
		Token: signedToken(t, now.Add(-time.Minute)),
		User:  `{"id":2,"role":"user","email":"a@b.com"}`,
	}))

	h := NewSessionHolder(repo, SessionOptions{Now: func() time.Time { return now }})
	ok, err := h.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, kv.Len())

	require.NoError(t, repo.SaveSession(ctx, persistence.StoredSession{
		Token: signedToken(t, now.Add(time.Hour)),
		User:  `{"id":2,"role":"user","email":"a@b.com"}`,
	}))
	ok, err = h.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSessionHolder_IsSuperAdmin(t *testing.T) {
	h, _ := newTestHolder(t)
	require.False(t, h.IsSuperAdmin(), "no session")

	loginAs(t, h, adminUser)
	require.False(t, h.IsSuperAdmin())

	loginAs(t, h, superAdmin)
	require.True(t, h.IsSuperAdmin(), "email comparison ignores case")
	require.True(t, h.Viewer().SuperAdmin)

	custom := NewSessionHolder(persistence.NewSessionRepository(persistence.NewMemoryStore(), nil),
		SessionOptions{SuperAdminEmail: " x@y.com "})
	loginAs(t, custom, adminUser)
	require.True(t, custom.IsSuperAdmin())
}

func TestSessionHolder_UpdateProfileMergesFields(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHolder(t)
	require.ErrorIs(t, h.UpdateProfile(ctx, ProfileUpdate{}), ErrNoSession)

	user := guestUser
	user.AvatarURL = "https://cdn/old.png"
	loginAs(t, h, user)

	first, last, email := "Ann", "", "ann@b.com"
	require.NoError(t, h.UpdateProfile(ctx, ProfileUpdate{FirstName: &first, LastName: &last, Email: &email}))

	got := h.Session().User
	require.Equal(t, "Ann", got.FirstName)
	require.Equal(t, "", got.LastName)
	require.Equal(t, "ann@b.com", got.Email)
	require.Equal(t, "https://cdn/old.png", got.AvatarURL, "empty avatar keeps the old one")

	require.NoError(t, h.UpdateProfile(ctx, ProfileUpdate{AvatarURL: "https://cdn/new.png"}))
	require.Equal(t, "Ann", h.Session().User.FirstName)

	restored := NewSessionHolder(store, SessionOptions{})
	_, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, h.Session(), restored.Session())
}

func TestSessionHolder_EpochAndListeners(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHolder(t)

	var events []SessionEvent
	unsubscribe := h.Subscribe(func(e SessionEvent, s Session) {
		events = append(events, e)
		if e == SessionEventDashboard {
			require.True(t, s.Active())
		}
	})

	epoch := h.Epoch()
	loginAs(t, h, guestUser)
	require.ErrorIs(t, h.CheckEpoch(epoch), ErrStaleSession)

	epoch = h.Epoch()
	require.NoError(t, h.CheckEpoch(epoch))
	require.NoError(t, h.Logout(ctx))
	require.ErrorIs(t, h.CheckEpoch(epoch), ErrStaleSession)

	unsubscribe()
	loginAs(t, h, guestUser)
	require.Equal(t, []SessionEvent{SessionEventDashboard, SessionEventAuth}, events)
}

func TestSessionHolder_EditMarker(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHolder(t)
	loginAs(t, h, staffUser)

	_, ok := h.EditingID()
	require.False(t, ok)

	h.BeginEdit(7)
	id, ok := h.EditingID()
	require.True(t, ok)
	require.Equal(t, 7, id)

	require.NoError(t, h.Logout(ctx))
	_, ok = h.EditingID()
	require.False(t, ok, "logout clears the edit marker")
}

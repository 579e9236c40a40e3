package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/bookcafe-client/internal/application"
	"github.com/example/bookcafe-client/internal/testfixtures"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, baseURL string, token string) *Client {
	t.Helper()
	client, err := NewClient(Options{BaseURL: baseURL, Tokens: staticToken(token), Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func loginClient(t *testing.T, backend *testfixtures.Backend, email string) *Client {
	t.Helper()
	anon := newTestClient(t, backend.URL(), "")
	result, err := anon.Login(context.Background(), email, testfixtures.Password)
	require.NoError(t, err)
	return newTestClient(t, backend.URL(), result.Token)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/api", "ftp://host/api"} {
		_, err := NewClient(Options{BaseURL: raw})
		require.Error(t, err, raw)
	}
}

func TestClient_LoginDecodesUser(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	client := newTestClient(t, backend.URL(), "")

	result, err := client.Login(context.Background(), "a@b.com", testfixtures.Password)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, testfixtures.Guest().Model(), result.User)

	_, err = client.Login(context.Background(), "a@b.com", "wrong")
	var rErr *application.RemoteError
	require.ErrorAs(t, err, &rErr)
	require.Equal(t, http.StatusUnauthorized, rErr.Status)
	require.Equal(t, "Invalid email or password", rErr.Message)

	req, ok := backend.LastRequest(http.MethodPost, "auth/login")
	require.True(t, ok)
	require.Empty(t, req.Authorization)
	require.Equal(t, "application/json", req.ContentType)
}

func TestClient_LooseTypesAreNormalised(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	client := loginClient(t, backend, "x@y.com")
	ctx := context.Background()

	cubicles, err := client.ListCubicles(ctx)
	require.NoError(t, err)
	require.Len(t, cubicles, 2)
	require.Equal(t, 250.5, cubicles[1].HourlyRate)
	require.True(t, cubicles[1].HasBeer)
	require.False(t, cubicles[0].HasBeer)

	bookings, err := client.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	require.Equal(t, 2, bookings[0].UserID)
	require.Equal(t, "2026-03-14 10:00", bookings[0].StartTime.Format(application.DisplayTimeLayout))
	require.Equal(t, "2026-03-14 12:00", bookings[0].EndTime.Format(application.DisplayTimeLayout))
	require.Equal(t, application.BookingCancelled, bookings[2].Status)

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 5)
	require.Equal(t, "", users[0].AvatarURL)
}

func TestClient_NonJSONBodiesDecodeAsEmpty(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	client := loginClient(t, backend, "x@y.com")
	ctx := context.Background()

	backend.Respond(http.MethodGet, "cubicles", http.StatusOK, "text/html", "<html>oops</html>")
	cubicles, err := client.ListCubicles(ctx)
	require.NoError(t, err)
	require.Empty(t, cubicles)

	backend.Respond(http.MethodDelete, "users/2", http.StatusInternalServerError, "text/plain", "Internal Server Error")
	err = client.DeleteUser(ctx, 2)
	var rErr *application.RemoteError
	require.ErrorAs(t, err, &rErr)
	require.Equal(t, http.StatusInternalServerError, rErr.Status)
	require.Empty(t, rErr.Message)
	require.Equal(t, "Failed to delete user", application.UserMessage(err, "Failed to delete user"))
}

func TestClient_OversizedBodyIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cubicles":[` + strings.Repeat(" ", maxBodyBytes) + `]}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL, "t")
	cubicles, err := client.ListCubicles(context.Background())
	require.Nil(t, cubicles)
	var rErr *application.RemoteError
	require.ErrorAs(t, err, &rErr)
	require.Equal(t, http.StatusOK, rErr.Status)
	require.ErrorIs(t, err, errBodyTooLarge)
	require.Equal(t, "Failed to load cubicles", application.UserMessage(err, "Failed to load cubicles"))
}

func TestClient_RelativeAvatarURLIsAccepted(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	client := loginClient(t, backend, "a@b.com")

	err := client.UpdateProfile(context.Background(), application.ProfileInput{
		FirstName: "Anna", LastName: "Reyes", Email: "a@b.com", AvatarURL: "uploads/avatars/2.png",
	})
	require.NoError(t, err)
	req, ok := backend.LastRequest(http.MethodPut, "profile")
	require.True(t, ok)
	require.Contains(t, req.Body, `"avatar_url":"uploads/avatars/2.png"`)
}

func TestClient_TransportFailureHasNoStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url, "")
	_, err := client.ListCubicles(context.Background())
	var rErr *application.RemoteError
	require.ErrorAs(t, err, &rErr)
	require.Zero(t, rErr.Status)
	require.Equal(t, "network", application.ErrorKind(err))
}

func TestClient_PayloadValidation(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	client := loginClient(t, backend, "x@y.com")
	before := len(backend.Requests())

	err := client.CreateCubicle(context.Background(), application.CubicleInput{Name: "", HourlyRate: -1})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "Name is required.", vErr.FieldErrors["name"])
	require.Equal(t, "Hourly rate must be at least 0.", vErr.FieldErrors["hourly_rate"])

	err = client.Register(context.Background(), application.RegisterInput{FirstName: "A", LastName: "B", Email: "nope", Password: "x"})
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, "email")

	require.Len(t, backend.Requests(), before, "invalid payloads are never sent")
}

func TestClient_WritePayloads(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	ctx := context.Background()

	admin := loginClient(t, backend, "superadmin@bookcafe.com")
	require.NoError(t, admin.CreateCubicle(ctx, application.CubicleInput{Name: "Booth", HourlyRate: 99.5, HasBeer: true}))
	req, _ := backend.LastRequest(http.MethodPost, "cubicles")
	require.JSONEq(t, `{"name":"Booth","description":"","hourly_rate":99.5,"has_beer":1}`, req.Body)

	require.NoError(t, admin.UpdateUser(ctx, 2, application.UserInput{Role: application.RoleStaff}))
	req, _ = backend.LastRequest(http.MethodPut, "users/2")
	require.JSONEq(t, `{"role":"staff"}`, req.Body)

	guest := loginClient(t, backend, "a@b.com")
	start := time.Date(2026, time.March, 20, 14, 0, 0, 0, time.UTC)
	require.NoError(t, guest.CreateBooking(ctx, application.BookingInput{CubicleID: 2, StartTime: start, Duration: 2}))
	req, _ = backend.LastRequest(http.MethodPost, "bookings")
	require.JSONEq(t, `{"cubicle_id":2,"start_time":"2026-03-20T14:00","duration":2}`, req.Body)

	require.NoError(t, guest.UpdateProfile(ctx, application.ProfileInput{FirstName: "Ana", LastName: "R", Email: "a@b.com"}))
	req, _ = backend.LastRequest(http.MethodPut, "profile")
	require.NotContains(t, req.Body, "password", "empty passwords are not sent")
}

func TestClient_LookupEscapesEmail(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	staff := loginClient(t, backend, "staff@bookcafe.com")

	bookings, err := staff.LookupBookings(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	req, ok := backend.LastRequest(http.MethodGet, "bookings/lookup")
	require.True(t, ok)
	require.Equal(t, "email=a%40b.com", req.Query)
}

func TestClient_UploadAvatar(t *testing.T) {
	backend := testfixtures.NewBackend(t, testfixtures.DefaultSeed(), nil)
	guest := loginClient(t, backend, "a@b.com")

	url, err := guest.UploadAvatar(context.Background(), "me.png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.bookcafe.test/avatars/2/me.png", url)

	req, _ := backend.LastRequest(http.MethodPost, "profile/avatar")
	require.True(t, strings.HasPrefix(req.ContentType, "multipart/form-data"))

	backend.Respond(http.MethodPost, "profile/avatar", http.StatusOK, "application/json", `{}`)
	_, err = guest.UploadAvatar(context.Background(), "me.png", strings.NewReader("x"))
	require.Error(t, err)
}

func TestRequestLogger_PinnedRequestID(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		_, _ = w.Write([]byte(`{"cubicles":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, NewRequestID: func() string { return "generated" }})
	require.NoError(t, err)

	_, err = client.ListCubicles(context.Background())
	require.NoError(t, err)
	require.Equal(t, "generated", seen)

	ctx := ContextWithRequestID(context.Background(), "pinned")
	_, err = client.ListCubicles(ctx)
	require.NoError(t, err)
	require.Equal(t, "pinned", seen)
}

func TestDecodeBody(t *testing.T) {
	type payload struct {
		Items []int `json:"items"`
	}
	require.Equal(t, payload{Items: []int{1}}, decodeBody[payload]([]byte(`{"items":[1]}`)))
	require.Equal(t, payload{}, decodeBody[payload]([]byte(`not json`)))
	require.Equal(t, payload{}, decodeBody[payload](nil))
	require.Equal(t, payload{}, decodeBody[payload]([]byte(`{"items":"oops"}`)))
}

func TestRemoteFailure(t *testing.T) {
	err := remoteFailure(http.StatusConflict, []byte(`{"message":"  Cubicle is already booked  "}`))
	var rErr *application.RemoteError
	require.ErrorAs(t, err, &rErr)
	require.Equal(t, "Cubicle is already booked", rErr.Message)
	require.Equal(t, "Conflict", rErr.Err.Error())
}

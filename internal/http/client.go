package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/example/bookcafe-client/internal/application"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, for example https://bookcafe.example/api.
	BaseURL string
	// Tokens supplies the bearer token; requests are anonymous when it is nil or empty.
	Tokens application.TokenSource
	// Timeout bounds each request when HTTPClient is nil. Zero disables it.
	Timeout time.Duration
	// HTTPClient overrides the underlying client. Its transport is wrapped, not replaced.
	HTTPClient *http.Client
	// NewRequestID generates X-Request-ID values. Defaults to random UUIDs.
	NewRequestID func() string
	Logger       *slog.Logger
}

// Client implements application.API over HTTP.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	tokens   application.TokenSource
	validate *validator.Validate
	logger   *slog.Logger
}

var _ application.API = (*Client)(nil)

// NewClient validates opts and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil || raw == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", opts.BaseURL)
	}

	logger := defaultLogger(opts.Logger)

	hc := &http.Client{Timeout: opts.Timeout}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Transport = RequestLogger(logger, opts.NewRequestID)(hc.Transport)

	return &Client{
		baseURL:  base,
		http:     hc,
		tokens:   opts.Tokens,
		validate: newValidator(),
		logger:   logger,
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimLeft(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(ref).String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// send performs req and returns the body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &application.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &application.RemoteError{Status: resp.StatusCode, Err: err}
	}
	if len(raw) > maxBodyBytes {
		return nil, &application.RemoteError{Status: resp.StatusCode, Err: errBodyTooLarge}
	}
	if !success(resp.StatusCode) {
		return nil, remoteFailure(resp.StatusCode, raw)
	}
	return raw, nil
}

// call validates payload, sends it as JSON and decodes the answer into a T.
func call[T any](ctx context.Context, c *Client, operation, method, path string, query url.Values, payload any) (T, error) {
	var zero T
	logger := clientLogger(ctx, c.logger, operation)

	var body io.Reader
	if payload != nil {
		if err := c.validate.Struct(payload); err != nil {
			err = validationError(err)
			logger.DebugContext(ctx, "payload rejected", "error", err)
			return zero, err
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return zero, fmt.Errorf("encode %s payload: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.send(req)
	if err != nil {
		logger.InfoContext(ctx, "call failed", "error", err, "error_kind", application.ErrorKind(err))
		return zero, err
	}
	return decodeBody[T](raw), nil
}

func exec(ctx context.Context, c *Client, operation, method, path string, payload any) error {
	_, err := call[struct{}](ctx, c, operation, method, path, nil, payload)
	return err
}

// Login exchanges credentials for a token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (application.LoginResult, error) {
	resp, err := call[loginResponse](ctx, c, "Login", http.MethodPost, "auth/login", nil,
		loginRequest{Email: email, Password: password})
	if err != nil {
		return application.LoginResult{}, err
	}
	return application.LoginResult{Token: resp.Token, User: resp.User.toModel()}, nil
}

// Register creates a self-service account.
func (c *Client) Register(ctx context.Context, input application.RegisterInput) error {
	return exec(ctx, c, "Register", http.MethodPost, "auth/register", registerRequest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
}

// ListCubicles returns the cubicle catalog.
func (c *Client) ListCubicles(ctx context.Context) ([]application.Cubicle, error) {
	resp, err := call[cubicleListResponse](ctx, c, "ListCubicles", http.MethodGet, "cubicles", nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]application.Cubicle, 0, len(resp.Cubicles))
	for _, dto := range resp.Cubicles {
		out = append(out, dto.toModel())
	}
	return out, nil
}

// CreateCubicle adds a cubicle.
func (c *Client) CreateCubicle(ctx context.Context, input application.CubicleInput) error {
	return exec(ctx, c, "CreateCubicle", http.MethodPost, "cubicles", toCubicleRequest(input))
}

// UpdateCubicle replaces the fields of cubicle id.
func (c *Client) UpdateCubicle(ctx context.Context, id int, input application.CubicleInput) error {
	return exec(ctx, c, "UpdateCubicle", http.MethodPut, fmt.Sprintf("cubicles/%d", id), toCubicleRequest(input))
}

// DeleteCubicle removes cubicle id.
func (c *Client) DeleteCubicle(ctx context.Context, id int) error {
	return exec(ctx, c, "DeleteCubicle", http.MethodDelete, fmt.Sprintf("cubicles/%d", id), nil)
}

func (c *Client) listBookings(ctx context.Context, operation, path string, query url.Values) ([]application.Booking, error) {
	resp, err := call[bookingListResponse](ctx, c, operation, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]application.Booking, 0, len(resp.Bookings))
	for _, dto := range resp.Bookings {
		out = append(out, dto.toModel())
	}
	return out, nil
}

// ListBookings returns every booking. Admins only.
func (c *Client) ListBookings(ctx context.Context) ([]application.Booking, error) {
	return c.listBookings(ctx, "ListBookings", "bookings", nil)
}

// ListTodayBookings returns the bookings starting today.
func (c *Client) ListTodayBookings(ctx context.Context) ([]application.Booking, error) {
	return c.listBookings(ctx, "ListTodayBookings", "bookings/today", nil)
}

// ListMyBookings returns the caller's own bookings.
func (c *Client) ListMyBookings(ctx context.Context) ([]application.Booking, error) {
	return c.listBookings(ctx, "ListMyBookings", "bookings/mine", nil)
}

// LookupBookings returns the bookings of the guest with email.
func (c *Client) LookupBookings(ctx context.Context, email string) ([]application.Booking, error) {
	return c.listBookings(ctx, "LookupBookings", "bookings/lookup", url.Values{"email": {email}})
}

// CreateBooking books a cubicle for a number of hours.
func (c *Client) CreateBooking(ctx context.Context, input application.BookingInput) error {
	var start string
	if !input.StartTime.IsZero() {
		start = input.StartTime.Format(requestTimeLayout)
	}
	return exec(ctx, c, "CreateBooking", http.MethodPost, "bookings", bookingRequest{
		CubicleID: input.CubicleID,
		StartTime: start,
		Duration:  input.Duration,
	})
}

// UpdateBookingStatus moves booking id to status.
func (c *Client) UpdateBookingStatus(ctx context.Context, id int, status application.BookingStatus) error {
	return exec(ctx, c, "UpdateBookingStatus", http.MethodPut, fmt.Sprintf("bookings/%d", id),
		bookingStatusRequest{Status: string(status)})
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]application.User, error) {
	resp, err := call[userListResponse](ctx, c, "ListUsers", http.MethodGet, "users", nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]application.User, 0, len(resp.Users))
	for _, dto := range resp.Users {
		out = append(out, dto.toModel())
	}
	return out, nil
}

// CreateUser adds an account with an explicit role.
func (c *Client) CreateUser(ctx context.Context, input application.UserInput) error {
	return exec(ctx, c, "CreateUser", http.MethodPost, "users", createUserRequest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
		Role:      string(input.Role),
	})
}

// UpdateUser sends the non-empty fields of input.
func (c *Client) UpdateUser(ctx context.Context, id int, input application.UserInput) error {
	return exec(ctx, c, "UpdateUser", http.MethodPut, fmt.Sprintf("users/%d", id), updateUserRequest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
		Role:      string(input.Role),
	})
}

// DeleteUser removes account id.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return exec(ctx, c, "DeleteUser", http.MethodDelete, fmt.Sprintf("users/%d", id), nil)
}

// UpdateProfile updates the caller. The password is omitted when empty.
func (c *Client) UpdateProfile(ctx context.Context, input application.ProfileInput) error {
	return exec(ctx, c, "UpdateProfile", http.MethodPut, "profile", profileRequest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		AvatarURL: input.AvatarURL,
		Password:  input.Password,
	})
}

// UploadAvatar posts content as the multipart field "avatar".
func (c *Client) UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("avatar", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "profile/avatar", nil, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	raw, err := c.send(req)
	if err != nil {
		clientLogger(ctx, c.logger, "UploadAvatar").InfoContext(ctx, "call failed", "error", err, "error_kind", application.ErrorKind(err))
		return "", err
	}
	resp := decodeBody[avatarResponse](raw)
	if strings.TrimSpace(resp.AvatarURL) == "" {
		return "", &application.RemoteError{Status: http.StatusOK, Err: errors.New("upload response carried no avatar_url")}
	}
	return resp.AvatarURL, nil
}

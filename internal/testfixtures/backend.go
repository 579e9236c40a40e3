package testfixtures

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/bookcafe-client/internal/application"
)

const sqlTimeLayout = "2006-01-02 15:04:05"

// RecordedRequest is one call the fake backend received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	RequestID     string
	Authorization string
	ContentType   string
	Body          string
}

type cannedResponse struct {
	status      int
	contentType string
	body        string
}

// Backend is an in-process BookCafe API built on echo. It keeps its state in
// memory, answers with the loosely typed JSON the real backend produces
// (decimal strings, 0/1 booleans, SQL timestamps) and records every request.
type Backend struct {
	mu       sync.Mutex
	clock    *Clock
	users    map[int]*UserFixture
	cubicles map[int]*CubicleFixture
	bookings map[int]*BookingFixture
	tokens   map[string]int
	nextID   int
	canned   map[string]cannedResponse
	requests []RecordedRequest

	server *httptest.Server
}

// NewBackend starts a fake backend seeded with seed. The server is closed
// when the test ends.
func NewBackend(tb testing.TB, seed Seed, clock *Clock) *Backend {
	tb.Helper()
	if clock == nil {
		clock = NewClock(time.Time{})
	}

	b := &Backend{
		clock:    clock,
		users:    make(map[int]*UserFixture),
		cubicles: make(map[int]*CubicleFixture),
		bookings: make(map[int]*BookingFixture),
		tokens:   make(map[string]int),
		canned:   make(map[string]cannedResponse),
		nextID:   1000,
	}
	for _, u := range seed.Users {
		u := u
		b.users[u.ID] = &u
	}
	for _, c := range seed.Cubicles {
		c := c
		b.cubicles[c.ID] = &c
	}
	for _, bk := range seed.Bookings {
		bk := bk
		b.bookings[bk.ID] = &bk
	}

	b.server = httptest.NewServer(b.routes())
	tb.Cleanup(b.server.Close)
	return b
}

// URL is the API base URL to configure clients with.
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

// Respond makes the next method request to path (relative to the API root)
// answer with status and body instead of reaching the handler.
func (b *Backend) Respond(method, path string, status int, contentType, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canned[method+" /api/"+strings.TrimLeft(path, "/")] = cannedResponse{status: status, contentType: contentType, body: body}
}

// Requests returns every request received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request to method and path, relative to the API root.
func (b *Backend) LastRequest(method, path string) (RecordedRequest, bool) {
	want := "/api/" + strings.TrimLeft(path, "/")
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == want {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

// User returns the backend's current copy of account id.
func (b *Backend) User(id int) (UserFixture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return UserFixture{}, false
	}
	return *u, true
}

// Cubicle returns the backend's current copy of cubicle id.
func (b *Backend) Cubicle(id int) (CubicleFixture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cubicles[id]
	if !ok {
		return CubicleFixture{}, false
	}
	return *c, true
}

// Booking returns the backend's current copy of booking id.
func (b *Backend) Booking(id int) (BookingFixture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.bookings[id]
	if !ok {
		return BookingFixture{}, false
	}
	return *bk, true
}

func (b *Backend) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api := e.Group("/api", b.record)
	api.POST("/auth/login", b.login)
	api.POST("/auth/register", b.register)

	authed := api.Group("", b.authenticate)
	authed.GET("/cubicles", b.listCubicles)
	authed.POST("/cubicles", b.saveCubicle, b.requireRole(application.RoleAdmin))
	authed.PUT("/cubicles/:id", b.saveCubicle, b.requireRole(application.RoleStaff, application.RoleAdmin))
	authed.DELETE("/cubicles/:id", b.deleteCubicle, b.requireRole(application.RoleAdmin))

	authed.GET("/bookings", b.listAllBookings, b.requireRole(application.RoleAdmin))
	authed.GET("/bookings/today", b.listTodayBookings, b.requireRole(application.RoleStaff, application.RoleAdmin))
	authed.GET("/bookings/mine", b.listMyBookings)
	authed.GET("/bookings/lookup", b.lookupBookings, b.requireRole(application.RoleStaff, application.RoleAdmin))
	authed.POST("/bookings", b.createBooking)
	authed.PUT("/bookings/:id", b.updateBooking)

	authed.GET("/users", b.listUsers, b.requireRole(application.RoleAdmin))
	authed.POST("/users", b.createUser, b.requireRole(application.RoleAdmin))
	authed.PUT("/users/:id", b.updateUser, b.requireRole(application.RoleAdmin))
	authed.DELETE("/users/:id", b.deleteUser, b.requireRole(application.RoleAdmin))

	authed.PUT("/profile", b.updateProfile)
	authed.POST("/profile/avatar", b.uploadAvatar)
	return e
}

type message struct {
	Message string `json:"message"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, message{Message: msg})
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			RequestID:     r.Header.Get("X-Request-ID"),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
		key := r.Method + " " + r.URL.Path
		canned, ok := b.canned[key]
		if ok {
			delete(b.canned, key)
		}
		b.mu.Unlock()

		if ok {
			return c.Blob(canned.status, canned.contentType, []byte(canned.body))
		}
		return next(c)
	}
}

const userContextKey = "bookcafe_user_id"

func (b *Backend) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, ok := b.tokens[token]
		_, exists := b.users[id]
		b.mu.Unlock()
		if !ok || !exists {
			return fail(c, http.StatusUnauthorized, "Unauthenticated")
		}
		c.Set(userContextKey, id)
		return next(c)
	}
}

func (b *Backend) requireRole(roles ...application.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			me := b.currentUser(c)
			for _, role := range roles {
				if me.Role == role {
					return next(c)
				}
			}
			return fail(c, http.StatusForbidden, "Forbidden")
		}
	}
}

func (b *Backend) currentUser(c echo.Context) UserFixture {
	id, _ := c.Get(userContextKey).(int)
	u, _ := b.User(id)
	return u
}

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil
}

func userJSON(u UserFixture) map[string]any {
	var avatar any
	if u.AvatarURL != "" {
		avatar = u.AvatarURL
	}
	return map[string]any{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"role":       string(u.Role),
		"avatar_url": avatar,
	}
}

func cubicleJSON(c CubicleFixture) map[string]any {
	hasBeer := 0
	if c.HasBeer {
		hasBeer = 1
	}
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"hourly_rate": fmt.Sprintf("%.2f", c.HourlyRate),
		"has_beer":    hasBeer,
	}
}

func (b *Backend) bookingJSONLocked(bk BookingFixture) map[string]any {
	out := map[string]any{
		"id":         bk.ID,
		"cubicle_id": bk.CubicleID,
		"user_id":    strconv.Itoa(bk.UserID),
		"start_time": bk.StartTime.Format(sqlTimeLayout),
		"end_time":   bk.StartTime.Add(time.Duration(bk.Hours) * time.Hour).Format(sqlTimeLayout),
		"status":     string(bk.Status),
	}
	if c, ok := b.cubicles[bk.CubicleID]; ok {
		out["cubicle_name"] = c.Name
		out["hourly_rate"] = fmt.Sprintf("%.2f", c.HourlyRate)
		out["total_price"] = fmt.Sprintf("%.2f", c.HourlyRate*float64(bk.Hours))
	}
	if u, ok := b.users[bk.UserID]; ok {
		out["user_name"] = u.FirstName + " " + u.LastName
	}
	return out
}

func (b *Backend) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, req.Email) && u.Password == req.Password {
			b.nextID++
			token := fmt.Sprintf("token-%d-%d", u.ID, b.nextID)
			b.tokens[token] = u.ID
			return c.JSON(http.StatusOK, map[string]any{"token": token, "user": userJSON(*u)})
		}
	}
	return fail(c, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) register(c echo.Context) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, req.Email) {
			return fail(c, http.StatusConflict, "Email already registered")
		}
	}
	b.nextID++
	b.users[b.nextID] = &UserFixture{
		ID:        b.nextID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      application.RoleUser,
	}
	return c.JSON(http.StatusCreated, message{Message: "Registered"})
}

func (b *Backend) listCubicles(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := sortedKeys(b.cubicles)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, cubicleJSON(*b.cubicles[id]))
	}
	return c.JSON(http.StatusOK, map[string]any{"cubicles": out})
}

func (b *Backend) saveCubicle(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		HourlyRate  float64 `json:"hourly_rate"`
		HasBeer     int     `json:"has_beer"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusUnprocessableEntity, "Name is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	fixture := CubicleFixture{Name: req.Name, Description: req.Description, HourlyRate: req.HourlyRate, HasBeer: req.HasBeer == 1}
	if c.Request().Method == http.MethodPut {
		id, ok := pathID(c)
		if _, exists := b.cubicles[id]; !ok || !exists {
			return fail(c, http.StatusNotFound, "Cubicle not found")
		}
		fixture.ID = id
		b.cubicles[id] = &fixture
		return c.JSON(http.StatusOK, cubicleJSON(fixture))
	}
	b.nextID++
	fixture.ID = b.nextID
	b.cubicles[fixture.ID] = &fixture
	return c.JSON(http.StatusCreated, cubicleJSON(fixture))
}

func (b *Backend) deleteCubicle(c echo.Context) error {
	id, ok := pathID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.cubicles[id]; !ok || !exists {
		return fail(c, http.StatusNotFound, "Cubicle not found")
	}
	delete(b.cubicles, id)
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) writeBookings(c echo.Context, keep func(BookingFixture) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, id := range sortedKeys(b.bookings) {
		bk := *b.bookings[id]
		if keep(bk) {
			out = append(out, b.bookingJSONLocked(bk))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"bookings": out})
}

func (b *Backend) listAllBookings(c echo.Context) error {
	return b.writeBookings(c, func(BookingFixture) bool { return true })
}

func (b *Backend) listTodayBookings(c echo.Context) error {
	return b.writeBookings(c, func(bk BookingFixture) bool { return b.clock.SameDay(bk.StartTime) })
}

func (b *Backend) listMyBookings(c echo.Context) error {
	me := b.currentUser(c)
	return b.writeBookings(c, func(bk BookingFixture) bool { return bk.UserID == me.ID })
}

func (b *Backend) lookupBookings(c echo.Context) error {
	email := c.QueryParam("email")
	b.mu.Lock()
	guest := 0
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			guest = u.ID
		}
	}
	b.mu.Unlock()
	if guest == 0 {
		return fail(c, http.StatusNotFound, "No user with that email")
	}
	return b.writeBookings(c, func(bk BookingFixture) bool { return bk.UserID == guest })
}

func (b *Backend) createBooking(c echo.Context) error {
	var req struct {
		CubicleID int    `json:"cubicle_id"`
		StartTime string `json:"start_time"`
		Duration  int    `json:"duration"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	start, err := time.ParseInLocation("2006-01-02T15:04", req.StartTime, time.UTC)
	if err != nil || req.Duration < 1 {
		return fail(c, http.StatusUnprocessableEntity, "Invalid start time or duration")
	}
	me := b.currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cubicles[req.CubicleID]; !ok {
		return fail(c, http.StatusUnprocessableEntity, "Cubicle not found")
	}
	for _, other := range b.bookings {
		if other.CubicleID != req.CubicleID || other.Status == application.BookingCancelled {
			continue
		}
		otherEnd := other.StartTime.Add(time.Duration(other.Hours) * time.Hour)
		end := start.Add(time.Duration(req.Duration) * time.Hour)
		if start.Before(otherEnd) && other.StartTime.Before(end) {
			return fail(c, http.StatusConflict, "Cubicle is already booked for that time")
		}
	}
	b.nextID++
	bk := BookingFixture{ID: b.nextID, CubicleID: req.CubicleID, UserID: me.ID, StartTime: start, Hours: req.Duration, Status: application.BookingPending}
	b.bookings[bk.ID] = &bk
	return c.JSON(http.StatusCreated, b.bookingJSONLocked(bk))
}

func (b *Backend) updateBooking(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	id, _ := pathID(c)
	me := b.currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.bookings[id]
	if !ok {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	if me.Role == application.RoleUser && bk.UserID != me.ID {
		return fail(c, http.StatusForbidden, "Forbidden")
	}
	to := application.BookingStatus(req.Status)
	if !application.CanTransition(me.Role, bk.Status, to) {
		return fail(c, http.StatusUnprocessableEntity, "Invalid status transition")
	}
	bk.Status = to
	return c.JSON(http.StatusOK, b.bookingJSONLocked(*bk))
}

func (b *Backend) listUsers(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.users))
	for _, id := range sortedKeys(b.users) {
		out = append(out, userJSON(*b.users[id]))
	}
	return c.JSON(http.StatusOK, map[string]any{"users": out})
}

type userPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

func (b *Backend) createUser(c echo.Context) error {
	var req userPayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := UserFixture{ID: b.nextID, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Password: req.Password, Role: application.Role(req.Role)}
	b.users[u.ID] = &u
	return c.JSON(http.StatusCreated, userJSON(u))
}

func (b *Backend) updateUser(c echo.Context) error {
	var req userPayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	id, _ := pathID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	applyUserPayload(u, req)
	if req.Role != "" {
		u.Role = application.Role(req.Role)
	}
	return c.JSON(http.StatusOK, userJSON(*u))
}

func applyUserPayload(u *UserFixture, req userPayload) {
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Password != "" {
		u.Password = req.Password
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
}

func (b *Backend) deleteUser(c echo.Context) error {
	id, _ := pathID(c)
	if id == application.PrimordialAdminID {
		return fail(c, http.StatusForbidden, "The primary admin cannot be deleted")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[id]; !ok {
		return fail(c, http.StatusNotFound, "User not found")
	}
	delete(b.users, id)
	return c.JSON(http.StatusOK, message{Message: "Deleted"})
}

func (b *Backend) updateProfile(c echo.Context) error {
	var req userPayload
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	me := b.currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[me.ID]
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	applyUserPayload(u, userPayload{Email: req.Email, Password: req.Password, AvatarURL: req.AvatarURL})
	return c.JSON(http.StatusOK, message{Message: "Profile updated"})
}

func (b *Backend) uploadAvatar(c echo.Context) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "No avatar uploaded")
	}
	me := b.currentUser(c)
	url := fmt.Sprintf("https://cdn.bookcafe.test/avatars/%d/%s", me.ID, file.Filename)

	b.mu.Lock()
	b.users[me.ID].AvatarURL = url
	b.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]string{"avatar_url": url})
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

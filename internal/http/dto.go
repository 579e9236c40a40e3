package http

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/example/bookcafe-client/internal/application"
)

// requestTimeLayout matches what a datetime-local form field submits.
const requestTimeLayout = "2006-01-02T15:04"

var responseTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	requestTimeLayout,
}

// flexFloat accepts a JSON number or a decimal string such as "150.00".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*i = 0
		return nil
	}
	*i = flexInt(int(v))
	return nil
}

// flexBool accepts true/false, 0/1 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(unquote(data)) {
	case "1", "true", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

// flexTime accepts RFC 3339 and SQL-style timestamps. Zone-less values are
// read in local time.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	t.Time = time.Time{}
	for _, layout := range responseTimeLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func unquote(data []byte) string {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ""
	}
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	}
	return string(data)
}

type errorResponse struct {
	Message string `json:"message"`
}

type userDTO struct {
	ID        flexInt `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL string  `json:"avatar_url"`
}

func (u userDTO) toModel() application.User {
	return application.User{
		ID:        int(u.ID),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      application.Role(strings.ToLower(strings.TrimSpace(u.Role))),
		AvatarURL: u.AvatarURL,
	}
}

type cubicleDTO struct {
	ID          flexInt   `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HourlyRate  flexFloat `json:"hourly_rate"`
	HasBeer     flexBool  `json:"has_beer"`
}

func (c cubicleDTO) toModel() application.Cubicle {
	return application.Cubicle{
		ID:          int(c.ID),
		Name:        c.Name,
		Description: c.Description,
		HourlyRate:  float64(c.HourlyRate),
		HasBeer:     bool(c.HasBeer),
	}
}

type bookingDTO struct {
	ID          flexInt   `json:"id"`
	CubicleID   flexInt   `json:"cubicle_id"`
	CubicleName string    `json:"cubicle_name"`
	UserID      flexInt   `json:"user_id"`
	UserName    string    `json:"user_name"`
	StartTime   flexTime  `json:"start_time"`
	EndTime     flexTime  `json:"end_time"`
	Status      string    `json:"status"`
	HourlyRate  flexFloat `json:"hourly_rate"`
	TotalPrice  flexFloat `json:"total_price"`
}

func (b bookingDTO) toModel() application.Booking {
	return application.Booking{
		ID:          int(b.ID),
		CubicleID:   int(b.CubicleID),
		CubicleName: b.CubicleName,
		UserID:      int(b.UserID),
		UserName:    b.UserName,
		StartTime:   b.StartTime.Time,
		EndTime:     b.EndTime.Time,
		Status:      application.BookingStatus(strings.ToLower(strings.TrimSpace(b.Status))),
		HourlyRate:  float64(b.HourlyRate),
		TotalPrice:  float64(b.TotalPrice),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type cubicleRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	HourlyRate  float64 `json:"hourly_rate" validate:"gte=0"`
	HasBeer     int     `json:"has_beer" validate:"oneof=0 1"`
}

func toCubicleRequest(in application.CubicleInput) cubicleRequest {
	req := cubicleRequest{Name: in.Name, Description: in.Description, HourlyRate: in.HourlyRate}
	if in.HasBeer {
		req.HasBeer = 1
	}
	return req
}

type cubicleListResponse struct {
	Cubicles []cubicleDTO `json:"cubicles"`
}

type bookingRequest struct {
	CubicleID int    `json:"cubicle_id" validate:"gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	Duration  int    `json:"duration" validate:"gte=1"`
}

type bookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type bookingListResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type createUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=user staff admin"`
}

// updateUserRequest carries only the fields being changed.
type updateUserRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=user staff admin"`
}

type userListResponse struct {
	Users []userDTO `json:"users"`
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	AvatarURL string `json:"avatar_url"`
	Password  string `json:"password,omitempty"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

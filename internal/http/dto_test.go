package http

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/example/bookcafe-client/internal/application"
)

func TestCubicleDTO_LooseFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want application.Cubicle
	}{
		{"numbers", `{"id":3,"name":"Nook","hourly_rate":150,"has_beer":true}`, application.Cubicle{ID: 3, Name: "Nook", HourlyRate: 150, HasBeer: true}},
		{"strings", `{"id":"3","name":"Nook","hourly_rate":"150.00","has_beer":"1"}`, application.Cubicle{ID: 3, Name: "Nook", HourlyRate: 150, HasBeer: true}},
		{"zero flags", `{"id":3,"name":"Nook","hourly_rate":"abc","has_beer":0}`, application.Cubicle{ID: 3, Name: "Nook"}},
		{"nulls", `{"id":3,"name":"Nook","description":null,"hourly_rate":null,"has_beer":null}`, application.Cubicle{ID: 3, Name: "Nook"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto cubicleDTO
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &dto))
			require.Equal(t, tt.want, dto.toModel())
		})
	}
}

func TestBookingDTO_Timestamps(t *testing.T) {
	var dto bookingDTO
	raw := `{"id":"9","user_id":"2","status":" Confirmed ","start_time":"2026-03-14 10:00:00","end_time":"2026-03-14T12:00:00Z","total_price":"240.00"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	b := dto.toModel()
	require.Equal(t, 9, b.ID)
	require.Equal(t, 2, b.UserID)
	require.Equal(t, application.BookingConfirmed, b.Status)
	require.Equal(t, 240.0, b.TotalPrice)
	require.Equal(t, time.Date(2026, time.March, 14, 10, 0, 0, 0, time.Local), b.StartTime)
	require.True(t, b.EndTime.Equal(time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)))

	require.NoError(t, json.Unmarshal([]byte(`{"start_time":"yesterday"}`), &dto))
	require.True(t, dto.toModel().StartTime.IsZero())
}

func TestUserDTO_NormalisesRole(t *testing.T) {
	var dto userDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"role":" ADMIN ","avatar_url":null}`), &dto))
	u := dto.toModel()
	require.Equal(t, application.RoleAdmin, u.Role)
	require.Empty(t, u.AvatarURL)
}

func TestToCubicleRequest(t *testing.T) {
	require.Equal(t, 1, toCubicleRequest(application.CubicleInput{HasBeer: true}).HasBeer)
	require.Equal(t, 0, toCubicleRequest(application.CubicleInput{}).HasBeer)
}

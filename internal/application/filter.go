package application

import (
	"fmt"
	"strings"
)

// FilterQuery narrows a cached booking list. Both criteria are ANDed and an
// empty criterion matches everything.
type FilterQuery struct {
	Text   string
	Status BookingStatus
}

// Empty reports whether the query matches every booking.
func (q FilterQuery) Empty() bool {
	return q.Text == "" && q.Status == ""
}

// ParseFilterQuery builds a query from user input, rejecting unknown statuses.
func ParseFilterQuery(text, status string) (FilterQuery, error) {
	q := FilterQuery{
		Text:   strings.TrimSpace(text),
		Status: BookingStatus(strings.ToLower(strings.TrimSpace(status))),
	}
	if q.Status != "" && !q.Status.Valid() {
		vErr := &ValidationError{}
		vErr.Add("status", fmt.Sprintf("Unknown status %q.", status))
		return FilterQuery{}, vErr
	}
	return q, nil
}

// ApplyFilter returns the bookings in cache matching q, in cache order. Text
// matches case-insensitively anywhere in the cubicle name, user name, status
// or formatted start time.
func ApplyFilter(cache []Booking, q FilterQuery) []Booking {
	out := make([]Booking, 0, len(cache))
	if q.Empty() {
		return append(out, cache...)
	}

	needle := strings.ToLower(q.Text)
	for _, b := range cache {
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		if needle != "" && !strings.Contains(searchText(b), needle) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func searchText(b Booking) string {
	parts := []string{b.CubicleName, b.UserName, string(b.Status)}
	if !b.StartTime.IsZero() {
		parts = append(parts, b.StartTime.Format(DisplayTimeLayout))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

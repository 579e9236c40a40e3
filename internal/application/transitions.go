package application

// bookingTransitions lists, per role, the statuses a booking may move to from
// each status. Statuses without an entry are terminal for that role.
var bookingTransitions = map[Role]map[BookingStatus][]BookingStatus{
	RoleUser: {
		BookingPending: {BookingCancelled},
	},
	RoleStaff: {
		BookingPending:   {BookingConfirmed, BookingCancelled},
		BookingConfirmed: {BookingCancelled},
	},
	RoleAdmin: {
		BookingPending:   {BookingConfirmed, BookingCancelled},
		BookingConfirmed: {BookingCancelled},
	},
}

// AllowedTransitions returns the statuses role may move a booking in from to.
func AllowedTransitions(role Role, from BookingStatus) []BookingStatus {
	next := bookingTransitions[role][from]
	if len(next) == 0 {
		return nil
	}
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether role may move a booking from one status to another.
func CanTransition(role Role, from, to BookingStatus) bool {
	for _, next := range bookingTransitions[role][from] {
		if next == to {
			return true
		}
	}
	return false
}

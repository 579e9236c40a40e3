package application

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	statuses := []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}
	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingCancelled}:   true,
		{BookingConfirmed, BookingCancelled}: true,
	}

	for _, role := range []Role{RoleUser, RoleStaff, RoleAdmin} {
		for _, from := range statuses {
			for _, to := range statuses {
				if CanTransition(role, from, to) {
					require.True(t, allowed[[2]BookingStatus{from, to}], "%s may not move %s to %s", role, from, to)
				}
			}
		}
	}

	require.Equal(t, []BookingStatus{BookingCancelled}, AllowedTransitions(RoleUser, BookingPending))
	require.Empty(t, AllowedTransitions(RoleUser, BookingConfirmed))
	require.Equal(t, []BookingStatus{BookingConfirmed, BookingCancelled}, AllowedTransitions(RoleStaff, BookingPending))
	require.Equal(t, []BookingStatus{BookingCancelled}, AllowedTransitions(RoleAdmin, BookingConfirmed))
	require.Empty(t, AllowedTransitions(RoleAdmin, BookingCancelled))
	require.Empty(t, AllowedTransitions(Role("owner"), BookingPending))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	next := AllowedTransitions(RoleStaff, BookingPending)
	next[0] = BookingPending
	require.False(t, CanTransition(RoleStaff, BookingPending, BookingPending))
}

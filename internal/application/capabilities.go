package application

// Action is an operation a viewer may be offered on a listed row.
type Action string

const (
	ActionEdit       Action = "edit"
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionChangeRole Action = "change_role"
	ActionDelete     Action = "delete"
)

// Actions is an ordered set of offered actions.
type Actions []Action

// Has reports whether a is offered.
func (as Actions) Has(a Action) bool {
	for _, candidate := range as {
		if candidate == a {
			return true
		}
	}
	return false
}

// EntityKind names the kind of row capabilities are resolved for.
type EntityKind string

const (
	EntityCubicle EntityKind = "cubicle"
	EntityBooking EntityKind = "booking"
	EntityUser    EntityKind = "user"
)

// CapabilitiesFor resolves the actions viewer may take on row. row must be the
// Cubicle, Booking or User matching kind; anything else yields no actions.
// Renderers map the result to affordances and never decide permissions themselves.
func CapabilitiesFor(viewer Viewer, kind EntityKind, row any) Actions {
	switch kind {
	case EntityCubicle:
		if c, ok := row.(Cubicle); ok {
			return CubicleActions(viewer, c)
		}
	case EntityBooking:
		if b, ok := row.(Booking); ok {
			return BookingActions(viewer, b)
		}
	case EntityUser:
		if u, ok := row.(User); ok {
			return UserActions(viewer, u)
		}
	}
	return nil
}

// CubicleActions returns edit for staff and admins, and delete for admins only.
func CubicleActions(viewer Viewer, _ Cubicle) Actions {
	if viewer.Anonymous() {
		return nil
	}
	switch viewer.Role {
	case RoleAdmin:
		return Actions{ActionEdit, ActionDelete}
	case RoleStaff:
		return Actions{ActionEdit}
	}
	return nil
}

// BookingActions derives confirm and cancel from the transition table. Users
// only act on their own bookings.
func BookingActions(viewer Viewer, b Booking) Actions {
	if viewer.Anonymous() {
		return nil
	}
	if viewer.Role == RoleUser && b.UserID != viewer.UserID {
		return nil
	}

	var out Actions
	if CanTransition(viewer.Role, b.Status, BookingConfirmed) {
		out = append(out, ActionConfirm)
	}
	if CanTransition(viewer.Role, b.Status, BookingCancelled) {
		out = append(out, ActionCancel)
	}
	return out
}

// UserActions resolves account management actions. Only admins manage
// accounts; nobody manages their own account here, admin accounts are left to
// the super-admin and the primordial admin is never deleted.
func UserActions(viewer Viewer, target User) Actions {
	if refusal := userRefusal(viewer, target, ActionEdit); refusal != "" {
		return nil
	}
	out := Actions{ActionEdit, ActionChangeRole}
	if target.ID != PrimordialAdminID {
		out = append(out, ActionDelete)
	}
	return out
}

// AddUserAllowed reports whether viewer may create accounts directly.
func AddUserAllowed(viewer Viewer) bool {
	return !viewer.Anonymous() && viewer.Role == RoleAdmin && viewer.SuperAdmin
}

// userRefusal explains why viewer may not take action on target, or returns ""
// when the action is allowed.
func userRefusal(viewer Viewer, target User, action Action) string {
	switch {
	case viewer.Anonymous() || viewer.Role != RoleAdmin:
		return "Only admins can manage users."
	case target.ID == viewer.UserID:
		switch action {
		case ActionDelete:
			return "You cannot delete your own account."
		case ActionChangeRole:
			return "You cannot change your own role."
		}
		return "Use your profile to change your own account."
	case target.Role == RoleAdmin && !viewer.SuperAdmin:
		return "Only the super admin can modify admin accounts."
	case action == ActionDelete && target.ID == PrimordialAdminID:
		return "The primary admin cannot be deleted."
	}
	return ""
}

package application

import (
	"context"
	"errors"
	"testing"
)

func TestUserService_UpdateCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &apiStub{users: []User{superAdmin, guestUser, adminUser}}
	holder, _ := newTestHolder(t)
	loginAs(t, holder, adminUser)
	users := NewUserService(api, holder)

	t.Run("empty input is refused", func(t *testing.T) {
		err := users.UpdateCredentials(ctx, guestUser.ID, UserInput{FirstName: "  "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if msg := UserMessage(err, ""); msg != "Nothing to update." {
			t.Fatalf("unexpected message %q", msg)
		}
		if api.called("UpdateUser") != 0 {
			t.Fatalf("no request should be sent for an empty update")
		}
	})

	t.Run("own account goes through the profile", func(t *testing.T) {
		err := users.UpdateCredentials(ctx, adminUser.ID, UserInput{Email: "me@y.com"})
		if msg := UserMessage(err, ""); msg != "Use your profile to change your own account." {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("trimmed fields are sent and the list reloaded", func(t *testing.T) {
		before := api.called("ListUsers")
		err := users.UpdateCredentials(ctx, guestUser.ID, UserInput{FirstName: " Ana ", Email: " ana@b.com ", Password: "pw"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		want := UserInput{FirstName: "Ana", Email: "ana@b.com", Password: "pw"}
		if api.lastUserEdit != want {
			t.Fatalf("expected %+v, got %+v", want, api.lastUserEdit)
		}
		if api.called("ListUsers") <= before {
			t.Fatalf("expected the user list to be reloaded")
		}
	})

	t.Run("remote failure is reported", func(t *testing.T) {
		api.userErr = &RemoteError{Status: 409, Message: "Email already taken"}
		defer func() { api.userErr = nil }()

		err := users.UpdateCredentials(ctx, guestUser.ID, UserInput{Email: "x@y.com"})
		if msg := UserMessage(err, "Failed to update user"); msg != "Email already taken" {
			t.Fatalf("unexpected message %q", msg)
		}
	})
}

func TestUserService_ListIsCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &apiStub{users: []User{superAdmin, guestUser}}
	holder, _ := newTestHolder(t)
	loginAs(t, holder, adminUser)
	users := NewUserService(api, holder)

	if _, ok := users.Cached(); ok {
		t.Fatalf("nothing should be cached before the first load")
	}
	list, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	cached, ok := users.Cached()
	if !ok || len(cached) != len(list) {
		t.Fatalf("expected %d cached users, got %v (ok=%v)", len(list), cached, ok)
	}

	if err := users.ChangeRole(ctx, guestUser.ID, RoleStaff); err != nil {
		t.Fatalf("change role failed: %v", err)
	}
	if n := api.called("ListUsers"); n != 2 {
		t.Fatalf("expected the cached list to serve the lookup and one reload, got %d list calls", n)
	}
}

func TestUserService_CreateValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &apiStub{users: []User{superAdmin}}
	holder, _ := newTestHolder(t)
	loginAs(t, holder, superAdmin)
	users := NewUserService(api, holder)

	tests := []struct {
		name  string
		input UserInput
		field string
	}{
		{"missing first name", UserInput{LastName: "U", Email: "n@u.com", Password: "pw"}, "first_name"},
		{"missing password", UserInput{FirstName: "N", LastName: "U", Email: "n@u.com"}, "password"},
		{"unknown role", UserInput{FirstName: "N", LastName: "U", Email: "n@u.com", Password: "pw", Role: "owner"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.Create(ctx, tt.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Fatalf("expected %s to be flagged, got %v", tt.field, vErr.FieldErrors)
			}
		})
	}
	if api.called("CreateUser") != 0 {
		t.Fatalf("invalid input must not reach the backend")
	}
}

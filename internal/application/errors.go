package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the acting viewer lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested record is not in the last fetched list.
	ErrNotFound = errors.New("application: not found")
	// ErrNoSession is returned by operations that need a logged-in user.
	ErrNoSession = errors.New("application: no active session")
	// ErrStaleSession is returned when a response arrives after the session it
	// was issued under has ended or been replaced.
	ErrStaleSession = errors.New("application: session changed while request was in flight")
	// ErrInvalidTransition is returned for booking status changes outside the transition table.
	ErrInvalidTransition = errors.New("application: booking transition not allowed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// PreconditionError is a client-side refusal detected before any request is
// sent, such as deleting one's own account.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// Unwrap lets callers match precondition failures with ErrUnauthorized.
func (e *PreconditionError) Unwrap() error {
	return ErrUnauthorized
}

func refuse(message string) error {
	return &PreconditionError{Message: message}
}

// RemoteError is a failed call to the BookCafe backend. Status is zero when
// the request never produced an HTTP response.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("backend returned %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("backend returned %d", e.Status)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UserMessage picks the text shown to the user for err. Backend messages and
// client-side refusals win; anything else degrades to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var pErr *PreconditionError
	if errors.As(err, &pErr) && pErr.Message != "" {
		return pErr.Message
	}

	var rErr *RemoteError
	if errors.As(err, &rErr) {
		if msg := strings.TrimSpace(rErr.Message); msg != "" {
			return msg
		}
		return fallback
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		fields := make([]string, 0, len(vErr.FieldErrors))
		for field := range vErr.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return vErr.FieldErrors[fields[0]]
	}

	switch {
	case errors.Is(err, ErrNoSession):
		return "Please log in first."
	case errors.Is(err, ErrInvalidTransition):
		return "That booking can no longer be changed."
	}
	return fallback
}

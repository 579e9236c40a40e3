package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AuthService logs users in and out and registers new accounts.
type AuthService struct {
	api     API
	session *SessionHolder
	logger  *slog.Logger
}

// NewAuthService constructs an auth service.
func NewAuthService(api API, session *SessionHolder) *AuthService {
	return NewAuthServiceWithLogger(api, session, nil)
}

// NewAuthServiceWithLogger constructs an auth service with a specified logger.
func NewAuthServiceWithLogger(api API, session *SessionHolder, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, session: session, logger: defaultLogger(logger)}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login verifies credentials with the backend and activates the returned session.
func (s *AuthService) Login(ctx context.Context, email, password string) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID, "role", user.Role).InfoContext(ctx, "user logged in")
	}()

	email = strings.TrimSpace(email)
	vErr := &ValidationError{}
	if email == "" {
		vErr.Add("email", "Email is required.")
	}
	if password == "" {
		vErr.Add("password", "Password is required.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var result LoginResult
	result, err = guarded(s.session, func() (LoginResult, error) {
		return s.api.Login(ctx, email, password)
	})
	if err != nil {
		return
	}
	if result.Token == "" {
		err = &RemoteError{Status: 200, Err: errors.New("login response carried no token")}
		return
	}

	if err = s.session.Login(ctx, result.Token, result.User); err != nil {
		return
	}
	user = result.User
	return
}

// Register creates a self-service account. The user logs in separately afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	logger := s.loggerWith(ctx, "Register")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account registered")
	}()

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	vErr := &ValidationError{}
	if input.FirstName == "" {
		vErr.Add("first_name", "First name is required.")
	}
	if input.LastName == "" {
		vErr.Add("last_name", "Last name is required.")
	}
	if input.Email == "" {
		vErr.Add("email", "Email is required.")
	}
	if input.Password == "" {
		vErr.Add("password", "Password is required.")
	}
	if vErr.HasErrors() {
		return vErr
	}

	return s.api.Register(ctx, input)
}

// Logout ends the session locally. The backend keeps no logout endpoint.
func (s *AuthService) Logout(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	logger := s.loggerWith(ctx, "Logout")
	if err := s.session.Logout(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to log out", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "user logged out")
	return nil
}

// Restore reactivates a persisted session, reporting whether one was found.
func (s *AuthService) Restore(ctx context.Context) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("AuthService is nil")
	}
	return s.session.Restore(ctx)
}

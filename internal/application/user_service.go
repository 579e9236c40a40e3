package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const userCacheKey = "users"

// UserService manages accounts from the admin dashboard. Every precondition
// is checked against the cached list before a request is sent.
type UserService struct {
	api     API
	session *SessionHolder
	cache   *listCache[User]
	logger  *slog.Logger
}

// NewUserService constructs a user service.
func NewUserService(api API, session *SessionHolder) *UserService {
	return NewUserServiceWithLogger(api, session, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(api API, session *SessionHolder, logger *slog.Logger) *UserService {
	s := &UserService{
		api:     api,
		session: session,
		cache:   newListCache[User](),
		logger:  defaultLogger(logger),
	}
	invalidateOnSessionChange(session, s.cache)
	return s
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

func (s *UserService) requireAdmin() (Viewer, error) {
	viewer, err := requireViewer(s.session)
	if err != nil {
		return Viewer{}, err
	}
	if viewer.Role != RoleAdmin {
		return Viewer{}, refuse("Only admins can manage users.")
	}
	return viewer, nil
}

// List fetches every account and caches it.
func (s *UserService) List(ctx context.Context) (users []User, err error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if _, err = s.requireAdmin(); err != nil {
		return nil, err
	}

	users, err = guarded(s.session, func() ([]User, error) {
		return s.api.ListUsers(ctx)
	})
	if err != nil {
		s.loggerWith(ctx, "List").ErrorContext(ctx, "failed to list users", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	s.cache.Store(userCacheKey, users)
	return users, nil
}

// Cached returns the last fetched account list.
func (s *UserService) Cached() ([]User, bool) {
	return s.cache.Get(userCacheKey)
}

func (s *UserService) find(ctx context.Context, id int) (User, error) {
	list, ok := s.cache.Get(userCacheKey)
	if !ok {
		var err error
		if list, err = s.List(ctx); err != nil {
			return User{}, err
		}
	}
	for _, u := range list {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Create adds an account directly. Only the super-admin may do so.
func (s *UserService) Create(ctx context.Context, input UserInput) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return err
	}
	if !AddUserAllowed(viewer) {
		return refuse("Only the super admin can add users.")
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", viewer.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user created")
	}()

	input = normalizeUserInput(input)
	if input.Role == "" {
		input.Role = RoleUser
	}
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
	if !input.Role.Valid() {
		vErr.Add("role", "Role must be user, staff or admin.")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if err = guardedErr(s.session, func() error { return s.api.CreateUser(ctx, input) }); err != nil {
		return err
	}
	_, err = s.List(ctx)
	return err
}

// UpdateCredentials changes the name, email and, when given, password of an account.
func (s *UserService) UpdateCredentials(ctx context.Context, id int, input UserInput) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	viewer, err := s.requireAdmin()
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "UpdateCredentials", "principal_id", viewer.UserID, "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	target, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if msg := userRefusal(viewer, target, ActionEdit); msg != "" {
		return refuse(msg)
	}

	input = normalizeUserInput(input)
	input.Role = ""
	if input.FirstName == "" && input.LastName == "" && input.Email == "" && input.Password == "" {
		vErr := &ValidationError{}
		vErr.Add("input", "Nothing to update.")
		return vErr
	}

	if err = guardedErr(s.session, func() error { return s.api.UpdateUser(ctx, id, input) }); err != nil {
		return err
	}
	_, err = s.List(ctx)
	return err
}

// ChangeRole moves an account to role.
func (s *UserService) ChangeRole(ctx context.Context, id int, role Role) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	viewer, err := s.requireAdmin()
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "ChangeRole", "principal_id", viewer.UserID, "user_id", id, "role", role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role changed")
	}()

	role = Role(strings.ToLower(strings.TrimSpace(string(role))))
	if !role.Valid() {
		vErr := &ValidationError{}
		vErr.Add("role", "Role must be user, staff or admin.")
		return vErr
	}

	target, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if msg := userRefusal(viewer, target, ActionChangeRole); msg != "" {
		return refuse(msg)
	}

	if err = guardedErr(s.session, func() error { return s.api.UpdateUser(ctx, id, UserInput{Role: role}) }); err != nil {
		return err
	}
	_, err = s.List(ctx)
	return err
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	viewer, err := s.requireAdmin()
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", viewer.UserID, "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	target, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if msg := userRefusal(viewer, target, ActionDelete); msg != "" {
		return refuse(msg)
	}

	if err = guardedErr(s.session, func() error { return s.api.DeleteUser(ctx, id) }); err != nil {
		return err
	}
	_, err = s.List(ctx)
	return err
}

func normalizeUserInput(input UserInput) UserInput {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Role = Role(strings.ToLower(strings.TrimSpace(string(input.Role))))
	return input
}

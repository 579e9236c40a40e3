package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// ProfileService edits the logged-in user's own account.
type ProfileService struct {
	api     API
	session *SessionHolder
	logger  *slog.Logger
}

// NewProfileService constructs a profile service.
func NewProfileService(api API, session *SessionHolder) *ProfileService {
	return NewProfileServiceWithLogger(api, session, nil)
}

// NewProfileServiceWithLogger constructs a profile service with a specified logger.
func NewProfileServiceWithLogger(api API, session *SessionHolder, logger *slog.Logger) *ProfileService {
	return &ProfileService{api: api, session: session, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// Form returns the profile form prefilled from the session. The password is
// always blank.
func (s *ProfileService) Form() (ProfileInput, error) {
	if s == nil {
		return ProfileInput{}, fmt.Errorf("ProfileService is nil")
	}
	session := s.session.Session()
	if !session.Active() {
		return ProfileInput{}, ErrNoSession
	}
	return ProfileInput{
		FirstName: session.User.FirstName,
		LastName:  session.User.LastName,
		Email:     session.User.Email,
		AvatarURL: session.User.AvatarURL,
	}, nil
}

// Update sends the profile form and merges the accepted values into the
// session. The password is only sent when non-empty.
func (s *ProfileService) Update(ctx context.Context, input ProfileInput) (err error) {
	if s == nil {
		return fmt.Errorf("ProfileService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Update", "user_id", viewer.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)
	if input.Email == "" {
		vErr := &ValidationError{}
		vErr.Add("email", "Email is required.")
		return vErr
	}

	if err = guardedErr(s.session, func() error { return s.api.UpdateProfile(ctx, input) }); err != nil {
		return err
	}

	return s.session.UpdateProfile(ctx, ProfileUpdate{
		FirstName: &input.FirstName,
		LastName:  &input.LastName,
		Email:     &input.Email,
		AvatarURL: input.AvatarURL,
	})
}

// UploadAvatar uploads an image and stores the returned URL on the session user.
func (s *ProfileService) UploadAvatar(ctx context.Context, filename string, content io.Reader) (url string, err error) {
	if s == nil {
		return "", fmt.Errorf("ProfileService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return "", err
	}

	logger := s.loggerWith(ctx, "UploadAvatar", "user_id", viewer.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to upload avatar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "avatar uploaded", "avatar_url", url)
	}()

	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || content == nil {
		vErr := &ValidationError{}
		vErr.Add("avatar", "Choose an image to upload.")
		return "", vErr
	}

	url, err = guarded(s.session, func() (string, error) {
		return s.api.UploadAvatar(ctx, filename, content)
	})
	if err != nil {
		return "", err
	}
	if err = s.session.UpdateProfile(ctx, ProfileUpdate{AvatarURL: url}); err != nil {
		return "", err
	}
	return url, nil
}

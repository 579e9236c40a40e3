package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const cubicleCacheKey = "cubicles"

// CubicleService lists cubicles and runs the shared create/edit form.
type CubicleService struct {
	api     API
	session *SessionHolder
	cache   *listCache[Cubicle]
	logger  *slog.Logger
}

// NewCubicleService constructs a cubicle service.
func NewCubicleService(api API, session *SessionHolder) *CubicleService {
	return NewCubicleServiceWithLogger(api, session, nil)
}

// NewCubicleServiceWithLogger constructs a cubicle service with a specified logger.
func NewCubicleServiceWithLogger(api API, session *SessionHolder, logger *slog.Logger) *CubicleService {
	s := &CubicleService{
		api:     api,
		session: session,
		cache:   newListCache[Cubicle](),
		logger:  defaultLogger(logger),
	}
	invalidateOnSessionChange(session, s.cache)
	return s
}

func (s *CubicleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CubicleService", operation, attrs...)
}

// List fetches the cubicle catalog and caches it.
func (s *CubicleService) List(ctx context.Context) (cubicles []Cubicle, err error) {
	if s == nil {
		err = fmt.Errorf("CubicleService is nil")
		return
	}
	if _, err = requireViewer(s.session); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "List")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list cubicles", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "cubicles listed", "count", len(cubicles))
	}()

	cubicles, err = guarded(s.session, func() ([]Cubicle, error) {
		return s.api.ListCubicles(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Store(cubicleCacheKey, cubicles)
	return cubicles, nil
}

// Cached returns the last fetched catalog.
func (s *CubicleService) Cached() ([]Cubicle, bool) {
	return s.cache.Get(cubicleCacheKey)
}

func (s *CubicleService) find(ctx context.Context, id int) (Cubicle, error) {
	list, ok := s.cache.Get(cubicleCacheKey)
	if !ok {
		var err error
		if list, err = s.List(ctx); err != nil {
			return Cubicle{}, err
		}
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return Cubicle{}, ErrNotFound
}

// BeginEdit marks id as being edited and returns it to prefill the form.
func (s *CubicleService) BeginEdit(ctx context.Context, id int) (Cubicle, error) {
	if s == nil {
		return Cubicle{}, fmt.Errorf("CubicleService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return Cubicle{}, err
	}

	cubicle, err := s.find(ctx, id)
	if err != nil {
		return Cubicle{}, err
	}
	if !CubicleActions(viewer, cubicle).Has(ActionEdit) {
		return Cubicle{}, refuse("You are not allowed to edit cubicles.")
	}

	s.session.BeginEdit(id)
	s.loggerWith(ctx, "BeginEdit", "cubicle_id", id).DebugContext(ctx, "editing cubicle")
	return cubicle, nil
}

// CancelEdit returns the form to create mode.
func (s *CubicleService) CancelEdit() {
	if s == nil || s.session == nil {
		return
	}
	s.session.EndEdit()
}

// Save creates a cubicle, or updates the one being edited. The edit marker is
// cleared and the catalog re-fetched after a successful save.
func (s *CubicleService) Save(ctx context.Context, input CubicleInput) (err error) {
	if s == nil {
		return fmt.Errorf("CubicleService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return err
	}

	editingID, editing := s.session.EditingID()
	operation := "Create"
	if editing {
		operation = "Update"
	}
	logger := s.loggerWith(ctx, operation, "cubicle_id", editingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save cubicle", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "cubicle saved")
	}()

	if editing {
		if !CubicleActions(viewer, Cubicle{ID: editingID}).Has(ActionEdit) {
			return refuse("You are not allowed to edit cubicles.")
		}
	} else if viewer.Role != RoleAdmin {
		return refuse("Only admins can create cubicles.")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if vErr := validateCubicleInput(input); vErr.HasErrors() {
		return vErr
	}

	err = guardedErr(s.session, func() error {
		if editing {
			return s.api.UpdateCubicle(ctx, editingID, input)
		}
		return s.api.CreateCubicle(ctx, input)
	})
	if err != nil {
		return err
	}

	s.session.EndEdit()
	_, err = s.List(ctx)
	return err
}

// Delete removes a cubicle and re-fetches the catalog.
func (s *CubicleService) Delete(ctx context.Context, id int) (err error) {
	if s == nil {
		return fmt.Errorf("CubicleService is nil")
	}
	viewer, err := requireViewer(s.session)
	if err != nil {
		return err
	}
	if !CubicleActions(viewer, Cubicle{ID: id}).Has(ActionDelete) {
		return refuse("Only admins can delete cubicles.")
	}

	logger := s.loggerWith(ctx, "Delete", "cubicle_id", id)
	if err = guardedErr(s.session, func() error { return s.api.DeleteCubicle(ctx, id) }); err != nil {
		logger.ErrorContext(ctx, "failed to delete cubicle", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "cubicle deleted")

	if editingID, ok := s.session.EditingID(); ok && editingID == id {
		s.session.EndEdit()
	}
	_, err = s.List(ctx)
	return err
}

func validateCubicleInput(input CubicleInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.Add("name", "Name is required.")
	}
	if math.IsNaN(input.HourlyRate) || math.IsInf(input.HourlyRate, 0) || input.HourlyRate < 0 {
		vErr.Add("hourly_rate", "Hourly rate must be zero or more.")
	}
	return vErr
}

package application

// guarded runs call and discards its result with ErrStaleSession when the
// session changed while the call was in flight.
func guarded[T any](h *SessionHolder, call func() (T, error)) (T, error) {
	epoch := h.Epoch()
	value, err := call()
	if err != nil {
		return value, err
	}
	if err := h.CheckEpoch(epoch); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func guardedErr(h *SessionHolder, call func() error) error {
	_, err := guarded(h, func() (struct{}, error) {
		return struct{}{}, call()
	})
	return err
}

// requireViewer returns the logged-in viewer or ErrNoSession.
func requireViewer(h *SessionHolder) (Viewer, error) {
	if h == nil {
		return Viewer{}, ErrNoSession
	}
	viewer := h.Viewer()
	if viewer.Anonymous() {
		return Viewer{}, ErrNoSession
	}
	return viewer, nil
}

// invalidateOnSessionChange drops cached lists whenever the session changes hands.
func invalidateOnSessionChange[T any](h *SessionHolder, caches ...*listCache[T]) {
	if h == nil {
		return
	}
	h.Subscribe(func(SessionEvent, Session) {
		for _, c := range caches {
			c.Invalidate()
		}
	})
}

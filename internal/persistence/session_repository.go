package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SessionRepository keeps the session pair in a KeyValueStore, optionally
// sealing both values.
type SessionRepository struct {
	store  KeyValueStore
	sealer *Sealer
}

// NewSessionRepository wraps store. A nil sealer stores values in clear text.
func NewSessionRepository(store KeyValueStore, sealer *Sealer) *SessionRepository {
	return &SessionRepository{store: store, sealer: sealer}
}

// LoadSession returns the persisted pair. ErrNotFound is returned when either
// entry is missing and ErrCorrupt when a sealed value cannot be opened.
func (r *SessionRepository) LoadSession(ctx context.Context) (StoredSession, error) {
	if r == nil || r.store == nil {
		return StoredSession{}, ErrNotFound
	}

	items, err := r.store.GetItems(ctx, TokenKey, UserKey)
	if err != nil {
		return StoredSession{}, fmt.Errorf("load session: %w", err)
	}

	token, user := items[TokenKey], items[UserKey]
	if strings.TrimSpace(token) == "" || strings.TrimSpace(user) == "" {
		return StoredSession{}, ErrNotFound
	}

	if r.sealer != nil {
		if token, err = r.sealer.Open(token); err != nil {
			return StoredSession{}, err
		}
		if user, err = r.sealer.Open(user); err != nil {
			return StoredSession{}, err
		}
	}

	return StoredSession{Token: token, User: user}, nil
}

// SaveSession writes both entries in one store operation.
func (r *SessionRepository) SaveSession(ctx context.Context, session StoredSession) error {
	if r == nil || r.store == nil {
		return errors.New("session repository not configured")
	}
	if session.Token == "" || session.User == "" {
		return errors.New("save session: token and user are both required")
	}

	token, user := session.Token, session.User
	if r.sealer != nil {
		var err error
		if token, err = r.sealer.Seal(token); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		if user, err = r.sealer.Seal(user); err != nil {
			return fmt.Errorf("seal user: %w", err)
		}
	}

	if err := r.store.SetItems(ctx, map[string]string{TokenKey: token, UserKey: user}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession removes both entries in one store operation.
func (r *SessionRepository) ClearSession(ctx context.Context) error {
	if r == nil || r.store == nil {
		return errors.New("session repository not configured")
	}
	if err := r.store.RemoveItems(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

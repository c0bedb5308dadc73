// Package session holds the client session record, the guard deciding what a session may reach,
// and the stores persisting the session between runs.
package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core/user"
)

// Storage keys; a session is persisted as exactly these two entries.
const (
	KeyIsAuthenticated = "isAuthenticated"
	KeyUser            = "user"
)

// Session is the client-held record of whether a user is logged in and who they are.
type Session struct {
	IsAuthenticated bool
	User            *user.Profile
}

// Valid reports whether the session is authenticated and carries a user record.
func (s Session) Valid() bool {
	return s.IsAuthenticated && s.User != nil
}

// Token returns the API token saved with the user record, if any.
func (s Session) Token() string {
	if s.User == nil {
		return ""
	}
	return s.User.Token
}

// Store is the single read/write boundary of the persisted session.
type Store interface {
	// Load never fails: unreadable data yields a logged-out Session.
	Load() Session
	Save(s Session) error
	// Clear removes both session keys.
	Clear() error
}

// Authenticator exchanges credentials for the user record (carrying its API token).
type Authenticator interface {
	Login(ctx context.Context, mail, password string) (user.Profile, error)
}

// SignIn authenticates against the API and persists the resulting session.
func SignIn(ctx context.Context, auth Authenticator, store Store, mail, password string) (Session, error) {
	profile, err := auth.Login(ctx, mail, password)
	if err != nil {
		return Session{}, err
	}
	s := Session{IsAuthenticated: true, User: &profile}
	if err := store.Save(s); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return s, nil
}

// SignOut clears the persisted session.
func SignOut(store Store) error {
	return errors.Wrap(store.Clear(), "clearing session")
}

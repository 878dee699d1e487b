// package stores holds local state reconciled against the remote services.
//
// SessionStore owns the signed-in identity, WatchlistStore owns the saved-movie
// collection, and Binding ties the two together so the watchlist always follows
// the current identity. Local watchlist state is only trusted immediately after
// a fresh read from the remote store (reload-after-write).
package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
)

// SessionState enumerates the session lifecycle states.
type SessionState int

const (
	// StateUnknown holds until the first Current call resolves.
	StateUnknown SessionState = iota
	StateSignedOut
	StateSignedIn
)

const minPasswordLength = 8

// SessionStore is the single source of truth for who is signed in and the only
// component that calls the auth service.
//
// Identity-change listeners registered via Subscribe run synchronously on the
// goroutine that triggered the change, without the store lock held.
type SessionStore struct {
	mu        sync.Mutex
	auth      services.AuthAPI
	logger    *log.Logger
	state     SessionState
	identity  *models.Identity
	session   *services.Session
	loading   bool
	listeners []func(*models.Identity)
}

// NewSessionStore creates a session store backed by the given auth service.
func NewSessionStore(auth services.AuthAPI, logger *log.Logger) *SessionStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SessionStore{
		auth:   auth,
		logger: logger,
		state:  StateUnknown,
	}
}

// Subscribe registers a listener invoked on every identity change, including
// the transition to signed out (nil identity).
func (s *SessionStore) Subscribe(fn func(*models.Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current session state.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether an operation is in flight. Advisory only; callers
// use it to disable concurrent actions.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Identity returns a copy of the signed-in identity, or nil when signed out.
func (s *SessionStore) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// CurrentSession returns the session established by the last successful Login
// or Register, or nil. Its secret is what gets persisted locally.
func (s *SessionStore) CurrentSession() *services.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Current queries the auth service for the active identity.
//
// An absent session is an expected condition, not an error: the store
// transitions to signed out and returns (nil, nil). Any other failure is
// surfaced and leaves the prior state untouched.
func (s *SessionStore) Current(ctx context.Context) (*models.Identity, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	account, err := s.auth.Account(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNoSession) {
			s.logger.Debug("no active session")
			s.setIdentity(nil)
			return nil, nil
		}
		return nil, err
	}

	identity := account.Identity()
	s.setIdentity(identity)
	return identity, nil
}

// Register creates an account and immediately establishes a session for it.
//
// Input is validated locally before any network call. The identity remains
// unset unless every step succeeds.
func (s *SessionStore) Register(ctx context.Context, email, password, name string) (*models.Identity, error) {
	if err := validateRegistration(email, password, name); err != nil {
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.auth.CreateAccount(ctx, shared.GenerateID(), email, password, name); err != nil {
		return nil, err
	}

	return s.establishSession(ctx, email, password)
}

// Login establishes a session with the given credentials.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	return s.establishSession(ctx, email, password)
}

// Logout terminates the current session.
//
// The local identity is cleared only after the backend confirms; on failure
// the caller must not assume the session is gone.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.auth.DeleteSession(ctx, "current"); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	s.setIdentity(nil)
	return nil
}

// RequestPasswordReset triggers a recovery email via the auth service.
// No local state changes.
func (s *SessionStore) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	return s.auth.CreateRecovery(ctx, email, redirectURL)
}

// establishSession creates a session and resolves the account behind it.
func (s *SessionStore) establishSession(ctx context.Context, email, password string) (*models.Identity, error) {
	session, err := s.auth.CreateEmailSession(ctx, email, password)
	if err != nil {
		return nil, err
	}

	account, err := s.auth.Account(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	identity := account.Identity()
	s.setIdentity(identity)
	return identity, nil
}

// setIdentity swaps the identity, updates the state machine and notifies
// listeners when the identity actually changed.
func (s *SessionStore) setIdentity(identity *models.Identity) {
	s.mu.Lock()

	changed := identityChanged(s.identity, identity)
	s.identity = identity
	if identity != nil {
		s.state = StateSignedIn
	} else {
		s.state = StateSignedOut
	}

	listeners := make([]func(*models.Identity), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !changed {
		return
	}

	for _, fn := range listeners {
		fn(identity)
	}
}

func (s *SessionStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func identityChanged(prev, next *models.Identity) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	default:
		return prev.ID != next.ID
	}
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email address", shared.ErrValidation)
	}
	return nil
}

func validateRegistration(email, password, name string) error {
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("%w: name, email and password are required", shared.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email address", shared.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, minPasswordLength)
	}
	return nil
}

package sessionStore

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/tomato-client/api"
	"github.com/junaidrashid-git/tomato-client/models"
)

// Fallback messages shown when the backend supplies none.
const (
	msgRegisterFailed = "Registration failed. Please try again."
	msgLoginFailed    = "Login failed. Please check credentials."
	msgLogoutFailed   = "Logout failed. Please try again."
)

// State is the session slice. Initialized latches true after the first
// Restore completes, success or failure, and never resets. Invariant:
// IsAuthenticated == (User != nil).
type State struct {
	User            *models.User
	IsAuthenticated bool
	Initialized     bool
	Loading         bool
	Err             string
}

type Store struct {
	api *api.Client

	mu    sync.Mutex
	state State
	subs  []func()
}

func New(client *api.Client) *Store {
	return &Store{api: client}
}

// State returns a snapshot of the current session slice.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a change listener, called after every transition.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) update(apply func(*State)) {
	s.mu.Lock()
	apply(&s.state)
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

// Restore checks whether a previously authenticated identity is still valid.
// It runs once at process start; the OAuth provider redirecting back re-enters
// through this exact path. A failure here is a normal anonymous visit, not a
// user-visible error. Reports whether a session was restored.
func (s *Store) Restore(ctx context.Context) bool {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	var env userEnvelope
	err := s.api.Get(ctx, "/api/auth/me", &env)

	restored := err == nil && env.User != nil
	s.update(func(st *State) {
		st.Loading = false
		st.Initialized = true
		if restored {
			st.User = env.User
			st.IsAuthenticated = true
		} else {
			st.User = nil
			st.IsAuthenticated = false
		}
	})
	return restored
}

// Register creates an account and signs the user in.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	body := map[string]string{"name": name, "email": email, "password": password}
	var env userEnvelope
	err := s.api.Post(ctx, "/api/auth/register", body, &env)

	s.update(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Err = api.MessageOr(err, msgRegisterFailed)
			return
		}
		st.User = env.User
		st.IsAuthenticated = env.User != nil
	})
	return err
}

// Login authenticates with email and password. A rejected login clears any
// stale identity; it must not leave the previous user visible.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	body := map[string]string{"email": email, "password": password}
	var env userEnvelope
	err := s.api.Post(ctx, "/api/auth/login", body, &env)

	s.update(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Err = api.MessageOr(err, msgLoginFailed)
			st.User = nil
			st.IsAuthenticated = false
			return
		}
		st.User = env.User
		st.IsAuthenticated = env.User != nil
	})
	return err
}

// Logout ends the server-side session. On failure the local identity is
// retained and the error surfaced; the caller decides whether to proceed as
// signed out anyway.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func(st *State) {
		st.Loading = true
	})

	err := s.api.Post(ctx, "/api/auth/logout", nil, nil)

	s.update(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Err = api.MessageOr(err, msgLogoutFailed)
			return
		}
		st.User = nil
		st.IsAuthenticated = false
	})
	return err
}

// ClearError drops the visible error without touching the rest of the slice.
func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Err = ""
	})
}

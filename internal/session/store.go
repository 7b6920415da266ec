// Package session holds the single active user session and the mocked
// credential flow that populates it.
package session

import (
	"errors"
	"log"
	"sync"

	"github.com/i474232898/taskmaster/internal/store"
)

// User identifies the logged-in account.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// State is a snapshot of the session.
type State struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsLoading       bool   `json:"isLoading"`
	Error           string `json:"error,omitempty"`
}

// Listener is notified after every state change.
type Listener func(State)

// Store owns the session state. The user record is written through to the
// KV under store.KeyUser and deleted on logout.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	state State

	listeners map[int]Listener
	nextSub   int
}

// NewStore seeds the session from kv; a stored user means authenticated.
func NewStore(kv store.KV) *Store {
	s := &Store{
		kv:        kv,
		listeners: make(map[int]Listener),
	}

	var u User
	err := store.LoadJSON(kv, store.KeyUser, &u)
	switch {
	case err == nil:
		s.state.User = &u
		s.state.IsAuthenticated = true
		log.Printf("INFO: session: restored session for %s", u.Username)
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Printf("WARN: session: ignoring stored user: %v", err)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// CurrentUser returns the logged-in user, if any.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsAuthenticated || s.state.User == nil {
		return User{}, false
	}
	return *s.state.User, true
}

// Username returns the logged-in username or "".
func (s *Store) Username() string {
	u, _ := s.CurrentUser()
	return u.Username
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) LoginStart()                 { s.start() }
func (s *Store) LoginSuccess(u User)         { s.succeed(u) }
func (s *Store) LoginFailure(message string) { s.fail(message) }

func (s *Store) SignupStart()                 { s.start() }
func (s *Store) SignupSuccess(u User)         { s.succeed(u) }
func (s *Store) SignupFailure(message string) { s.fail(message) }

// Logout clears the session and removes the stored user. The loading and
// error fields are left as they are.
func (s *Store) Logout() {
	s.update(func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
		if err := s.kv.Delete(store.KeyUser); err != nil {
			log.Printf("WARN: session: remove stored user failed: %v", err)
		}
	})
}

func (s *Store) start() {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
}

func (s *Store) succeed(u User) {
	s.update(func(st *State) {
		st.IsLoading = false
		st.IsAuthenticated = true
		st.User = &u
		st.Error = ""
		if err := store.SaveJSON(s.kv, store.KeyUser, u); err != nil {
			log.Printf("WARN: session: persist user failed: %v", err)
		}
	})
}

func (s *Store) fail(message string) {
	s.update(func(st *State) {
		st.IsLoading = false
		st.Error = message
	})
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.copyLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) copyLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

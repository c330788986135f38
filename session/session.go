package session

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"eaisdo/log"
)

// State is the observable session flag pair.
type State struct {
	Authenticated bool `json:"authenticated"`
	Loading       bool `json:"loading"`
}

// Session owns the authenticated flag for one browser session. It starts in
// the loading state until Initialize resolves it from the stored token.
type Session struct {
	storage TokenStorage
	creds   Credentials

	mu    sync.Mutex
	state State

	initOnce sync.Once
	ready    chan struct{}
}

func New(storage TokenStorage, creds Credentials) *Session {
	return &Session{
		storage: storage,
		creds:   creds,
		state:   State{Loading: true},
		ready:   make(chan struct{}),
	}
}

// Initialize resolves the loading state from the stored token. It runs once,
// in the background, after yielding to the scheduler; Ready is closed when done.
func (s *Session) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		go func() {
			runtime.Gosched()
			token, err := s.storage.Token(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session: read token")
				token = ""
			}
			s.mu.Lock()
			// A login or logout that raced ahead of us already decided the flag.
			if s.state.Loading {
				s.state.Authenticated = token != ""
				s.state.Loading = false
			}
			s.mu.Unlock()
			close(s.ready)
		}()
	})
}

// Ready is closed once Initialize has resolved the session.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login accepts only the configured credential pair. On success it persists
// a fresh token; on failure nothing is touched.
func (s *Session) Login(ctx context.Context, username, password string) (bool, error) {
	if !s.creds.Check(username, password) {
		return false, nil
	}
	token := "session-" + uuid.NewString()
	if err := s.storage.SetToken(ctx, token); err != nil {
		return false, fmt.Errorf("persist session token: %w", err)
	}
	s.mu.Lock()
	s.state = State{Authenticated: true}
	s.mu.Unlock()
	return true, nil
}

// Logout always ends up unauthenticated, even when clearing the stored token fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	if err := s.storage.RemoveToken(ctx); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request session, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

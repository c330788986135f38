package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStorage struct {
	MemoryStorage
	failWrites bool
	failReads  bool
}

var errStorage = errors.New("storage unavailable")

func (b *brokenStorage) Token(ctx context.Context) (string, error) {
	if b.failReads {
		return "", errStorage
	}
	return b.MemoryStorage.Token(ctx)
}

func (b *brokenStorage) SetToken(ctx context.Context, token string) error {
	if b.failWrites {
		return errStorage
	}
	return b.MemoryStorage.SetToken(ctx, token)
}

func (b *brokenStorage) RemoveToken(ctx context.Context) error {
	if b.failWrites {
		return errStorage
	}
	return b.MemoryStorage.RemoveToken(ctx)
}

func waitReady(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(time.Second):
		t.Fatal("session did not initialize")
	}
}

func TestNewSessionStartsLoading(t *testing.T) {
	s := New(NewMemoryStorage(""), DefaultCredentials)
	assert.Equal(t, State{Loading: true}, s.Status())
	assert.Equal(t, ViewSpinner, Guard(s.Status()))
}

func TestInitializeWithoutToken(t *testing.T) {
	s := New(NewMemoryStorage(""), DefaultCredentials)
	s.Initialize(context.Background())
	waitReady(t, s)
	assert.Equal(t, State{}, s.Status())
	assert.Equal(t, ViewLogin, Guard(s.Status()))
}

func TestInitializeWithStoredToken(t *testing.T) {
	s := New(NewMemoryStorage("session-abc"), DefaultCredentials)
	s.Initialize(context.Background())
	s.Initialize(context.Background())
	waitReady(t, s)
	assert.Equal(t, State{Authenticated: true}, s.Status())
	assert.Equal(t, ViewContent, Guard(s.Status()))
}

func TestInitializeReadFailureIsUnauthenticated(t *testing.T) {
	s := New(&brokenStorage{failReads: true}, DefaultCredentials)
	s.Initialize(context.Background())
	waitReady(t, s)
	assert.Equal(t, State{}, s.Status())
}

func TestLoginWithValidCredentials(t *testing.T) {
	storage := NewMemoryStorage("")
	s := New(storage, DefaultCredentials)
	s.Initialize(context.Background())
	waitReady(t, s)

	ok, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Status().Authenticated)

	token, _ := storage.Token(context.Background())
	assert.NotEmpty(t, token)
}

func TestLoginTokensAreFresh(t *testing.T) {
	storage := NewMemoryStorage("")
	s := New(storage, DefaultCredentials)
	_, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	first, _ := storage.Token(context.Background())
	_, err = s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	second, _ := storage.Token(context.Background())
	assert.NotEqual(t, first, second)
}

func TestLoginWithInvalidCredentials(t *testing.T) {
	storage := NewMemoryStorage("")
	s := New(storage, DefaultCredentials)
	s.Initialize(context.Background())
	waitReady(t, s)

	ok, err := s.Login(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Status().Authenticated)

	token, _ := storage.Token(context.Background())
	assert.Empty(t, token)
}

func TestLoginStorageFailure(t *testing.T) {
	s := New(&brokenStorage{failWrites: true}, DefaultCredentials)
	ok, err := s.Login(context.Background(), "admin", "password")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errStorage)
	assert.False(t, s.Status().Authenticated)
}

func TestLoginBeforeInitializeWins(t *testing.T) {
	s := New(NewMemoryStorage(""), DefaultCredentials)
	_, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	s.Initialize(context.Background())
	waitReady(t, s)
	assert.Equal(t, State{Authenticated: true}, s.Status())
}

func TestLogoutAlwaysClears(t *testing.T) {
	for _, startToken := range []string{"", "session-1"} {
		storage := NewMemoryStorage(startToken)
		s := New(storage, DefaultCredentials)
		s.Initialize(context.Background())
		waitReady(t, s)

		require.NoError(t, s.Logout(context.Background()))
		assert.Equal(t, State{}, s.Status())
		token, _ := storage.Token(context.Background())
		assert.Empty(t, token)
	}
}

func TestLogoutStorageFailureStillDeauthenticates(t *testing.T) {
	storage := &brokenStorage{}
	s := New(storage, DefaultCredentials)
	_, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	storage.failWrites = true
	assert.ErrorIs(t, s.Logout(context.Background()), errStorage)
	assert.False(t, s.Status().Authenticated)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	s := New(NewMemoryStorage(""), DefaultCredentials)
	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
}

func TestCookieStorageRoundTrip(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	ctx := context.Background()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, NewCookieStorage(store, rec, req).SetToken(ctx, "session-xyz"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/nodes", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	storage := NewCookieStorage(store, rec2, next)
	token, err := storage.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-xyz", token)

	require.NoError(t, storage.RemoveToken(ctx))
	token, err = storage.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCookieStorageIgnoresForeignCookie(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})

	token, err := NewCookieStorage(store, httptest.NewRecorder(), req).Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsPlain(t *testing.T) {
	assert.True(t, DefaultCredentials.Check("admin", "password"))
	assert.False(t, DefaultCredentials.Check("admin", "Password"))
	assert.False(t, DefaultCredentials.Check("x", "y"))
	assert.False(t, DefaultCredentials.Check("", ""))
	assert.False(t, Credentials{}.Check("", ""))
}

func TestCredentialsHashed(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	c := Credentials{Username: "operator", Password: "ignored", PasswordHash: hash}
	assert.True(t, c.Check("operator", "s3cret"))
	assert.False(t, c.Check("operator", "ignored"))
}

// Runs against a real server when EAISDO_TEST_REDIS is set, e.g. localhost:6379.
func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("EAISDO_TEST_REDIS")
	if addr == "" {
		t.Skip("EAISDO_TEST_REDIS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	s := New(NewRedisStorage(rdb, store, rec, req, time.Minute), DefaultCredentials)
	ok, err := s.Login(ctx, "admin", "password")
	require.NoError(t, err)
	require.True(t, ok)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	storage := NewRedisStorage(rdb, store, httptest.NewRecorder(), next, time.Minute)
	token, err := storage.Token(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	require.NoError(t, storage.RemoveToken(ctx))
	token, err = storage.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

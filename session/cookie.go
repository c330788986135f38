package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/sessions"
)

// CookieName is the browser session cookie.
const CookieName = "eaisdo"

// CookieStorage keeps the token inside the signed browser session cookie.
// It is bound to a single request/response pair.
type CookieStorage struct {
	store sessions.Store
	r     *http.Request
	w     http.ResponseWriter

	mu      sync.Mutex
	written *sessions.Session // set once this request has saved the cookie
}

func NewCookieStorage(store sessions.Store, w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{store: store, r: r, w: w}
}

func (c *CookieStorage) session() (*sessions.Session, error) {
	// A tampered or stale cookie still yields a fresh session alongside the error.
	sess, err := c.store.Get(c.r, CookieName)
	if sess == nil {
		return nil, fmt.Errorf("session cookie: %w", err)
	}
	return sess, nil
}

// peek decodes the cookie without registering it on the request, so it is
// safe to call while the handler uses the request concurrently.
func peek(store sessions.Store, r *http.Request) (*sessions.Session, error) {
	sess, err := store.New(r, CookieName)
	if sess == nil {
		return nil, fmt.Errorf("session cookie: %w", err)
	}
	return sess, nil
}

func (c *CookieStorage) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	sess := c.written
	c.mu.Unlock()
	if sess == nil {
		var err error
		if sess, err = peek(c.store, c.r); err != nil {
			return "", err
		}
	}
	token, _ := sess.Values[TokenKey].(string)
	return token, nil
}

func (c *CookieStorage) SetToken(ctx context.Context, token string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	sess.Values[TokenKey] = token
	return c.save(sess)
}

func (c *CookieStorage) RemoveToken(ctx context.Context) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	delete(sess.Values, TokenKey)
	return c.save(sess)
}

func (c *CookieStorage) save(sess *sessions.Session) error {
	c.mu.Lock()
	c.written = sess
	c.mu.Unlock()
	return sess.Save(c.r, c.w)
}
